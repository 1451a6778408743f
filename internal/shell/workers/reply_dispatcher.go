// Package workers contains background workers for the catalog service.
package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/mail"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/metrics"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
)

// ReplyDispatcherConfig configures the reply dispatcher worker.
type ReplyDispatcherConfig struct {
	// Interval is the time between dispatch cycles.
	// Default: 30 seconds.
	Interval time.Duration

	// SendTimeout bounds the delivery of a single message.
	// Default: 30 seconds.
	SendTimeout time.Duration

	// BatchSize is the number of pending replies loaded per cycle.
	// Default: 20.
	BatchSize int

	// MaxConcurrent is the maximum number of messages sent concurrently.
	// Default: 4.
	MaxConcurrent int

	// MaxAttempts is the number of failed attempts after which a reply is
	// marked failed. Default: 5.
	MaxAttempts int

	// ReplyTo is set as the Reply-To header when not empty.
	ReplyTo string
}

// DefaultReplyDispatcherConfig returns the default configuration.
func DefaultReplyDispatcherConfig() ReplyDispatcherConfig {
	return ReplyDispatcherConfig{
		Interval:      30 * time.Second,
		SendTimeout:   30 * time.Second,
		BatchSize:     20,
		MaxConcurrent: 4,
		MaxAttempts:   5,
	}
}

// DispatchResult summarizes one dispatch cycle.
type DispatchResult struct {
	Sent    int `json:"sent"`
	Retried int `json:"retried"`
	Failed  int `json:"failed"`
}

// ReplyDispatcher delivers queued inquiry replies. Each cycle loads pending
// replies oldest first, sends them, and records the outcome. A sent reply
// marks its inquiry replied.
type ReplyDispatcher struct {
	store   store.Store
	sender  mail.Sender
	metrics *metrics.Metrics
	config  ReplyDispatcherConfig
	logger  *slog.Logger
	nowFunc func() time.Time

	// cycleMu keeps a triggered cycle and a ticker cycle from sending the
	// same reply twice.
	cycleMu sync.Mutex
	wake    chan struct{}

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReplyDispatcher creates a new reply dispatcher worker.
func NewReplyDispatcher(
	s store.Store,
	sender mail.Sender,
	m *metrics.Metrics,
	config ReplyDispatcherConfig,
	logger *slog.Logger,
) *ReplyDispatcher {
	defaults := DefaultReplyDispatcherConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaults.SendTimeout
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReplyDispatcher{
		store:   s,
		sender:  sender,
		metrics: m,
		config:  config,
		logger:  logger.With("component", "reply_dispatcher"),
		nowFunc: time.Now,
		wake:    make(chan struct{}, 1),
	}
}

// Start begins the dispatcher background goroutine.
func (d *ReplyDispatcher) Start() {
	d.ctx, d.cancel = context.WithCancel(context.Background())

	d.wg.Add(1)
	go d.run()

	d.logger.Info("reply dispatcher started",
		"interval", d.config.Interval,
		"batch_size", d.config.BatchSize,
		"max_attempts", d.config.MaxAttempts,
	)
}

// Stop gracefully stops the dispatcher and waits for an in-progress cycle.
func (d *ReplyDispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	d.logger.Info("reply dispatcher stopped")
}

// Notify asks the running dispatcher to start a cycle without waiting for
// the next tick. It never blocks.
func (d *ReplyDispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *ReplyDispatcher) run() {
	defer d.wg.Done()

	// Run immediately on start
	d.runCycle(d.ctx)

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.runCycle(d.ctx)
		case <-d.wake:
			d.runCycle(d.ctx)
		}
	}
}

// DispatchNow runs one dispatch cycle synchronously.
func (d *ReplyDispatcher) DispatchNow(ctx context.Context) (DispatchResult, error) {
	return d.dispatch(ctx)
}

func (d *ReplyDispatcher) runCycle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, d.config.Interval+d.config.SendTimeout)
	defer cancel()

	result, err := d.dispatch(ctx)
	if err != nil {
		d.logger.Error("failed to list pending replies", "error", err)
		return
	}
	if result != (DispatchResult{}) {
		d.logger.Info("dispatch cycle completed",
			"sent", result.Sent,
			"retried", result.Retried,
			"failed", result.Failed,
		)
	}
}

func (d *ReplyDispatcher) dispatch(ctx context.Context) (DispatchResult, error) {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()

	start := time.Now()
	defer d.metrics.ObserveDispatch(start)

	replies, err := d.store.ListPendingReplies(ctx, d.config.BatchSize)
	if err != nil {
		return DispatchResult{}, err
	}
	if len(replies) == 0 {
		d.logger.Debug("no pending replies")
		return DispatchResult{}, nil
	}

	d.logger.Debug("starting dispatch cycle", "reply_count", len(replies))

	// Use a semaphore to limit concurrent sends
	sem := make(chan struct{}, d.config.MaxConcurrent)
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result DispatchResult
	)

	for i := range replies {
		reply := &replies[i]

		wg.Add(1)
		go func(r *domain.Reply) {
			defer wg.Done()

			// Acquire semaphore
			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
				defer func() { <-sem }()
			}

			outcome := d.deliver(ctx, r)

			mu.Lock()
			switch outcome {
			case domain.ReplySent:
				result.Sent++
			case domain.ReplyFailed:
				result.Failed++
			case domain.ReplyPending:
				result.Retried++
			}
			mu.Unlock()
		}(reply)
	}

	wg.Wait()
	return result, nil
}

// deliver sends one reply and stores the outcome. It returns the resulting
// status, or "" if the outcome could not be stored.
func (d *ReplyDispatcher) deliver(ctx context.Context, reply *domain.Reply) domain.ReplyStatus {
	logger := d.logger.With("reply_id", reply.ID, "target_kind", reply.TargetKind, "target_id", reply.TargetID)

	sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	err := d.sender.Send(sendCtx, mail.Message{
		To:      reply.ToEmail,
		ReplyTo: d.config.ReplyTo,
		Subject: reply.Subject,
		Body:    reply.Body,
	})
	cancel()

	now := d.nowFunc().UTC()
	if err != nil {
		reply.MarkFailed(err, d.config.MaxAttempts, now)
		final := reply.Status == domain.ReplyFailed
		d.metrics.IncrementReplyFailed(final)
		if final {
			logger.Error("reply delivery failed permanently", "attempts", reply.Attempts, "error", err)
		} else {
			logger.Warn("reply delivery failed, will retry", "attempts", reply.Attempts, "error", err)
		}
	} else {
		reply.MarkSent(now)
		d.metrics.IncrementReplySent()
		logger.Info("reply sent", "to", reply.ToEmail)
	}

	// The outcome is recorded even when the cycle is cancelled mid-send.
	storeCtx, storeCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer storeCancel()
	if updateErr := d.store.UpdateReply(storeCtx, reply); updateErr != nil {
		logger.Error("failed to update reply", "error", updateErr)
		return ""
	}
	return reply.Status
}
