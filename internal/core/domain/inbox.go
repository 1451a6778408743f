package domain

import (
	"errors"
	"strings"
	"time"
)

// =============================================================================
// Inquiry Status
// =============================================================================

// InquiryStatus tracks whether a visitor message has been answered.
type InquiryStatus string

const (
	InquiryNew     InquiryStatus = "new"
	InquiryReplied InquiryStatus = "replied"
)

// IsValid reports whether s is a known inquiry status.
func (s InquiryStatus) IsValid() bool {
	return s == InquiryNew || s == InquiryReplied
}

var (
	ErrFullNameRequired = errors.New("full name is required")
	ErrMessageRequired  = errors.New("message is required")
	ErrSubjectRequired  = errors.New("subject is required")
	ErrBodyRequired     = errors.New("body is required")
	ErrTargetInvalid    = errors.New("reply target must be contact or info_request")
	ErrReplyNotFailed   = errors.New("only failed replies can be retried")
)

// Visitor holds the sender details shared by contact and info-request forms.
type Visitor struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

func (v *Visitor) normalize() error {
	v.FullName = strings.TrimSpace(v.FullName)
	if v.FullName == "" {
		return ErrFullNameRequired
	}
	email, err := NormalizeEmail(v.Email)
	if err != nil {
		return err
	}
	v.Email = email
	v.Phone = strings.TrimSpace(v.Phone)
	v.Company = strings.TrimSpace(v.Company)
	return nil
}

// =============================================================================
// Contact
// =============================================================================

// Contact is a message submitted through the public contact form.
type Contact struct {
	ID string `json:"id"`
	Visitor
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    InquiryStatus `json:"status"`
	Replies   []Reply       `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewContact creates a contact message in status new.
func NewContact(v Visitor, subject, message string) (*Contact, error) {
	if err := v.normalize(); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrMessageRequired
	}

	now := time.Now().UTC()
	return &Contact{
		ID:        NewID(PrefixContact),
		Visitor:   v,
		Subject:   strings.TrimSpace(subject),
		Message:   message,
		Status:    InquiryNew,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// =============================================================================
// InfoRequest
// =============================================================================

// InfoRequest is a product inquiry ("request a quote"). ProductID is nil for
// general requests.
type InfoRequest struct {
	ID        string  `json:"id"`
	ProductID *string `json:"product_id"`
	Visitor
	Message   string        `json:"message"`
	Status    InquiryStatus `json:"status"`
	Replies   []Reply       `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewInfoRequest creates an info request in status new.
func NewInfoRequest(productID string, v Visitor, message string) (*InfoRequest, error) {
	if err := v.normalize(); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrMessageRequired
	}

	r := &InfoRequest{
		ID:        NewID(PrefixInfoRequest),
		Visitor:   v,
		Message:   message,
		Status:    InquiryNew,
		CreatedAt: time.Now().UTC(),
	}
	if id := strings.TrimSpace(productID); id != "" {
		r.ProductID = &id
	}
	r.UpdatedAt = r.CreatedAt
	return r, nil
}

// =============================================================================
// Reply (outbox)
// =============================================================================

// ReplyTarget names the kind of inquiry a reply answers.
type ReplyTarget string

const (
	TargetContact     ReplyTarget = "contact"
	TargetInfoRequest ReplyTarget = "info_request"
)

// IsValid reports whether t is a known reply target.
func (t ReplyTarget) IsValid() bool {
	return t == TargetContact || t == TargetInfoRequest
}

// ReplyStatus is the delivery state of a queued reply.
type ReplyStatus string

const (
	ReplyPending ReplyStatus = "pending"
	ReplySent    ReplyStatus = "sent"
	ReplyFailed  ReplyStatus = "failed"
)

// Reply is an email answer to an inquiry. Replies are queued as pending and
// delivered by the reply dispatcher.
type Reply struct {
	ID         string      `json:"id"`
	TargetKind ReplyTarget `json:"target_kind"`
	TargetID   string      `json:"target_id"`
	ToEmail    string      `json:"to_email"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Status     ReplyStatus `json:"status"`
	Attempts   int         `json:"attempts"`
	LastError  string      `json:"last_error,omitempty"`
	SentAt     *time.Time  `json:"sent_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewReply queues a reply to the inquiry identified by kind and targetID.
func NewReply(kind ReplyTarget, targetID, toEmail, subject, body string) (*Reply, error) {
	if !kind.IsValid() || targetID == "" {
		return nil, ErrTargetInvalid
	}
	email, err := NormalizeEmail(toEmail)
	if err != nil {
		return nil, err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrBodyRequired
	}

	now := time.Now().UTC()
	return &Reply{
		ID:         NewID(PrefixReply),
		TargetKind: kind,
		TargetID:   targetID,
		ToEmail:    email,
		Subject:    subject,
		Body:       body,
		Status:     ReplyPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// MarkSent records a successful delivery.
func (r *Reply) MarkSent(now time.Time) {
	r.Attempts++
	r.Status = ReplySent
	r.LastError = ""
	r.SentAt = &now
	r.UpdatedAt = now
}

// MarkFailed records a failed delivery attempt. The reply stays pending until
// maxAttempts attempts have failed, then becomes failed.
func (r *Reply) MarkFailed(err error, maxAttempts int, now time.Time) {
	r.Attempts++
	if err != nil {
		r.LastError = err.Error()
	}
	if maxAttempts > 0 && r.Attempts >= maxAttempts {
		r.Status = ReplyFailed
	}
	r.UpdatedAt = now
}

// Retry resets a failed reply so the dispatcher picks it up again. The last
// error is kept until the next attempt.
func (r *Reply) Retry(now time.Time) error {
	if r.Status != ReplyFailed {
		return ErrReplyNotFailed
	}
	r.Status = ReplyPending
	r.Attempts = 0
	r.UpdatedAt = now
	return nil
}
