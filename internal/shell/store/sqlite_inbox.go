package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Admin Operations
// =============================================================================

// adminRow represents an admins row in the database.
type adminRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (r *adminRow) toDomain() *domain.Admin {
	return &domain.Admin{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, email, name, password_hash, created_at, updated_at)
		VALUES (:id, :email, :name, :password_hash, :created_at, :updated_at)`
	row := adminRow{
		ID:           admin.ID,
		Email:        admin.Email,
		Name:         admin.Name,
		PasswordHash: admin.PasswordHash,
		CreatedAt:    formatTime(admin.CreatedAt),
		UpdatedAt:    formatTime(admin.UpdatedAt),
	}
	if _, err := s.exec().NamedExecContext(ctx, query, row); err != nil {
		return wrapExecError("CreateAdmin", "admin", admin.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	var row adminRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM admins WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetAdmin", "admin", id)
	}
	return row.toDomain(), nil
}

func (s *SQLiteStore) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var row adminRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM admins WHERE email = ?`, email); err != nil {
		return nil, notFoundOr(err, "GetAdminByEmail", "admin", email)
	}
	return row.toDomain(), nil
}

// UpdateAdmin updates name and password hash.
func (s *SQLiteStore) UpdateAdmin(ctx context.Context, admin *domain.Admin) error {
	result, err := s.exec().ExecContext(ctx,
		`UPDATE admins SET name = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		admin.Name, admin.PasswordHash, formatTime(admin.UpdatedAt), admin.ID)
	if err != nil {
		return wrapExecError("UpdateAdmin", "admin", admin.ID, err)
	}
	return checkAffected(result, "UpdateAdmin", "admin", admin.ID)
}

func (s *SQLiteStore) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	var rows []adminRow
	if err := s.exec().SelectContext(ctx, &rows, `SELECT * FROM admins ORDER BY created_at, id`); err != nil {
		return nil, NewStoreError("ListAdmins", "admin", "", err.Error(), err)
	}
	admins := make([]domain.Admin, len(rows))
	for i := range rows {
		admins[i] = *rows[i].toDomain()
	}
	return admins, nil
}

func (s *SQLiteStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.exec().GetContext(ctx, &n, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, NewStoreError("CountAdmins", "admin", "", err.Error(), err)
	}
	return n, nil
}

// =============================================================================
// Contact Operations
// =============================================================================

// contactRow represents a contacts row in the database.
type contactRow struct {
	ID        string `db:"id"`
	FullName  string `db:"full_name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Company   string `db:"company"`
	Subject   string `db:"subject"`
	Message   string `db:"message"`
	Status    string `db:"status"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r *contactRow) toDomain(replies []domain.Reply) *domain.Contact {
	return &domain.Contact{
		ID: r.ID,
		Visitor: domain.Visitor{
			FullName: r.FullName,
			Email:    r.Email,
			Phone:    r.Phone,
			Company:  r.Company,
		},
		Subject:   r.Subject,
		Message:   r.Message,
		Status:    domain.InquiryStatus(r.Status),
		Replies:   replies,
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

func (s *SQLiteStore) CreateContact(ctx context.Context, contact *domain.Contact) error {
	query := `
		INSERT INTO contacts (
			id, full_name, email, phone, company, subject, message, status,
			created_at, updated_at
		) VALUES (
			:id, :full_name, :email, :phone, :company, :subject, :message, :status,
			:created_at, :updated_at
		)`
	row := contactRow{
		ID:        contact.ID,
		FullName:  contact.FullName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Company:   contact.Company,
		Subject:   contact.Subject,
		Message:   contact.Message,
		Status:    string(contact.Status),
		CreatedAt: formatTime(contact.CreatedAt),
		UpdatedAt: formatTime(contact.UpdatedAt),
	}
	if _, err := s.exec().NamedExecContext(ctx, query, row); err != nil {
		return wrapExecError("CreateContact", "contact", contact.ID, err)
	}
	return nil
}

// GetContact returns a contact with its replies, oldest first.
func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	exec := s.exec()
	var row contactRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM contacts WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetContact", "contact", id)
	}
	replies, err := listReplies(ctx, exec, domain.TargetContact, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(replies), nil
}

// DeleteContact removes a contact and its replies.
func (s *SQLiteStore) DeleteContact(ctx context.Context, id string) error {
	return s.atomic(ctx, "DeleteContact", func(tx *SQLiteStore) error {
		return deleteInquiry(ctx, tx.exec(), "DeleteContact", "contacts", domain.TargetContact, id)
	})
}

// ListContacts returns contacts newest first, without replies.
func (s *SQLiteStore) ListContacts(ctx context.Context, filter InquiryFilter) ([]domain.Contact, error) {
	var rows []contactRow
	query, args := inquiryQuery("contacts", filter)
	if err := s.exec().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("ListContacts", "contact", "", err.Error(), err)
	}
	contacts := make([]domain.Contact, len(rows))
	for i := range rows {
		contacts[i] = *rows[i].toDomain(nil)
	}
	return contacts, nil
}

// =============================================================================
// Info Request Operations
// =============================================================================

// infoRequestRow represents an info_requests row in the database.
type infoRequestRow struct {
	ID        string  `db:"id"`
	ProductID *string `db:"product_id"`
	FullName  string  `db:"full_name"`
	Email     string  `db:"email"`
	Phone     string  `db:"phone"`
	Company   string  `db:"company"`
	Message   string  `db:"message"`
	Status    string  `db:"status"`
	CreatedAt string  `db:"created_at"`
	UpdatedAt string  `db:"updated_at"`
}

func (r *infoRequestRow) toDomain(replies []domain.Reply) *domain.InfoRequest {
	return &domain.InfoRequest{
		ID:        r.ID,
		ProductID: r.ProductID,
		Visitor: domain.Visitor{
			FullName: r.FullName,
			Email:    r.Email,
			Phone:    r.Phone,
			Company:  r.Company,
		},
		Message:   r.Message,
		Status:    domain.InquiryStatus(r.Status),
		Replies:   replies,
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

func (s *SQLiteStore) CreateInfoRequest(ctx context.Context, req *domain.InfoRequest) error {
	query := `
		INSERT INTO info_requests (
			id, product_id, full_name, email, phone, company, message, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.exec().ExecContext(ctx, query,
		req.ID, nullString(req.ProductID), req.FullName, req.Email, req.Phone, req.Company,
		req.Message, string(req.Status), formatTime(req.CreatedAt), formatTime(req.UpdatedAt))
	if err != nil {
		return wrapExecError("CreateInfoRequest", "info_request", req.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetInfoRequest(ctx context.Context, id string) (*domain.InfoRequest, error) {
	exec := s.exec()
	var row infoRequestRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM info_requests WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetInfoRequest", "info_request", id)
	}
	replies, err := listReplies(ctx, exec, domain.TargetInfoRequest, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(replies), nil
}

func (s *SQLiteStore) DeleteInfoRequest(ctx context.Context, id string) error {
	return s.atomic(ctx, "DeleteInfoRequest", func(tx *SQLiteStore) error {
		return deleteInquiry(ctx, tx.exec(), "DeleteInfoRequest", "info_requests", domain.TargetInfoRequest, id)
	})
}

func (s *SQLiteStore) ListInfoRequests(ctx context.Context, filter InquiryFilter) ([]domain.InfoRequest, error) {
	var rows []infoRequestRow
	query, args := inquiryQuery("info_requests", filter)
	if err := s.exec().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("ListInfoRequests", "info_request", "", err.Error(), err)
	}
	requests := make([]domain.InfoRequest, len(rows))
	for i := range rows {
		requests[i] = *rows[i].toDomain(nil)
	}
	return requests, nil
}

func inquiryQuery(table string, filter InquiryFilter) (string, []any) {
	opts := filter.ListOptions.Normalize()
	query := `SELECT * FROM ` + table
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	return query, append(args, opts.Limit, opts.Offset)
}

func deleteInquiry(ctx context.Context, exec executor, op, table string, kind domain.ReplyTarget, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return wrapExecError(op, string(kind), id, err)
	}
	if err := checkAffected(result, op, string(kind), id); err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM replies WHERE target_kind = ? AND target_id = ?`, string(kind), id); err != nil {
		return NewStoreError(op, "reply", id, err.Error(), err)
	}
	return nil
}

// =============================================================================
// Reply Outbox Operations
// =============================================================================

// replyRow represents a replies row in the database.
type replyRow struct {
	ID         string  `db:"id"`
	TargetKind string  `db:"target_kind"`
	TargetID   string  `db:"target_id"`
	ToEmail    string  `db:"to_email"`
	Subject    string  `db:"subject"`
	Body       string  `db:"body"`
	Status     string  `db:"status"`
	Attempts   int     `db:"attempts"`
	LastError  string  `db:"last_error"`
	SentAt     *string `db:"sent_at"`
	CreatedAt  string  `db:"created_at"`
	UpdatedAt  string  `db:"updated_at"`
}

func (r *replyRow) toDomain() domain.Reply {
	return domain.Reply{
		ID:         r.ID,
		TargetKind: domain.ReplyTarget(r.TargetKind),
		TargetID:   r.TargetID,
		ToEmail:    r.ToEmail,
		Subject:    r.Subject,
		Body:       r.Body,
		Status:     domain.ReplyStatus(r.Status),
		Attempts:   r.Attempts,
		LastError:  r.LastError,
		SentAt:     parseTimePtr(r.SentAt),
		CreatedAt:  parseTime(r.CreatedAt),
		UpdatedAt:  parseTime(r.UpdatedAt),
	}
}

func targetTable(kind domain.ReplyTarget) (string, error) {
	switch kind {
	case domain.TargetContact:
		return "contacts", nil
	case domain.TargetInfoRequest:
		return "info_requests", nil
	}
	return "", fmt.Errorf("unknown reply target %q", kind)
}

// CreateReply queues a reply. The target inquiry must exist.
func (s *SQLiteStore) CreateReply(ctx context.Context, reply *domain.Reply) error {
	return s.atomic(ctx, "CreateReply", func(tx *SQLiteStore) error {
		exec := tx.exec()

		table, err := targetTable(reply.TargetKind)
		if err != nil {
			return NewStoreError("CreateReply", "reply", reply.ID, err.Error(), ErrInvalidData)
		}
		var n int
		if err := exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, reply.TargetID); err != nil {
			return NewStoreError("CreateReply", "reply", reply.ID, err.Error(), err)
		}
		if n == 0 {
			return NewStoreError("CreateReply", "reply", reply.ID, string(reply.TargetKind)+" does not exist", ErrForeignKey)
		}

		query := `
			INSERT INTO replies (
				id, target_kind, target_id, to_email, subject, body, status,
				attempts, last_error, sent_at, created_at, updated_at
			) VALUES (
				:id, :target_kind, :target_id, :to_email, :subject, :body, :status,
				:attempts, :last_error, :sent_at, :created_at, :updated_at
			)`
		if _, err := exec.NamedExecContext(ctx, query, replyToRow(reply)); err != nil {
			return wrapExecError("CreateReply", "reply", reply.ID, err)
		}
		return nil
	})
}

func (s *SQLiteStore) GetReply(ctx context.Context, id string) (*domain.Reply, error) {
	var row replyRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM replies WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetReply", "reply", id)
	}
	r := row.toDomain()
	return &r, nil
}

// UpdateReply stores the delivery state of a reply. When the reply is sent,
// the target inquiry is marked replied in the same transaction.
func (s *SQLiteStore) UpdateReply(ctx context.Context, reply *domain.Reply) error {
	return s.atomic(ctx, "UpdateReply", func(tx *SQLiteStore) error {
		exec := tx.exec()

		query := `
			UPDATE replies SET
				status = :status,
				attempts = :attempts,
				last_error = :last_error,
				sent_at = :sent_at,
				updated_at = :updated_at
			WHERE id = :id`
		result, err := exec.NamedExecContext(ctx, query, replyToRow(reply))
		if err != nil {
			return wrapExecError("UpdateReply", "reply", reply.ID, err)
		}
		if err := checkAffected(result, "UpdateReply", "reply", reply.ID); err != nil {
			return err
		}

		if reply.Status != domain.ReplySent {
			return nil
		}
		table, err := targetTable(reply.TargetKind)
		if err != nil {
			return NewStoreError("UpdateReply", "reply", reply.ID, err.Error(), ErrInvalidData)
		}
		_, err = exec.ExecContext(ctx,
			`UPDATE `+table+` SET status = ?, updated_at = ? WHERE id = ?`,
			string(domain.InquiryReplied), formatTime(time.Now()), reply.TargetID)
		if err != nil {
			return NewStoreError("UpdateReply", string(reply.TargetKind), reply.TargetID, err.Error(), err)
		}
		return nil
	})
}

// ListPendingReplies returns up to limit pending replies, oldest first.
func (s *SQLiteStore) ListPendingReplies(ctx context.Context, limit int) ([]domain.Reply, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []replyRow
	query := `SELECT * FROM replies WHERE status = ? ORDER BY created_at, id LIMIT ?`
	if err := s.exec().SelectContext(ctx, &rows, query, string(domain.ReplyPending), limit); err != nil {
		return nil, NewStoreError("ListPendingReplies", "reply", "", err.Error(), err)
	}
	replies := make([]domain.Reply, len(rows))
	for i := range rows {
		replies[i] = rows[i].toDomain()
	}
	return replies, nil
}

// CountRepliesByStatus returns the number of replies in each status.
func (s *SQLiteStore) CountRepliesByStatus(ctx context.Context) (map[domain.ReplyStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := s.exec().SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS n FROM replies GROUP BY status`); err != nil {
		return nil, NewStoreError("CountRepliesByStatus", "reply", "", err.Error(), err)
	}
	counts := map[domain.ReplyStatus]int{
		domain.ReplyPending: 0,
		domain.ReplySent:    0,
		domain.ReplyFailed:  0,
	}
	for _, r := range rows {
		counts[domain.ReplyStatus(r.Status)] = r.N
	}
	return counts, nil
}

func listReplies(ctx context.Context, exec executor, kind domain.ReplyTarget, targetID string) ([]domain.Reply, error) {
	var rows []replyRow
	query := `SELECT * FROM replies WHERE target_kind = ? AND target_id = ? ORDER BY created_at, id`
	if err := exec.SelectContext(ctx, &rows, query, string(kind), targetID); err != nil {
		return nil, NewStoreError("ListReplies", "reply", targetID, err.Error(), err)
	}
	replies := make([]domain.Reply, len(rows))
	for i := range rows {
		replies[i] = rows[i].toDomain()
	}
	return replies, nil
}

func replyToRow(r *domain.Reply) replyRow {
	return replyRow{
		ID:         r.ID,
		TargetKind: string(r.TargetKind),
		TargetID:   r.TargetID,
		ToEmail:    r.ToEmail,
		Subject:    r.Subject,
		Body:       r.Body,
		Status:     string(r.Status),
		Attempts:   r.Attempts,
		LastError:  r.LastError,
		SentAt:     formatTimePtr(r.SentAt),
		CreatedAt:  formatTime(r.CreatedAt),
		UpdatedAt:  formatTime(r.UpdatedAt),
	}
}
