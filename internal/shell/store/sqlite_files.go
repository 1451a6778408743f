package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// File Operations
// =============================================================================

// fileRow represents a file row in the database.
type fileRow struct {
	ID           string `db:"id"`
	OriginalName string `db:"original_name"`
	StorageKey   string `db:"storage_key"`
	MimeType     string `db:"mime_type"`
	Size         int64  `db:"size"`
	CreatedAt    string `db:"created_at"`
}

// ownedFileRow is a file joined through a relation table.
type ownedFileRow struct {
	OwnerID string `db:"owner_id"`
	fileRow
}

func (r *fileRow) toDomain() domain.File {
	return domain.File{
		ID:           r.ID,
		OriginalName: r.OriginalName,
		StorageKey:   r.StorageKey,
		MimeType:     r.MimeType,
		Size:         r.Size,
		CreatedAt:    parseTime(r.CreatedAt),
	}
}

func (s *SQLiteStore) CreateFile(ctx context.Context, file *domain.File) error {
	query := `
		INSERT INTO files (id, original_name, storage_key, mime_type, size, created_at)
		VALUES (:id, :original_name, :storage_key, :mime_type, :size, :created_at)`

	row := fileRow{
		ID:           file.ID,
		OriginalName: file.OriginalName,
		StorageKey:   file.StorageKey,
		MimeType:     file.MimeType,
		Size:         file.Size,
		CreatedAt:    formatTime(file.CreatedAt),
	}
	if _, err := s.exec().NamedExecContext(ctx, query, row); err != nil {
		return wrapExecError("CreateFile", "file", file.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetFile(ctx context.Context, id string) (*domain.File, error) {
	var row fileRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM files WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetFile", "file", id)
	}
	f := row.toDomain()
	return &f, nil
}

func (s *SQLiteStore) GetFileByKey(ctx context.Context, storageKey string) (*domain.File, error) {
	var row fileRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM files WHERE storage_key = ?`, storageKey); err != nil {
		return nil, notFoundOr(err, "GetFileByKey", "file", storageKey)
	}
	f := row.toDomain()
	return &f, nil
}

func (s *SQLiteStore) ListFiles(ctx context.Context, opts ListOptions) ([]domain.File, error) {
	opts = opts.Normalize()
	var rows []fileRow
	query := `SELECT * FROM files ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	if err := s.exec().SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListFiles", "file", "", err.Error(), err)
	}

	files := make([]domain.File, len(rows))
	for i := range rows {
		files[i] = rows[i].toDomain()
	}
	return files, nil
}

// DeleteFile removes file metadata. Relations to categories, info blocks and
// products are dropped by cascade; backgrounds keep their row with no file.
func (s *SQLiteStore) DeleteFile(ctx context.Context, id string) error {
	result, err := s.exec().ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return wrapExecError("DeleteFile", "file", id, err)
	}
	return checkAffected(result, "DeleteFile", "file", id)
}

// =============================================================================
// File Relations
// =============================================================================

// fileRelation is a join table linking an owner row to ordered files.
type fileRelation struct {
	table    string
	ownerCol string
	entity   string
}

var (
	categoryFiles     = fileRelation{table: "category_files", ownerCol: "category_id", entity: "category"}
	categoryInfoFiles = fileRelation{table: "category_info_files", ownerCol: "info_id", entity: "category_info"}
	productFiles      = fileRelation{table: "product_files", ownerCol: "product_id", entity: "product"}
)

// replace sets the files of ownerID to fileIDs in order. Unknown file IDs
// fail with ErrForeignKey.
func (fr fileRelation) replace(ctx context.Context, exec executor, op, ownerID string, fileIDs []string) error {
	del := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, fr.table, fr.ownerCol)
	if _, err := exec.ExecContext(ctx, del, ownerID); err != nil {
		return NewStoreError(op, fr.entity, ownerID, err.Error(), err)
	}

	ins := fmt.Sprintf(`INSERT INTO %s (%s, file_id, position) VALUES (?, ?, ?)`, fr.table, fr.ownerCol)
	for i, fileID := range uniqueIDs(fileIDs) {
		if _, err := exec.ExecContext(ctx, ins, ownerID, fileID, i+1); err != nil {
			werr := wrapExecError(op, fr.entity, ownerID, err)
			if errors.Is(werr, ErrForeignKey) {
				return NewStoreError(op, fr.entity, ownerID, "file "+fileID+" does not exist", ErrForeignKey)
			}
			return werr
		}
	}
	return nil
}

// load returns the files of each owner in position order.
func (fr fileRelation) load(ctx context.Context, exec executor, ownerIDs ...string) (map[string][]domain.File, error) {
	out := make(map[string][]domain.File, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`
		SELECT r.%[2]s AS owner_id, f.*
		FROM %[1]s r JOIN files f ON f.id = r.file_id
		WHERE r.%[2]s IN (?)
		ORDER BY r.%[2]s, r.position`, fr.table, fr.ownerCol), ownerIDs)
	if err != nil {
		return nil, NewStoreError("LoadFiles", fr.entity, "", err.Error(), err)
	}

	var rows []ownedFileRow
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("LoadFiles", fr.entity, "", err.Error(), err)
	}
	for i := range rows {
		out[rows[i].OwnerID] = append(out[rows[i].OwnerID], rows[i].toDomain())
	}
	return out, nil
}

// filesOrEmpty keeps JSON output as [] rather than null.
func filesOrEmpty(files []domain.File) []domain.File {
	if files == nil {
		return []domain.File{}
	}
	return files
}
