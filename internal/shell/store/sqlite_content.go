package store

import (
	"context"
	"strings"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Background Operations
// =============================================================================

// backgroundRow represents a backgrounds row in the database.
type backgroundRow struct {
	ID          string  `db:"id"`
	Section     string  `db:"section"`
	Title       string  `db:"title"`
	Subtitle    string  `db:"subtitle"`
	Description string  `db:"description"`
	FileID      *string `db:"file_id"`
	SerialNo    int     `db:"serial_no"`
	Active      bool    `db:"active"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
}

func (r *backgroundRow) toDomain(file *domain.File) *domain.Background {
	return &domain.Background{
		ID:          r.ID,
		Section:     r.Section,
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		Description: r.Description,
		FileID:      r.FileID,
		File:        file,
		SerialNo:    r.SerialNo,
		Active:      r.Active,
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

func (s *SQLiteStore) CreateBackground(ctx context.Context, bg *domain.Background) error {
	return s.atomic(ctx, "CreateBackground", func(tx *SQLiteStore) error {
		exec := tx.exec()

		pos, err := backgroundScope.insertPosition(ctx, exec, bg.Section, bg.SerialNo)
		if err != nil {
			return err
		}
		bg.SerialNo = pos

		query := `
			INSERT INTO backgrounds (
				id, section, title, subtitle, description, file_id, serial_no,
				active, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = exec.ExecContext(ctx, query,
			bg.ID, bg.Section, bg.Title, bg.Subtitle, bg.Description, nullString(bg.FileID),
			bg.SerialNo, bg.Active, formatTime(bg.CreatedAt), formatTime(bg.UpdatedAt))
		if err != nil {
			return wrapExecError("CreateBackground", "background", bg.ID, err)
		}

		fresh, err := getBackground(ctx, exec, bg.ID)
		if err != nil {
			return err
		}
		*bg = *fresh
		return nil
	})
}

func (s *SQLiteStore) GetBackground(ctx context.Context, id string) (*domain.Background, error) {
	return getBackground(ctx, s.exec(), id)
}

// UpdateBackground updates a content block. Changing the section removes the
// block from the old section's order and appends it to the new one.
func (s *SQLiteStore) UpdateBackground(ctx context.Context, bg *domain.Background) error {
	return s.atomic(ctx, "UpdateBackground", func(tx *SQLiteStore) error {
		exec := tx.exec()

		oldSection, serial, err := backgroundScope.locate(ctx, exec, bg.ID)
		if err != nil {
			return err
		}
		if oldSection != bg.Section {
			if err := backgroundScope.closeGap(ctx, exec, oldSection, serial); err != nil {
				return err
			}
			n, err := backgroundScope.count(ctx, exec, bg.Section)
			if err != nil {
				return err
			}
			serial = n + 1
		}

		query := `
			UPDATE backgrounds SET
				section = ?, title = ?, subtitle = ?, description = ?, file_id = ?,
				serial_no = ?, active = ?, updated_at = ?
			WHERE id = ?`
		_, err = exec.ExecContext(ctx, query,
			bg.Section, bg.Title, bg.Subtitle, bg.Description, nullString(bg.FileID),
			serial, bg.Active, formatTime(bg.UpdatedAt), bg.ID)
		if err != nil {
			return wrapExecError("UpdateBackground", "background", bg.ID, err)
		}

		fresh, err := getBackground(ctx, exec, bg.ID)
		if err != nil {
			return err
		}
		*bg = *fresh
		return nil
	})
}

func (s *SQLiteStore) DeleteBackground(ctx context.Context, id string) error {
	return s.atomic(ctx, "DeleteBackground", func(tx *SQLiteStore) error {
		return backgroundScope.deleteRow(ctx, tx.exec(), "DeleteBackground", id)
	})
}

// ListBackgrounds returns blocks ordered by section, then serial.
func (s *SQLiteStore) ListBackgrounds(ctx context.Context, filter BackgroundFilter) ([]domain.Background, error) {
	exec := s.exec()

	var conds []string
	var args []any
	if filter.Section != "" {
		conds = append(conds, "section = ?")
		args = append(args, filter.Section)
	}
	if filter.ActiveOnly {
		conds = append(conds, "active = 1")
	}
	query := `SELECT * FROM backgrounds`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY section, serial_no, created_at, id`

	var rows []backgroundRow
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("ListBackgrounds", "background", "", err.Error(), err)
	}

	backgrounds := make([]domain.Background, len(rows))
	for i := range rows {
		file, err := backgroundFile(ctx, exec, &rows[i])
		if err != nil {
			return nil, err
		}
		backgrounds[i] = *rows[i].toDomain(file)
	}
	return backgrounds, nil
}

func (s *SQLiteStore) MoveBackground(ctx context.Context, id string, to int) (*domain.Background, error) {
	var moved *domain.Background
	err := s.atomic(ctx, "MoveBackground", func(tx *SQLiteStore) error {
		if _, err := backgroundScope.move(ctx, tx.exec(), id, to); err != nil {
			return err
		}
		var err error
		moved, err = getBackground(ctx, tx.exec(), id)
		return err
	})
	return moved, err
}

func (s *SQLiteStore) NormalizeBackgroundSerials(ctx context.Context, section string) (int, error) {
	var changed int
	err := s.atomic(ctx, "NormalizeBackgroundSerials", func(tx *SQLiteStore) error {
		var err error
		changed, err = backgroundScope.normalize(ctx, tx.exec(), section)
		return err
	})
	return changed, err
}

func getBackground(ctx context.Context, exec executor, id string) (*domain.Background, error) {
	var row backgroundRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM backgrounds WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetBackground", "background", id)
	}
	file, err := backgroundFile(ctx, exec, &row)
	if err != nil {
		return nil, err
	}
	return row.toDomain(file), nil
}

func backgroundFile(ctx context.Context, exec executor, row *backgroundRow) (*domain.File, error) {
	if row.FileID == nil {
		return nil, nil
	}
	var fr fileRow
	if err := exec.GetContext(ctx, &fr, `SELECT * FROM files WHERE id = ?`, *row.FileID); err != nil {
		if IsNotFound(notFoundOr(err, "GetBackground", "file", *row.FileID)) {
			return nil, nil
		}
		return nil, NewStoreError("GetBackground", "background", row.ID, err.Error(), err)
	}
	f := fr.toDomain()
	return &f, nil
}
