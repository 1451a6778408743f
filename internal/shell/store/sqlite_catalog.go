package store

import (
	"context"
	"time"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Category Operations
// =============================================================================

// categoryRow represents a category row in the database.
type categoryRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	SerialNo    int    `db:"serial_no"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r *categoryRow) toDomain(files []domain.File) *domain.Category {
	return &domain.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		SerialNo:    r.SerialNo,
		Files:       filesOrEmpty(files),
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

// CreateCategory inserts the category at its requested serial (or appends
// when SerialNo is 0) and attaches fileIDs, all in one transaction.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *domain.Category, fileIDs []string) error {
	return s.atomic(ctx, "CreateCategory", func(tx *SQLiteStore) error {
		exec := tx.exec()

		pos, err := categoryScope.insertPosition(ctx, exec, "", category.SerialNo)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO categories (id, name, slug, description, serial_no, created_at, updated_at)
			VALUES (:id, :name, :slug, :description, :serial_no, :created_at, :updated_at)`
		row := categoryRow{
			ID:          category.ID,
			Name:        category.Name,
			Slug:        category.Slug,
			Description: category.Description,
			SerialNo:    pos,
			CreatedAt:   formatTime(category.CreatedAt),
			UpdatedAt:   formatTime(category.UpdatedAt),
		}
		if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
			return wrapExecError("CreateCategory", "category", category.ID, err)
		}

		if err := categoryFiles.replace(ctx, exec, "CreateCategory", category.ID, fileIDs); err != nil {
			return err
		}

		fresh, err := getCategory(ctx, exec, "id", category.ID)
		if err != nil {
			return err
		}
		*category = *fresh
		return nil
	})
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return getCategory(ctx, s.exec(), "id", id)
}

func (s *SQLiteStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return getCategory(ctx, s.exec(), "slug", slug)
}

// UpdateCategory updates name, slug and description. The serial is changed
// only through MoveCategory. A non-nil fileIDs replaces the attachments in the
// same transaction.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *domain.Category, fileIDs []string) error {
	return s.atomic(ctx, "UpdateCategory", func(tx *SQLiteStore) error {
		exec := tx.exec()

		query := `
			UPDATE categories SET
				name = :name,
				slug = :slug,
				description = :description,
				updated_at = :updated_at
			WHERE id = :id`
		row := categoryRow{
			ID:          category.ID,
			Name:        category.Name,
			Slug:        category.Slug,
			Description: category.Description,
			UpdatedAt:   formatTime(category.UpdatedAt),
		}
		result, err := exec.NamedExecContext(ctx, query, row)
		if err != nil {
			return wrapExecError("UpdateCategory", "category", category.ID, err)
		}
		if err := checkAffected(result, "UpdateCategory", "category", category.ID); err != nil {
			return err
		}

		if fileIDs != nil {
			if err := categoryFiles.replace(ctx, exec, "UpdateCategory", category.ID, fileIDs); err != nil {
				return err
			}
		}

		fresh, err := getCategory(ctx, exec, "id", category.ID)
		if err != nil {
			return err
		}
		*category = *fresh
		return nil
	})
}

// DeleteCategory removes the category and, by cascade, its info block,
// sub-categories, groups, fields, products and values. Attached files are
// kept. Later categories move up to close the gap.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	return s.atomic(ctx, "DeleteCategory", func(tx *SQLiteStore) error {
		return categoryScope.deleteRow(ctx, tx.exec(), "DeleteCategory", id)
	})
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	exec := s.exec()

	var rows []categoryRow
	if err := exec.SelectContext(ctx, &rows, `SELECT * FROM categories ORDER BY serial_no, created_at, id`); err != nil {
		return nil, NewStoreError("ListCategories", "category", "", err.Error(), err)
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	files, err := categoryFiles.load(ctx, exec, ids...)
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].toDomain(files[rows[i].ID])
	}
	return categories, nil
}

// MoveCategory moves a category to serial `to`, shifting the categories in
// between.
func (s *SQLiteStore) MoveCategory(ctx context.Context, id string, to int) (*domain.Category, error) {
	var moved *domain.Category
	err := s.atomic(ctx, "MoveCategory", func(tx *SQLiteStore) error {
		if _, err := categoryScope.move(ctx, tx.exec(), id, to); err != nil {
			return err
		}
		var err error
		moved, err = getCategory(ctx, tx.exec(), "id", id)
		return err
	})
	return moved, err
}

func (s *SQLiteStore) NormalizeCategorySerials(ctx context.Context) (int, error) {
	var changed int
	err := s.atomic(ctx, "NormalizeCategorySerials", func(tx *SQLiteStore) error {
		var err error
		changed, err = categoryScope.normalize(ctx, tx.exec(), "")
		return err
	})
	return changed, err
}

// getCategory loads one category by "id" or "slug" together with its files.
func getCategory(ctx context.Context, exec executor, column, value string) (*domain.Category, error) {
	var row categoryRow
	query := `SELECT * FROM categories WHERE ` + column + ` = ?`
	if err := exec.GetContext(ctx, &row, query, value); err != nil {
		return nil, notFoundOr(err, "GetCategory", "category", value)
	}
	files, err := categoryFiles.load(ctx, exec, row.ID)
	if err != nil {
		return nil, err
	}
	return row.toDomain(files[row.ID]), nil
}

// =============================================================================
// Category Info Operations
// =============================================================================

// categoryInfoRow represents a category_info row in the database.
type categoryInfoRow struct {
	ID          string `db:"id"`
	CategoryID  string `db:"category_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

// UpsertCategoryInfo creates or replaces the info block of info.CategoryID
// and its file relations in one transaction. An existing block keeps its ID
// and creation time. On update a nil fileIDs leaves attachments unchanged.
func (s *SQLiteStore) UpsertCategoryInfo(ctx context.Context, info *domain.CategoryInfo, fileIDs []string) error {
	return s.atomic(ctx, "UpsertCategoryInfo", func(tx *SQLiteStore) error {
		exec := tx.exec()

		existing, err := getCategoryInfo(ctx, exec, info.CategoryID)
		switch {
		case err == nil:
			info.ID = existing.ID
			info.CreatedAt = existing.CreatedAt
			query := `
				UPDATE category_info SET
					title = :title,
					description = :description,
					updated_at = :updated_at
				WHERE id = :id`
			if _, err := exec.NamedExecContext(ctx, query, infoToRow(info)); err != nil {
				return wrapExecError("UpsertCategoryInfo", "category_info", info.ID, err)
			}
		case IsNotFound(err):
			query := `
				INSERT INTO category_info (id, category_id, title, description, created_at, updated_at)
				VALUES (:id, :category_id, :title, :description, :created_at, :updated_at)`
			if _, err := exec.NamedExecContext(ctx, query, infoToRow(info)); err != nil {
				return wrapExecError("UpsertCategoryInfo", "category_info", info.ID, err)
			}
			if fileIDs == nil {
				fileIDs = []string{}
			}
		default:
			return err
		}

		if fileIDs != nil {
			if err := categoryInfoFiles.replace(ctx, exec, "UpsertCategoryInfo", info.ID, fileIDs); err != nil {
				return err
			}
		}

		fresh, err := getCategoryInfo(ctx, exec, info.CategoryID)
		if err != nil {
			return err
		}
		*info = *fresh
		return nil
	})
}

func (s *SQLiteStore) GetCategoryInfo(ctx context.Context, categoryID string) (*domain.CategoryInfo, error) {
	return getCategoryInfo(ctx, s.exec(), categoryID)
}

func (s *SQLiteStore) DeleteCategoryInfo(ctx context.Context, categoryID string) error {
	result, err := s.exec().ExecContext(ctx, `DELETE FROM category_info WHERE category_id = ?`, categoryID)
	if err != nil {
		return wrapExecError("DeleteCategoryInfo", "category_info", categoryID, err)
	}
	return checkAffected(result, "DeleteCategoryInfo", "category_info", categoryID)
}

func getCategoryInfo(ctx context.Context, exec executor, categoryID string) (*domain.CategoryInfo, error) {
	var row categoryInfoRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM category_info WHERE category_id = ?`, categoryID); err != nil {
		return nil, notFoundOr(err, "GetCategoryInfo", "category_info", categoryID)
	}
	files, err := categoryInfoFiles.load(ctx, exec, row.ID)
	if err != nil {
		return nil, err
	}
	return &domain.CategoryInfo{
		ID:          row.ID,
		CategoryID:  row.CategoryID,
		Title:       row.Title,
		Description: row.Description,
		Files:       filesOrEmpty(files[row.ID]),
		CreatedAt:   parseTime(row.CreatedAt),
		UpdatedAt:   parseTime(row.UpdatedAt),
	}, nil
}

func infoToRow(info *domain.CategoryInfo) categoryInfoRow {
	return categoryInfoRow{
		ID:          info.ID,
		CategoryID:  info.CategoryID,
		Title:       info.Title,
		Description: info.Description,
		CreatedAt:   formatTime(info.CreatedAt),
		UpdatedAt:   formatTime(info.UpdatedAt),
	}
}

// =============================================================================
// Sub-Category Operations
// =============================================================================

// subCategoryRow represents a sub_categories row in the database.
type subCategoryRow struct {
	ID          string `db:"id"`
	CategoryID  string `db:"category_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	SerialNo    int    `db:"serial_no"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r *subCategoryRow) toDomain() *domain.SubCategory {
	return &domain.SubCategory{
		ID:          r.ID,
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		SerialNo:    r.SerialNo,
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

func (s *SQLiteStore) CreateSubCategory(ctx context.Context, sub *domain.SubCategory) error {
	return s.atomic(ctx, "CreateSubCategory", func(tx *SQLiteStore) error {
		exec := tx.exec()

		pos, err := subCategoryScope.insertPosition(ctx, exec, sub.CategoryID, sub.SerialNo)
		if err != nil {
			return err
		}
		sub.SerialNo = pos

		query := `
			INSERT INTO sub_categories (id, category_id, name, slug, description, serial_no, created_at, updated_at)
			VALUES (:id, :category_id, :name, :slug, :description, :serial_no, :created_at, :updated_at)`
		row := subCategoryRow{
			ID:          sub.ID,
			CategoryID:  sub.CategoryID,
			Name:        sub.Name,
			Slug:        sub.Slug,
			Description: sub.Description,
			SerialNo:    sub.SerialNo,
			CreatedAt:   formatTime(sub.CreatedAt),
			UpdatedAt:   formatTime(sub.UpdatedAt),
		}
		if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
			return wrapExecError("CreateSubCategory", "sub_category", sub.ID, err)
		}
		return nil
	})
}

func (s *SQLiteStore) GetSubCategory(ctx context.Context, id string) (*domain.SubCategory, error) {
	var row subCategoryRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM sub_categories WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetSubCategory", "sub_category", id)
	}
	return row.toDomain(), nil
}

// UpdateSubCategory updates name, slug and description. The parent category
// and serial are not changed here.
func (s *SQLiteStore) UpdateSubCategory(ctx context.Context, sub *domain.SubCategory) error {
	query := `
		UPDATE sub_categories SET
			name = ?, slug = ?, description = ?, updated_at = ?
		WHERE id = ?`
	result, err := s.exec().ExecContext(ctx, query,
		sub.Name, sub.Slug, sub.Description, formatTime(sub.UpdatedAt), sub.ID)
	if err != nil {
		return wrapExecError("UpdateSubCategory", "sub_category", sub.ID, err)
	}
	return checkAffected(result, "UpdateSubCategory", "sub_category", sub.ID)
}

func (s *SQLiteStore) DeleteSubCategory(ctx context.Context, id string) error {
	return s.atomic(ctx, "DeleteSubCategory", func(tx *SQLiteStore) error {
		return subCategoryScope.deleteRow(ctx, tx.exec(), "DeleteSubCategory", id)
	})
}

func (s *SQLiteStore) ListSubCategories(ctx context.Context, categoryID string) ([]domain.SubCategory, error) {
	var rows []subCategoryRow
	query := `SELECT * FROM sub_categories WHERE category_id = ? ORDER BY serial_no, created_at, id`
	if err := s.exec().SelectContext(ctx, &rows, query, categoryID); err != nil {
		return nil, NewStoreError("ListSubCategories", "sub_category", categoryID, err.Error(), err)
	}
	subs := make([]domain.SubCategory, len(rows))
	for i := range rows {
		subs[i] = *rows[i].toDomain()
	}
	return subs, nil
}

func (s *SQLiteStore) MoveSubCategory(ctx context.Context, id string, to int) (*domain.SubCategory, error) {
	var moved *domain.SubCategory
	err := s.atomic(ctx, "MoveSubCategory", func(tx *SQLiteStore) error {
		if _, err := subCategoryScope.move(ctx, tx.exec(), id, to); err != nil {
			return err
		}
		var err error
		moved, err = tx.GetSubCategory(ctx, id)
		return err
	})
	return moved, err
}

func (s *SQLiteStore) NormalizeSubCategorySerials(ctx context.Context, categoryID string) (int, error) {
	var changed int
	err := s.atomic(ctx, "NormalizeSubCategorySerials", func(tx *SQLiteStore) error {
		var err error
		changed, err = subCategoryScope.normalize(ctx, tx.exec(), categoryID)
		return err
	})
	return changed, err
}

// touch bumps updated_at on a row.
func touch(ctx context.Context, exec executor, table, id string) error {
	_, err := exec.ExecContext(ctx, `UPDATE `+table+` SET updated_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	return err
}
