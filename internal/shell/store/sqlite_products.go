package store

import (
	"context"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Product Operations
// =============================================================================

// productRow represents a products row in the database.
type productRow struct {
	ID            string  `db:"id"`
	CategoryID    string  `db:"category_id"`
	SubCategoryID *string `db:"sub_category_id"`
	ModelName     string  `db:"model_name"`
	Slug          string  `db:"slug"`
	Description   string  `db:"description"`
	Published     bool    `db:"published"`
	CreatedAt     string  `db:"created_at"`
	UpdatedAt     string  `db:"updated_at"`
}

func (r *productRow) toDomain(values []domain.ProductValue, files []domain.File) *domain.Product {
	if values == nil {
		values = []domain.ProductValue{}
	}
	return &domain.Product{
		ID:            r.ID,
		CategoryID:    r.CategoryID,
		SubCategoryID: r.SubCategoryID,
		ModelName:     r.ModelName,
		Slug:          r.Slug,
		Description:   r.Description,
		Published:     r.Published,
		Values:        values,
		Files:         filesOrEmpty(files),
		CreatedAt:     parseTime(r.CreatedAt),
		UpdatedAt:     parseTime(r.UpdatedAt),
	}
}

// CreateProduct inserts a product with its field values and attachments in
// one transaction. Values must reference fields of the product's category.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *domain.Product, values []domain.ProductValue, fileIDs []string) error {
	return s.atomic(ctx, "CreateProduct", func(tx *SQLiteStore) error {
		exec := tx.exec()

		if err := checkSubCategory(ctx, exec, "CreateProduct", product); err != nil {
			return err
		}

		query := `
			INSERT INTO products (
				id, category_id, sub_category_id, model_name, slug, description,
				published, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := exec.ExecContext(ctx, query,
			product.ID, product.CategoryID, nullString(product.SubCategoryID),
			product.ModelName, product.Slug, product.Description, product.Published,
			formatTime(product.CreatedAt), formatTime(product.UpdatedAt))
		if err != nil {
			return wrapExecError("CreateProduct", "product", product.ID, err)
		}

		if err := replaceValues(ctx, exec, "CreateProduct", product.ID, product.CategoryID, values); err != nil {
			return err
		}
		if err := productFiles.replace(ctx, exec, "CreateProduct", product.ID, fileIDs); err != nil {
			return err
		}

		fresh, err := getProduct(ctx, exec, "id", product.ID)
		if err != nil {
			return err
		}
		*product = *fresh
		return nil
	})
}

func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return getProduct(ctx, s.exec(), "id", id)
}

func (s *SQLiteStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return getProduct(ctx, s.exec(), "slug", slug)
}

// UpdateProduct updates product attributes and, when non-nil, replaces its
// values and attachments in the same transaction. The category is fixed at
// creation.
func (s *SQLiteStore) UpdateProduct(ctx context.Context, product *domain.Product, values []domain.ProductValue, fileIDs []string) error {
	return s.atomic(ctx, "UpdateProduct", func(tx *SQLiteStore) error {
		exec := tx.exec()

		var categoryID string
		if err := exec.GetContext(ctx, &categoryID, `SELECT category_id FROM products WHERE id = ?`, product.ID); err != nil {
			return notFoundOr(err, "UpdateProduct", "product", product.ID)
		}
		product.CategoryID = categoryID

		if err := checkSubCategory(ctx, exec, "UpdateProduct", product); err != nil {
			return err
		}

		query := `
			UPDATE products SET
				sub_category_id = ?, model_name = ?, slug = ?, description = ?,
				published = ?, updated_at = ?
			WHERE id = ?`
		_, err := exec.ExecContext(ctx, query,
			nullString(product.SubCategoryID), product.ModelName, product.Slug,
			product.Description, product.Published, formatTime(product.UpdatedAt), product.ID)
		if err != nil {
			return wrapExecError("UpdateProduct", "product", product.ID, err)
		}

		if values != nil {
			if err := replaceValues(ctx, exec, "UpdateProduct", product.ID, categoryID, values); err != nil {
				return err
			}
		}
		if fileIDs != nil {
			if err := productFiles.replace(ctx, exec, "UpdateProduct", product.ID, fileIDs); err != nil {
				return err
			}
		}

		fresh, err := getProduct(ctx, exec, "id", product.ID)
		if err != nil {
			return err
		}
		*product = *fresh
		return nil
	})
}

// SetProductValues replaces all field values of a product.
func (s *SQLiteStore) SetProductValues(ctx context.Context, productID string, values []domain.ProductValue) error {
	return s.atomic(ctx, "SetProductValues", func(tx *SQLiteStore) error {
		exec := tx.exec()

		var categoryID string
		if err := exec.GetContext(ctx, &categoryID, `SELECT category_id FROM products WHERE id = ?`, productID); err != nil {
			return notFoundOr(err, "SetProductValues", "product", productID)
		}
		if err := replaceValues(ctx, exec, "SetProductValues", productID, categoryID, values); err != nil {
			return err
		}
		if err := touch(ctx, exec, "products", productID); err != nil {
			return NewStoreError("SetProductValues", "product", productID, err.Error(), err)
		}
		return nil
	})
}

func (s *SQLiteStore) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.exec().ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return wrapExecError("DeleteProduct", "product", id, err)
	}
	return checkAffected(result, "DeleteProduct", "product", id)
}

// ListProducts returns products matching filter, newest first, with values
// and attachments loaded.
func (s *SQLiteStore) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	exec := s.exec()
	opts := filter.ListOptions.Normalize()

	where, args := productWhere(filter)
	query := `SELECT p.* FROM products p` + where + ` ORDER BY p.created_at DESC, p.id LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	var rows []productRow
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("ListProducts", "product", "", err.Error(), err)
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	values, err := loadValues(ctx, exec, ids...)
	if err != nil {
		return nil, err
	}
	files, err := productFiles.load(ctx, exec, ids...)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].toDomain(values[rows[i].ID], files[rows[i].ID])
	}
	return products, nil
}

// CountProducts returns the number of products matching filter, ignoring
// pagination.
func (s *SQLiteStore) CountProducts(ctx context.Context, filter ProductFilter) (int, error) {
	where, args := productWhere(filter)
	var n int
	if err := s.exec().GetContext(ctx, &n, `SELECT COUNT(*) FROM products p`+where, args...); err != nil {
		return 0, NewStoreError("CountProducts", "product", "", err.Error(), err)
	}
	return n, nil
}

// =============================================================================
// Helpers
// =============================================================================

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func productWhere(filter ProductFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.CategoryID != "" {
		conds = append(conds, "p.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.SubCategoryID != "" {
		conds = append(conds, "p.sub_category_id = ?")
		args = append(args, filter.SubCategoryID)
	}
	if filter.PublishedOnly {
		conds = append(conds, "p.published = 1")
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		conds = append(conds, `(LOWER(p.model_name) LIKE ? ESCAPE '\' OR LOWER(p.description) LIKE ? ESCAPE '\')`)
		like := "%" + likeEscaper.Replace(q) + "%"
		args = append(args, like, like)
	}

	fieldIDs := make([]string, 0, len(filter.Values))
	for id := range filter.Values {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)
	for _, id := range fieldIDs {
		conds = append(conds,
			"EXISTS (SELECT 1 FROM product_values pv WHERE pv.product_id = p.id AND pv.field_id = ? AND pv.value = ?)")
		args = append(args, id, filter.Values[id])
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func getProduct(ctx context.Context, exec executor, column, value string) (*domain.Product, error) {
	var row productRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM products WHERE `+column+` = ?`, value); err != nil {
		return nil, notFoundOr(err, "GetProduct", "product", value)
	}
	values, err := loadValues(ctx, exec, row.ID)
	if err != nil {
		return nil, err
	}
	files, err := productFiles.load(ctx, exec, row.ID)
	if err != nil {
		return nil, err
	}
	return row.toDomain(values[row.ID], files[row.ID]), nil
}

// checkSubCategory verifies that the product's sub-category, when set,
// belongs to the product's category.
func checkSubCategory(ctx context.Context, exec executor, op string, product *domain.Product) error {
	if product.SubCategoryID == nil || *product.SubCategoryID == "" {
		return nil
	}
	var categoryID string
	err := exec.GetContext(ctx, &categoryID, `SELECT category_id FROM sub_categories WHERE id = ?`, *product.SubCategoryID)
	if err != nil {
		if IsNotFound(notFoundOr(err, op, "sub_category", *product.SubCategoryID)) {
			return NewStoreError(op, "product", product.ID, "sub-category does not exist", ErrForeignKey)
		}
		return NewStoreError(op, "product", product.ID, err.Error(), err)
	}
	if categoryID != product.CategoryID {
		return NewStoreError(op, "product", product.ID, "sub-category belongs to another category", ErrForeignKey)
	}
	return nil
}

// replaceValues swaps all values of a product. Every field must belong to
// categoryID.
func replaceValues(ctx context.Context, exec executor, op, productID, categoryID string, values []domain.ProductValue) error {
	fieldIDs := make([]string, 0, len(values))
	for _, v := range values {
		fieldIDs = append(fieldIDs, v.FieldID)
	}
	fieldIDs = uniqueIDs(fieldIDs)
	if len(fieldIDs) != len(values) {
		return NewStoreError(op, "product", productID, "duplicate field value", ErrInvalidData)
	}

	if len(fieldIDs) > 0 {
		query, args, err := sqlx.In(`
			SELECT COUNT(*) FROM fields f
			JOIN field_groups g ON g.id = f.group_id
			WHERE f.id IN (?) AND g.category_id = ?`, fieldIDs, categoryID)
		if err != nil {
			return NewStoreError(op, "product", productID, err.Error(), err)
		}
		var n int
		if err := exec.GetContext(ctx, &n, query, args...); err != nil {
			return NewStoreError(op, "product", productID, err.Error(), err)
		}
		if n != len(fieldIDs) {
			return NewStoreError(op, "product", productID, "field does not belong to the product category", ErrForeignKey)
		}
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM product_values WHERE product_id = ?`, productID); err != nil {
		return NewStoreError(op, "product", productID, err.Error(), err)
	}
	for _, v := range values {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO product_values (product_id, field_id, value) VALUES (?, ?, ?)`,
			productID, v.FieldID, v.Value)
		if err != nil {
			return wrapExecError(op, "product_value", productID, err)
		}
	}
	return nil
}

// loadValues returns the values of each product ordered by field ID.
func loadValues(ctx context.Context, exec executor, productIDs ...string) (map[string][]domain.ProductValue, error) {
	out := make(map[string][]domain.ProductValue, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT product_id, field_id, value FROM product_values
		WHERE product_id IN (?)
		ORDER BY product_id, field_id`, productIDs)
	if err != nil {
		return nil, NewStoreError("LoadValues", "product", "", err.Error(), err)
	}

	var rows []domain.ProductValue
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("LoadValues", "product", "", err.Error(), err)
	}
	for _, v := range rows {
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, nil
}
