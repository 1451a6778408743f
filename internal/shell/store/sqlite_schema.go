package store

import (
	"context"
	"encoding/json"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Group Operations
// =============================================================================

// groupRow represents a field_groups row in the database.
type groupRow struct {
	ID         string `db:"id"`
	CategoryID string `db:"category_id"`
	Name       string `db:"name"`
	SerialNo   int    `db:"serial_no"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func (r *groupRow) toDomain() *domain.Group {
	return &domain.Group{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Name:       r.Name,
		SerialNo:   r.SerialNo,
		CreatedAt:  parseTime(r.CreatedAt),
		UpdatedAt:  parseTime(r.UpdatedAt),
	}
}

func (s *SQLiteStore) CreateGroup(ctx context.Context, group *domain.Group) error {
	return s.atomic(ctx, "CreateGroup", func(tx *SQLiteStore) error {
		exec := tx.exec()

		pos, err := groupScope.insertPosition(ctx, exec, group.CategoryID, group.SerialNo)
		if err != nil {
			return err
		}
		group.SerialNo = pos

		query := `
			INSERT INTO field_groups (id, category_id, name, serial_no, created_at, updated_at)
			VALUES (:id, :category_id, :name, :serial_no, :created_at, :updated_at)`
		row := groupRow{
			ID:         group.ID,
			CategoryID: group.CategoryID,
			Name:       group.Name,
			SerialNo:   group.SerialNo,
			CreatedAt:  formatTime(group.CreatedAt),
			UpdatedAt:  formatTime(group.UpdatedAt),
		}
		if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
			return wrapExecError("CreateGroup", "group", group.ID, err)
		}
		return nil
	})
}

func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	var row groupRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM field_groups WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetGroup", "group", id)
	}
	return row.toDomain(), nil
}

// UpdateGroup renames a group.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *domain.Group) error {
	result, err := s.exec().ExecContext(ctx,
		`UPDATE field_groups SET name = ?, updated_at = ? WHERE id = ?`,
		group.Name, formatTime(group.UpdatedAt), group.ID)
	if err != nil {
		return wrapExecError("UpdateGroup", "group", group.ID, err)
	}
	return checkAffected(result, "UpdateGroup", "group", group.ID)
}

// DeleteGroup removes a group, its fields and their product values.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	return s.atomic(ctx, "DeleteGroup", func(tx *SQLiteStore) error {
		return groupScope.deleteRow(ctx, tx.exec(), "DeleteGroup", id)
	})
}

func (s *SQLiteStore) ListGroups(ctx context.Context, categoryID string) ([]domain.Group, error) {
	var rows []groupRow
	query := `SELECT * FROM field_groups WHERE category_id = ? ORDER BY serial_no, created_at, id`
	if err := s.exec().SelectContext(ctx, &rows, query, categoryID); err != nil {
		return nil, NewStoreError("ListGroups", "group", categoryID, err.Error(), err)
	}
	groups := make([]domain.Group, len(rows))
	for i := range rows {
		groups[i] = *rows[i].toDomain()
	}
	return groups, nil
}

func (s *SQLiteStore) MoveGroup(ctx context.Context, id string, to int) (*domain.Group, error) {
	var moved *domain.Group
	err := s.atomic(ctx, "MoveGroup", func(tx *SQLiteStore) error {
		if _, err := groupScope.move(ctx, tx.exec(), id, to); err != nil {
			return err
		}
		var err error
		moved, err = tx.GetGroup(ctx, id)
		return err
	})
	return moved, err
}

func (s *SQLiteStore) NormalizeGroupSerials(ctx context.Context, categoryID string) (int, error) {
	var changed int
	err := s.atomic(ctx, "NormalizeGroupSerials", func(tx *SQLiteStore) error {
		var err error
		changed, err = groupScope.normalize(ctx, tx.exec(), categoryID)
		return err
	})
	return changed, err
}

// =============================================================================
// Field Operations
// =============================================================================

// fieldRow represents a fields row in the database.
type fieldRow struct {
	ID         string `db:"id"`
	GroupID    string `db:"group_id"`
	Name       string `db:"name"`
	Type       string `db:"type"`
	Options    string `db:"options"`
	Unit       string `db:"unit"`
	Required   bool   `db:"required"`
	Filterable bool   `db:"filterable"`
	SerialNo   int    `db:"serial_no"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func fieldToRow(f *domain.Field) (fieldRow, error) {
	options := f.Options
	if options == nil {
		options = []string{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return fieldRow{}, NewStoreError("fieldToRow", "field", f.ID, "failed to serialize options", ErrInvalidData)
	}
	return fieldRow{
		ID:         f.ID,
		GroupID:    f.GroupID,
		Name:       f.Name,
		Type:       string(f.Type),
		Options:    string(optionsJSON),
		Unit:       f.Unit,
		Required:   f.Required,
		Filterable: f.Filterable,
		SerialNo:   f.SerialNo,
		CreatedAt:  formatTime(f.CreatedAt),
		UpdatedAt:  formatTime(f.UpdatedAt),
	}, nil
}

func rowToField(row *fieldRow) (*domain.Field, error) {
	options := []string{}
	if row.Options != "" && row.Options != "null" {
		if err := json.Unmarshal([]byte(row.Options), &options); err != nil {
			return nil, NewStoreError("rowToField", "field", row.ID, "failed to parse options", ErrInvalidData)
		}
	}
	return &domain.Field{
		ID:         row.ID,
		GroupID:    row.GroupID,
		Name:       row.Name,
		Type:       domain.FieldType(row.Type),
		Options:    options,
		Unit:       row.Unit,
		Required:   row.Required,
		Filterable: row.Filterable,
		SerialNo:   row.SerialNo,
		CreatedAt:  parseTime(row.CreatedAt),
		UpdatedAt:  parseTime(row.UpdatedAt),
	}, nil
}

func rowsToFields(rows []fieldRow) ([]domain.Field, error) {
	fields := make([]domain.Field, 0, len(rows))
	for i := range rows {
		f, err := rowToField(&rows[i])
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	return fields, nil
}

func (s *SQLiteStore) CreateField(ctx context.Context, field *domain.Field) error {
	return s.atomic(ctx, "CreateField", func(tx *SQLiteStore) error {
		exec := tx.exec()

		pos, err := fieldScope.insertPosition(ctx, exec, field.GroupID, field.SerialNo)
		if err != nil {
			return err
		}
		field.SerialNo = pos

		row, err := fieldToRow(field)
		if err != nil {
			return err
		}
		query := `
			INSERT INTO fields (
				id, group_id, name, type, options, unit, required, filterable,
				serial_no, created_at, updated_at
			) VALUES (
				:id, :group_id, :name, :type, :options, :unit, :required, :filterable,
				:serial_no, :created_at, :updated_at
			)`
		if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
			return wrapExecError("CreateField", "field", field.ID, err)
		}
		return nil
	})
}

func (s *SQLiteStore) GetField(ctx context.Context, id string) (*domain.Field, error) {
	var row fieldRow
	if err := s.exec().GetContext(ctx, &row, `SELECT * FROM fields WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "GetField", "field", id)
	}
	return rowToField(&row)
}

// UpdateField updates the field definition. Existing product values are not
// revalidated against a changed type.
func (s *SQLiteStore) UpdateField(ctx context.Context, field *domain.Field) error {
	row, err := fieldToRow(field)
	if err != nil {
		return err
	}
	query := `
		UPDATE fields SET
			name = :name,
			type = :type,
			options = :options,
			unit = :unit,
			required = :required,
			filterable = :filterable,
			updated_at = :updated_at
		WHERE id = :id`
	result, err := s.exec().NamedExecContext(ctx, query, row)
	if err != nil {
		return wrapExecError("UpdateField", "field", field.ID, err)
	}
	return checkAffected(result, "UpdateField", "field", field.ID)
}

func (s *SQLiteStore) DeleteField(ctx context.Context, id string) error {
	return s.atomic(ctx, "DeleteField", func(tx *SQLiteStore) error {
		return fieldScope.deleteRow(ctx, tx.exec(), "DeleteField", id)
	})
}

func (s *SQLiteStore) ListFields(ctx context.Context, groupID string) ([]domain.Field, error) {
	var rows []fieldRow
	query := `SELECT * FROM fields WHERE group_id = ? ORDER BY serial_no, created_at, id`
	if err := s.exec().SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, NewStoreError("ListFields", "field", groupID, err.Error(), err)
	}
	return rowsToFields(rows)
}

// ListFieldsByCategory returns every field of a category ordered by group
// serial, then field serial.
func (s *SQLiteStore) ListFieldsByCategory(ctx context.Context, categoryID string) ([]domain.Field, error) {
	var rows []fieldRow
	query := `
		SELECT f.* FROM fields f
		JOIN field_groups g ON g.id = f.group_id
		WHERE g.category_id = ?
		ORDER BY g.serial_no, f.serial_no, f.created_at, f.id`
	if err := s.exec().SelectContext(ctx, &rows, query, categoryID); err != nil {
		return nil, NewStoreError("ListFieldsByCategory", "field", categoryID, err.Error(), err)
	}
	return rowsToFields(rows)
}

func (s *SQLiteStore) MoveField(ctx context.Context, id string, to int) (*domain.Field, error) {
	var moved *domain.Field
	err := s.atomic(ctx, "MoveField", func(tx *SQLiteStore) error {
		if _, err := fieldScope.move(ctx, tx.exec(), id, to); err != nil {
			return err
		}
		var err error
		moved, err = tx.GetField(ctx, id)
		return err
	})
	return moved, err
}

func (s *SQLiteStore) NormalizeFieldSerials(ctx context.Context, groupID string) (int, error) {
	var changed int
	err := s.atomic(ctx, "NormalizeFieldSerials", func(tx *SQLiteStore) error {
		var err error
		changed, err = fieldScope.normalize(ctx, tx.exec(), groupID)
		return err
	})
	return changed, err
}
