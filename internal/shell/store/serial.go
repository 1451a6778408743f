package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/ordering"
)

// =============================================================================
// Serial Scopes
// =============================================================================

// serialScope names a table whose rows carry a serial_no that is contiguous
// within the parent column. An empty parent means one global scope.
//
// All methods expect to run inside a write transaction.
type serialScope struct {
	entity string
	table  string
	parent string
}

var (
	categoryScope    = serialScope{entity: "category", table: "categories"}
	subCategoryScope = serialScope{entity: "sub_category", table: "sub_categories", parent: "category_id"}
	groupScope       = serialScope{entity: "group", table: "field_groups", parent: "category_id"}
	fieldScope       = serialScope{entity: "field", table: "fields", parent: "group_id"}
	backgroundScope  = serialScope{entity: "background", table: "backgrounds", parent: "section"}
)

func (sc serialScope) where(parentID string) (string, []any) {
	if sc.parent == "" {
		return "1 = 1", nil
	}
	return sc.parent + " = ?", []any{parentID}
}

func (sc serialScope) parentExpr() string {
	if sc.parent == "" {
		return "''"
	}
	return sc.parent
}

// count returns the number of rows in the scope.
func (sc serialScope) count(ctx context.Context, exec executor, parentID string) (int, error) {
	where, args := sc.where(parentID)
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, sc.table, where)
	if err := exec.GetContext(ctx, &n, query, args...); err != nil {
		return 0, NewStoreError("CountSerials", sc.entity, parentID, err.Error(), err)
	}
	return n, nil
}

// locate returns the parent and serial of a row.
func (sc serialScope) locate(ctx context.Context, exec executor, id string) (string, int, error) {
	var row struct {
		SerialNo int    `db:"serial_no"`
		ParentID string `db:"parent_id"`
	}
	query := fmt.Sprintf(`SELECT serial_no, %s AS parent_id FROM %s WHERE id = ?`, sc.parentExpr(), sc.table)
	if err := exec.GetContext(ctx, &row, query, id); err != nil {
		return "", 0, notFoundOr(err, "LocateSerial", sc.entity, id)
	}
	return row.ParentID, row.SerialNo, nil
}

// apply runs a bulk shift over the scope, skipping excludeID.
func (sc serialScope) apply(ctx context.Context, exec executor, parentID string, s ordering.Shift, excludeID string) error {
	where, args := sc.where(parentID)
	query := fmt.Sprintf(
		`UPDATE %s SET serial_no = serial_no + ? WHERE %s AND serial_no BETWEEN ? AND ? AND id <> ?`,
		sc.table, where)

	full := append([]any{s.Delta}, args...)
	full = append(full, s.Lo, s.Hi, excludeID)
	if _, err := exec.ExecContext(ctx, query, full...); err != nil {
		return NewStoreError("ShiftSerials", sc.entity, parentID, err.Error(), err)
	}
	return nil
}

// insertPosition reserves a serial for a new row. A requested serial inside
// the scope pushes later rows down; anything else appends.
func (sc serialScope) insertPosition(ctx context.Context, exec executor, parentID string, requested int) (int, error) {
	n, err := sc.count(ctx, exec, parentID)
	if err != nil {
		return 0, err
	}
	pos, shift, ok := ordering.InsertAt(requested, n)
	if ok {
		if err := sc.apply(ctx, exec, parentID, shift, ""); err != nil {
			return 0, err
		}
	}
	return pos, nil
}

// closeGap pulls up the rows after a removed serial.
func (sc serialScope) closeGap(ctx context.Context, exec executor, parentID string, serial int) error {
	return sc.apply(ctx, exec, parentID, ordering.RemoveAt(serial), "")
}

// move places row id at serial `to` (clamped to the scope) and shifts the
// rows in between. The scope is normalized first so the arithmetic holds
// even if earlier writes left gaps.
func (sc serialScope) move(ctx context.Context, exec executor, id string, to int) (int, error) {
	parentID, _, err := sc.locate(ctx, exec, id)
	if err != nil {
		return 0, err
	}
	if _, err := sc.normalize(ctx, exec, parentID); err != nil {
		return 0, err
	}
	_, from, err := sc.locate(ctx, exec, id)
	if err != nil {
		return 0, err
	}
	n, err := sc.count(ctx, exec, parentID)
	if err != nil {
		return 0, err
	}

	to = ordering.ClampTarget(to, n)
	shift, ok := ordering.Move(from, to)
	if !ok {
		return from, nil
	}
	if err := sc.apply(ctx, exec, parentID, shift, id); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`UPDATE %s SET serial_no = ?, updated_at = ? WHERE id = ?`, sc.table)
	if _, err := exec.ExecContext(ctx, query, to, formatTime(time.Now()), id); err != nil {
		return 0, NewStoreError("MoveSerial", sc.entity, id, err.Error(), err)
	}
	return to, nil
}

// normalize renumbers the scope to 1..n and returns how many rows changed.
func (sc serialScope) normalize(ctx context.Context, exec executor, parentID string) (int, error) {
	where, args := sc.where(parentID)
	var rows []struct {
		ID        string `db:"id"`
		SerialNo  int    `db:"serial_no"`
		CreatedAt string `db:"created_at"`
	}
	query := fmt.Sprintf(`SELECT id, serial_no, created_at FROM %s WHERE %s`, sc.table, where)
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return 0, NewStoreError("NormalizeSerials", sc.entity, parentID, err.Error(), err)
	}

	items := make([]ordering.Item, len(rows))
	for i, r := range rows {
		items[i] = ordering.Item{ID: r.ID, SerialNo: r.SerialNo, CreatedAt: parseTime(r.CreatedAt)}
	}

	changes := ordering.Normalize(items)
	update := fmt.Sprintf(`UPDATE %s SET serial_no = ? WHERE id = ?`, sc.table)
	for _, c := range changes {
		if _, err := exec.ExecContext(ctx, update, c.SerialNo, c.ID); err != nil {
			return 0, NewStoreError("NormalizeSerials", sc.entity, c.ID, err.Error(), err)
		}
	}
	return len(changes), nil
}

// deleteRow removes a row and closes the gap it leaves.
func (sc serialScope) deleteRow(ctx context.Context, exec executor, op, id string) error {
	parentID, serial, err := sc.locate(ctx, exec, id)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, sc.table)
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return wrapExecError(op, sc.entity, id, err)
	}
	if err := checkAffected(result, op, sc.entity, id); err != nil {
		return err
	}
	return sc.closeGap(ctx, exec, parentID, serial)
}
