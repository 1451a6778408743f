// Package ordering provides pure functions for serial-number ordering.
//
// Categories, sub-categories, groups, fields and background blocks carry a
// 1-based SerialNo that is unique and contiguous within its scope (the
// parent category, group or section). This package computes how serials
// change when a row is inserted, removed or moved, and how a scope with gaps
// or duplicates is renumbered. All functions are pure (no I/O, no side
// effects).
//
// # Functions
//
//   - ClampTarget: Bound a requested position to the scope size
//   - Move: Shift needed to move a row from one serial to another
//   - InsertAt: Position and shift for a new row
//   - RemoveAt: Shift that closes the gap left by a deleted row
//   - Normalize: Renumber a scope to 1..n
//
// # Usage
//
// The imperative shell (internal/shell/store) applies these results inside a
// write transaction:
//
//	to = ordering.ClampTarget(to, count)
//	shift, ok := ordering.Move(from, to)
//	// UPDATE ... SET serial_no = serial_no + shift.Delta
//	//   WHERE serial_no BETWEEN shift.Lo AND shift.Hi
package ordering
