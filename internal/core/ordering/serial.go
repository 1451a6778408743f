package ordering

import (
	"sort"
	"time"
)

// Unbounded is the upper bound used by shifts that extend to the end of a
// scope.
const Unbounded = 1<<31 - 1

// Shift describes a bulk serial update: every row in the scope whose serial is
// in [Lo, Hi] moves by Delta.
type Shift struct {
	Lo    int
	Hi    int
	Delta int
}

// Contains reports whether serial falls inside the shifted range.
func (s Shift) Contains(serial int) bool {
	return serial >= s.Lo && serial <= s.Hi
}

// Apply returns the serial after the shift.
func (s Shift) Apply(serial int) int {
	if s.Contains(serial) {
		return serial + s.Delta
	}
	return serial
}

// =============================================================================
// Single Row Operations
// =============================================================================

// ClampTarget bounds a requested position to [1, count]. An empty scope
// clamps to 1.
func ClampTarget(to, count int) int {
	if count < 1 || to < 1 {
		return 1
	}
	if to > count {
		return count
	}
	return to
}

// Move returns the shift applied to the other rows of a scope when a row moves
// from serial `from` to serial `to`. Moving up (to < from) pushes [to, from-1]
// down by one; moving down pulls [from+1, to] up by one. The moved row itself
// is then set to `to`. ok is false when from == to.
//
// Example:
//
//	// A=1 B=2 C=3 D=4, move D to 2
//	shift, _ := Move(4, 2) // Shift{Lo: 2, Hi: 3, Delta: +1}
//	// Result: A=1 D=2 B=3 C=4
func Move(from, to int) (shift Shift, ok bool) {
	switch {
	case to < from:
		return Shift{Lo: to, Hi: from - 1, Delta: 1}, true
	case to > from:
		return Shift{Lo: from + 1, Hi: to, Delta: -1}, true
	default:
		return Shift{}, false
	}
}

// InsertAt returns the serial for a new row in a scope of count rows. A
// requested position outside [1, count] appends the row at count+1 with no
// shift; otherwise rows at or after the position move down by one.
func InsertAt(requested, count int) (pos int, shift Shift, ok bool) {
	if requested < 1 || requested > count {
		return count + 1, Shift{}, false
	}
	return requested, Shift{Lo: requested, Hi: Unbounded, Delta: 1}, true
}

// RemoveAt returns the shift that closes the gap left by deleting the row at
// serial.
func RemoveAt(serial int) Shift {
	return Shift{Lo: serial + 1, Hi: Unbounded, Delta: -1}
}

// =============================================================================
// Normalization
// =============================================================================

// Item is one row of a scope as seen by Normalize.
type Item struct {
	ID        string
	SerialNo  int
	CreatedAt time.Time
}

// Assignment sets the serial of one row.
type Assignment struct {
	ID       string
	SerialNo int
}

// Normalize renumbers a scope to 1..n. Rows keep their relative order by
// serial; ties are broken by creation time and then ID, and rows with a
// serial below 1 go last. Only rows whose serial changes are returned.
func Normalize(items []Item) []Assignment {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.SerialNo < 1) != (b.SerialNo < 1) {
			return b.SerialNo < 1
		}
		if a.SerialNo != b.SerialNo {
			return a.SerialNo < b.SerialNo
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	var changes []Assignment
	for i, it := range sorted {
		if want := i + 1; it.SerialNo != want {
			changes = append(changes, Assignment{ID: it.ID, SerialNo: want})
		}
	}
	return changes
}

// IsContiguous reports whether serials form exactly 1..len(serials) in any
// order.
func IsContiguous(serials []int) bool {
	seen := make([]bool, len(serials)+1)
	for _, s := range serials {
		if s < 1 || s > len(serials) || seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}
