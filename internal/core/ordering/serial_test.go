package ordering

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applyMove simulates a move over serials keyed by ID, the way the store does
// it with two UPDATE statements.
func applyMove(rows map[string]int, id string, to int) {
	to = ClampTarget(to, len(rows))
	from := rows[id]
	shift, ok := Move(from, to)
	if !ok {
		return
	}
	for k, s := range rows {
		if k != id {
			rows[k] = shift.Apply(s)
		}
	}
	rows[id] = to
}

func orderOf(rows map[string]int) []string {
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return rows[ids[i]] < rows[ids[j]] })
	return ids
}

func serials(rows map[string]int) []int {
	out := make([]int, 0, len(rows))
	for _, s := range rows {
		out = append(out, s)
	}
	return out
}

// =============================================================================
// ClampTarget Tests
// =============================================================================

func TestClampTarget(t *testing.T) {
	assert.Equal(t, 1, ClampTarget(0, 5))
	assert.Equal(t, 1, ClampTarget(-3, 5))
	assert.Equal(t, 3, ClampTarget(3, 5))
	assert.Equal(t, 5, ClampTarget(9, 5))
	assert.Equal(t, 1, ClampTarget(4, 0))
}

// =============================================================================
// Move Tests
// =============================================================================

func TestMove_Up(t *testing.T) {
	shift, ok := Move(4, 2)
	require.True(t, ok)
	assert.Equal(t, Shift{Lo: 2, Hi: 3, Delta: 1}, shift)
}

func TestMove_Down(t *testing.T) {
	shift, ok := Move(1, 3)
	require.True(t, ok)
	assert.Equal(t, Shift{Lo: 2, Hi: 3, Delta: -1}, shift)
}

func TestMove_Same(t *testing.T) {
	_, ok := Move(2, 2)
	assert.False(t, ok)
}

func TestMove_KeepsScopeContiguous(t *testing.T) {
	rows := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}

	applyMove(rows, "d", 2)
	assert.Equal(t, []string{"a", "d", "b", "c", "e"}, orderOf(rows))
	assert.True(t, IsContiguous(serials(rows)))

	applyMove(rows, "a", 5)
	assert.Equal(t, []string{"d", "b", "c", "e", "a"}, orderOf(rows))
	assert.True(t, IsContiguous(serials(rows)))

	applyMove(rows, "c", 100)
	assert.Equal(t, []string{"d", "b", "e", "a", "c"}, orderOf(rows))

	applyMove(rows, "c", 0)
	assert.Equal(t, []string{"c", "d", "b", "e", "a"}, orderOf(rows))
	assert.True(t, IsContiguous(serials(rows)))
}

// =============================================================================
// InsertAt / RemoveAt Tests
// =============================================================================

func TestInsertAt_Append(t *testing.T) {
	for _, requested := range []int{0, -1, 4, 10} {
		pos, _, ok := InsertAt(requested, 3)
		assert.False(t, ok)
		assert.Equal(t, 4, pos)
	}
}

func TestInsertAt_Middle(t *testing.T) {
	pos, shift, ok := InsertAt(2, 3)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.Equal(t, []int{1, 3, 4}, []int{shift.Apply(1), shift.Apply(2), shift.Apply(3)})
}

func TestInsertAt_EmptyScope(t *testing.T) {
	pos, _, ok := InsertAt(1, 0)
	assert.False(t, ok)
	assert.Equal(t, 1, pos)
}

func TestRemoveAt(t *testing.T) {
	shift := RemoveAt(2)
	assert.Equal(t, []int{1, 2, 3}, []int{shift.Apply(1), shift.Apply(3), shift.Apply(4)})
}

// =============================================================================
// Normalize Tests
// =============================================================================

func TestNormalize_AlreadyContiguous(t *testing.T) {
	items := []Item{{ID: "a", SerialNo: 1}, {ID: "b", SerialNo: 2}}
	assert.Empty(t, Normalize(items))
}

func TestNormalize_GapsAndDuplicates(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "c", SerialNo: 7, CreatedAt: t0},
		{ID: "b", SerialNo: 3, CreatedAt: t0.Add(time.Minute)},
		{ID: "a", SerialNo: 3, CreatedAt: t0},
		{ID: "z", SerialNo: 0, CreatedAt: t0},
		{ID: "d", SerialNo: 1, CreatedAt: t0},
	}

	changes := Normalize(items)
	assert.Equal(t, []Assignment{
		{ID: "a", SerialNo: 2},
		{ID: "c", SerialNo: 4},
		{ID: "z", SerialNo: 5},
	}, changes)

	// input is not reordered
	assert.Equal(t, "c", items[0].ID)
}

func TestNormalize_TieBreaksByID(t *testing.T) {
	items := []Item{{ID: "b", SerialNo: 1}, {ID: "a", SerialNo: 1}}
	assert.Equal(t, []Assignment{{ID: "b", SerialNo: 2}}, Normalize(items))
}

func TestIsContiguous(t *testing.T) {
	assert.True(t, IsContiguous(nil))
	assert.True(t, IsContiguous([]int{2, 1, 3}))
	assert.False(t, IsContiguous([]int{1, 1}))
	assert.False(t, IsContiguous([]int{1, 3}))
	assert.False(t, IsContiguous([]int{0, 1}))
}
