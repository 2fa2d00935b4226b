package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_FirstRouteAccepted(t *testing.T) {
	tbl := NewTable(0)
	assert.True(t, tbl.Update(4, 1, 3, 1))

	e, ok := tbl.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, 1, e.NextHop)
	assert.Equal(t, 3, e.HopCount)
	assert.Equal(t, 1, e.Seq)
}

func TestUpdate_FreshnessRule(t *testing.T) {
	tbl := NewTable(0)
	require.True(t, tbl.Update(4, 1, 3, 5))

	// stale sequence number never wins, even with a shorter route
	assert.False(t, tbl.Update(4, 2, 1, 4))

	// equal sequence number needs a strictly better hop count
	assert.False(t, tbl.Update(4, 2, 3, 5))
	assert.False(t, tbl.Update(4, 2, 4, 5))
	assert.True(t, tbl.Update(4, 2, 2, 5))

	// a newer sequence number wins regardless of hop count
	assert.True(t, tbl.Update(4, 3, 9, 6))

	e, _ := tbl.Lookup(4)
	assert.Equal(t, 3, e.NextHop)
	assert.Equal(t, 9, e.HopCount)
	assert.Equal(t, 6, e.Seq)
}

func TestInvalidate_KeepsSequenceNumber(t *testing.T) {
	tbl := NewTable(0)
	require.True(t, tbl.Update(4, 1, 3, 5))
	require.True(t, tbl.Invalidate(4))

	_, ok := tbl.Lookup(4)
	assert.False(t, ok)

	// the invalid entry still guards against stale resurrections...
	snap := tbl.Snapshot()
	assert.Equal(t, 5, snap[4].Seq)
	assert.False(t, snap[4].Valid)

	// ...so only an equal-or-newer sequence number brings the route back
	assert.False(t, tbl.Update(4, 2, 7, 4))
	assert.True(t, tbl.Update(4, 2, 7, 5))
	e, ok := tbl.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, 2, e.NextHop)
}

func TestUpdate_InvalidEntryStillGatesStaleSeq(t *testing.T) {
	tbl := NewTable(0)
	require.True(t, tbl.Update(4, 1, 3, 10))
	require.True(t, tbl.Invalidate(4))

	// a late copy from an older flood must not regress the sequence number
	assert.False(t, tbl.Update(4, 9, 1, 4))
	snap := tbl.Snapshot()
	assert.Equal(t, 10, snap[4].Seq)
	assert.False(t, snap[4].Valid)
	_, ok := tbl.Lookup(4)
	assert.False(t, ok)

	// equal seq resurrects regardless of hop count, the old route is dead
	assert.True(t, tbl.Update(4, 2, 5, 10))
	e, ok := tbl.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, 2, e.NextHop)
	assert.Equal(t, 10, e.Seq)
}

func TestInvalidate_MissingOrAlreadyInvalid(t *testing.T) {
	tbl := NewTable(0)
	assert.False(t, tbl.Invalidate(9))

	require.True(t, tbl.Update(4, 1, 3, 1))
	require.True(t, tbl.Invalidate(4))
	assert.False(t, tbl.Invalidate(4))
}

func TestDestinationsVia(t *testing.T) {
	tbl := NewTable(0)
	tbl.Update(4, 1, 3, 1)
	tbl.Update(7, 1, 2, 1)
	tbl.Update(5, 2, 1, 1)
	tbl.Update(6, 1, 4, 1)
	tbl.Invalidate(6)

	assert.Equal(t, []int{4, 7}, tbl.DestinationsVia(1))
	assert.Equal(t, []int{5}, tbl.DestinationsVia(2))
	assert.Empty(t, tbl.DestinationsVia(3))
}

func TestPrecursors_SortedAndPerDestination(t *testing.T) {
	tbl := NewTable(2)
	tbl.AddPrecursor(4, 3)
	tbl.AddPrecursor(4, 1)
	tbl.AddPrecursor(4, 1) // duplicate adds are idempotent
	tbl.AddPrecursor(0, 3)

	assert.Equal(t, []int{1, 3}, tbl.Precursors(4))
	assert.Equal(t, []int{3}, tbl.Precursors(0))
	assert.Empty(t, tbl.Precursors(9))
}

func TestReset(t *testing.T) {
	tbl := NewTable(0)
	tbl.Update(4, 1, 3, 1)
	tbl.AddPrecursor(4, 1)
	tbl.Reset()

	_, ok := tbl.Lookup(4)
	assert.False(t, ok)
	assert.Empty(t, tbl.Precursors(4))
	assert.Empty(t, tbl.Snapshot())
}
