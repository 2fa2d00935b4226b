package routing

import (
	"slices"
	"sync"
)

// Entry is one route held by a node: how to reach Destination and how fresh
// that knowledge is. Seq is the destination sequence number last heard for
// this route; stale information never overwrites it.
type Entry struct {
	Destination int
	NextHop     int
	HopCount    int
	Seq         int
	Valid       bool
}

// Table is a single node's route table. The protocol engine is the only
// writer; display collaborators read snapshots.
type Table struct {
	owner      int
	entries    map[int]*Entry
	precursors map[int]map[int]struct{}
	mu         sync.Mutex
}

func NewTable(owner int) *Table {
	return &Table{
		owner:      owner,
		entries:    make(map[int]*Entry),
		precursors: make(map[int]map[int]struct{}),
	}
}

func (t *Table) Owner() int {
	return t.owner
}

// Update applies the AODV freshness rule: accept the route iff the carried
// sequence number is newer, or equal with a strictly better hop count. An
// invalidated entry keeps gating on its retained sequence number, so a stale
// flood cannot resurrect it; equal seq is enough since the old route is
// unusable anyway. Returns whether the entry changed.
func (t *Table) Update(dest, nextHop, hopCount, seq int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.entries[dest]
	if ok {
		if seq < cur.Seq {
			return false
		}
		if seq == cur.Seq && cur.Valid && hopCount >= cur.HopCount {
			return false
		}
	}
	t.entries[dest] = &Entry{
		Destination: dest,
		NextHop:     nextHop,
		HopCount:    hopCount,
		Seq:         seq,
		Valid:       true,
	}
	return true
}

// Lookup returns the valid entry for dest, if any.
func (t *Table) Lookup(dest int) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[dest]
	if !ok || !e.Valid {
		return Entry{}, false
	}
	return *e, true
}

// Invalidate flags the entry for dest as unusable, keeping its sequence
// number so a later RREP must carry fresher state to resurrect it.
func (t *Table) Invalidate(dest int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[dest]
	if !ok || !e.Valid {
		return false
	}
	e.Valid = false
	return true
}

// DestinationsVia returns every destination with a valid route whose next
// hop is via. These are the routes a broken link to via takes down.
func (t *Table) DestinationsVia(via int) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []int
	for dest, e := range t.entries {
		if e.Valid && e.NextHop == via {
			out = append(out, dest)
		}
	}
	slices.Sort(out)
	return out
}

// AddPrecursor records that node routes through us to reach dest.
func (t *Table) AddPrecursor(dest, node int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.precursors[dest]
	if !ok {
		set = make(map[int]struct{})
		t.precursors[dest] = set
	}
	set[node] = struct{}{}
}

// Precursors returns the nodes known to route through us toward dest,
// in ascending order.
func (t *Table) Precursors(dest int) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []int
	for node := range t.precursors[dest] {
		out = append(out, node)
	}
	slices.Sort(out)
	return out
}

// Snapshot copies the table for external readers.
func (t *Table) Snapshot() map[int]Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]Entry, len(t.entries))
	for dest, e := range t.entries {
		out[dest] = *e
	}
	return out
}

// Reset drops all routes and precursors.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[int]*Entry)
	t.precursors = make(map[int]map[int]struct{})
}
