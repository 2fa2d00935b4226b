package topology

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/gopxl/pixel/v2"
)

// Placement constants, matching the simulation area the renderer collaborators
// expect: nodes keep away from the border and from each other.
const (
	PlacementMargin = 60.0
	MinSeparation   = 40.0

	DefaultWidth  = 1300.0
	DefaultHeight = 900.0
	DefaultRange  = 130.0
)

// Node is one mobile station. Position and velocity are owned by the
// topology; everything else references a node by its ID.
type Node struct {
	ID     int
	Pos    pixel.Vec
	Vel    pixel.Vec
	Range  float64
	Active bool
}

// Topology holds node positions and derives the link relation from them.
// Links are never stored: two nodes are linked iff they are within each
// other's transmission range, so the relation is symmetric by construction.
type Topology struct {
	width   float64
	height  float64
	txRange float64
	nodes   []*Node
	blocked map[[2]int]struct{}
}

func New(width, height, txRange float64) *Topology {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if txRange <= 0 {
		txRange = DefaultRange
	}
	return &Topology{width: width, height: height, txRange: txRange}
}

func (t *Topology) Bounds() (width, height float64) {
	return t.width, t.height
}

func (t *Topology) Range() float64 {
	return t.txRange
}

// Regenerate replaces all nodes with a fresh seeded random placement.
// Rejection sampling keeps nodes MinSeparation apart; after the attempt
// budget runs out the remaining nodes are placed unconditionally so a dense
// request still succeeds.
func (t *Topology) Regenerate(nodeCount int, seed int64) error {
	if nodeCount < 2 {
		return fmt.Errorf("topology needs at least 2 nodes, got %d", nodeCount)
	}

	rng := rand.New(rand.NewSource(seed))
	nodes := make([]*Node, 0, nodeCount)
	attempts := nodeCount * 10

	for len(nodes) < nodeCount && attempts > 0 {
		pos := pixel.V(
			PlacementMargin+rng.Float64()*(t.width-2*PlacementMargin),
			PlacementMargin+rng.Float64()*(t.height-2*PlacementMargin),
		)
		tooClose := false
		for _, n := range nodes {
			if n.Pos.Sub(pos).Len() < MinSeparation {
				tooClose = true
				break
			}
		}
		if !tooClose {
			nodes = append(nodes, &Node{ID: len(nodes), Pos: pos, Range: t.txRange, Active: true})
		}
		attempts--
	}
	for len(nodes) < nodeCount {
		pos := pixel.V(
			PlacementMargin+rng.Float64()*(t.width-2*PlacementMargin),
			PlacementMargin+rng.Float64()*(t.height-2*PlacementMargin),
		)
		nodes = append(nodes, &Node{ID: len(nodes), Pos: pos, Range: t.txRange, Active: true})
	}

	t.nodes = nodes
	t.blocked = nil
	return nil
}

// Place replaces all nodes with an explicit layout. Used by scripted
// scenarios and tests that need an exact adjacency graph.
func (t *Topology) Place(positions []pixel.Vec) error {
	if len(positions) < 2 {
		return fmt.Errorf("topology needs at least 2 nodes, got %d", len(positions))
	}
	nodes := make([]*Node, len(positions))
	for i, pos := range positions {
		nodes[i] = &Node{ID: i, Pos: pos, Range: t.txRange, Active: true}
	}
	t.nodes = nodes
	t.blocked = nil
	return nil
}

func (t *Topology) NodeCount() int {
	return len(t.nodes)
}

func (t *Topology) Node(id int) (*Node, bool) {
	if id < 0 || id >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[id], true
}

func (t *Topology) Nodes() []*Node {
	return slices.Clone(t.nodes)
}

// SetActive marks a node up or down. A down node has no links.
func (t *Topology) SetActive(id int, active bool) error {
	n, ok := t.Node(id)
	if !ok {
		return fmt.Errorf("no such node %d", id)
	}
	n.Active = active
	return nil
}

// Block forces the link between a and b down regardless of distance, until
// the next Regenerate or Place. Used for explicitly simulated link failures.
func (t *Topology) Block(a, b int) {
	if t.blocked == nil {
		t.blocked = make(map[[2]int]struct{})
	}
	t.blocked[linkKey(a, b)] = struct{}{}
}

func linkKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// HasLink reports whether a and b can currently hear each other. Both ends
// must be in range of the other, which keeps the relation symmetric even
// with per-node ranges.
func (t *Topology) HasLink(a, b int) bool {
	if a == b {
		return false
	}
	if _, down := t.blocked[linkKey(a, b)]; down {
		return false
	}
	na, ok := t.Node(a)
	if !ok || !na.Active {
		return false
	}
	nb, ok := t.Node(b)
	if !ok || !nb.Active {
		return false
	}
	d := na.Pos.Sub(nb.Pos)
	distSq := d.X*d.X + d.Y*d.Y
	return distSq <= na.Range*na.Range && distSq <= nb.Range*nb.Range
}

// Neighbors returns the IDs of all nodes within transmission range of id,
// in ascending order.
func (t *Topology) Neighbors(id int) []int {
	var out []int
	for _, n := range t.nodes {
		if n.ID != id && t.HasLink(id, n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}

// Links returns every current link once, as (low, high) pairs in ascending
// order. The detector diffs consecutive snapshots of this.
func (t *Topology) Links() [][2]int {
	var out [][2]int
	for i := range t.nodes {
		for j := i + 1; j < len(t.nodes); j++ {
			if t.HasLink(t.nodes[i].ID, t.nodes[j].ID) {
				out = append(out, [2]int{t.nodes[i].ID, t.nodes[j].ID})
			}
		}
	}
	return out
}

// PathExists reports whether the adjacency graph connects src to dst.
func (t *Topology) PathExists(src, dst int) bool {
	if _, ok := t.Node(src); !ok {
		return false
	}
	if _, ok := t.Node(dst); !ok {
		return false
	}
	if src == dst {
		return true
	}
	visited := make(map[int]bool, len(t.nodes))
	queue := []int{src}
	visited[src] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range t.Neighbors(cur) {
			if next == dst {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
