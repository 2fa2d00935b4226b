package mobility

import (
	"math/rand"
	"slices"

	"github.com/gopxl/pixel/v2"

	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/topology"
)

const (
	// BoundaryMargin keeps moving nodes away from the very edge of the
	// simulation area; velocity reflects there.
	BoundaryMargin = 50.0

	// MaxSpeed bounds each velocity component when mobility is switched on.
	MaxSpeed = 0.5

	// DefaultStep is how far a node advances per tick per unit of velocity.
	DefaultStep = 8.0
)

// Detector advances node positions when mobility is enabled and reports
// which links each tick tore down. It never talks to the protocol engine
// directly; the engine reads the broken-link report and reacts.
type Detector struct {
	topo    *topology.Topology
	rng     *rand.Rand
	step    float64
	enabled bool
	prev    map[[2]int]struct{}
}

func NewDetector(topo *topology.Topology, seed int64) *Detector {
	d := &Detector{
		topo: topo,
		rng:  rand.New(rand.NewSource(seed)),
		step: DefaultStep,
	}
	d.Rescan()
	return d
}

// SetEnabled switches mobility. Enabling assigns every node a fresh random
// velocity; disabling zeroes them so the topology freezes in place.
func (d *Detector) SetEnabled(enabled bool) {
	d.enabled = enabled
	for _, n := range d.topo.Nodes() {
		if enabled {
			n.Vel = pixel.V(
				(d.rng.Float64()*2-1)*MaxSpeed,
				(d.rng.Float64()*2-1)*MaxSpeed,
			)
		} else {
			n.Vel = pixel.ZV
		}
	}
}

func (d *Detector) Enabled() bool {
	return d.enabled
}

// Rescan resets the link snapshot to the current topology. Call after a
// regenerate or an explicitly simulated failure so the next Tick does not
// re-report links the engine already knows are gone.
func (d *Detector) Rescan() {
	d.prev = linkSet(d.topo)
}

// Tick advances every node by its velocity, reflecting at the area
// boundary, then diffs the link relation. It returns the links that were
// present before the move and are gone after it.
func (d *Detector) Tick() [][2]int {
	if !d.enabled {
		return nil
	}

	width, height := d.topo.Bounds()
	for _, n := range d.topo.Nodes() {
		n.Pos = n.Pos.Add(n.Vel.Scaled(d.step))

		if n.Pos.X < BoundaryMargin || n.Pos.X > width-BoundaryMargin {
			n.Vel.X = -n.Vel.X
		}
		if n.Pos.Y < BoundaryMargin || n.Pos.Y > height-BoundaryMargin {
			n.Vel.Y = -n.Vel.Y
		}
		n.Pos.X = min(max(n.Pos.X, BoundaryMargin), width-BoundaryMargin)
		n.Pos.Y = min(max(n.Pos.Y, BoundaryMargin), height-BoundaryMargin)
	}

	cur := linkSet(d.topo)
	var broken [][2]int
	for link := range d.prev {
		if _, still := cur[link]; !still {
			broken = append(broken, link)
		}
	}
	d.prev = cur

	slices.SortFunc(broken, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return broken
}

func linkSet(topo *topology.Topology) map[[2]int]struct{} {
	links := topo.Links()
	set := make(map[[2]int]struct{}, len(links))
	for _, l := range links {
		set[l] = struct{}{}
	}
	return set
}
