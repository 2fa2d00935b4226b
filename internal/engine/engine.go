package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/mobility"
	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/packet"
	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/routing"
	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/topology"
)

// seenTTL ages RREQ duplicate-suppression entries out of the cache well
// after any attempt they belong to has ended.
const seenTTL = 60 * time.Second

// seenKey identifies one RREQ flood as observed by one node.
type seenKey struct {
	node        int
	origin      int
	broadcastID int
}

// Engine drives the AODV protocol over the topology: it floods RREQs,
// returns RREPs along reverse routes, propagates RERRs on link breaks and
// appends every packet hop to the event log. All state advances on Tick;
// there is no background work.
type Engine struct {
	mu       sync.Mutex
	log      *slog.Logger
	topo     *topology.Topology
	detector *mobility.Detector

	tables map[int]*routing.Table
	events *packet.Log
	seen   *ttlcache.Cache[seenKey, struct{}]

	seqno         map[int]int
	nextBroadcast map[int]int

	discoveries []*Discovery
	tick        int64
	nodeCount   int
}

// New wires an engine over an existing topology. The seed feeds the
// mobility detector's velocity draws; topology placement takes its own seed
// through RegenerateTopology.
func New(topo *topology.Topology, seed int64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		log:       logger,
		topo:      topo,
		detector:  mobility.NewDetector(topo, seed),
		events:    packet.NewLog(),
		nodeCount: topo.NodeCount(),
	}
	e.resetProtocolState()
	return e
}

func (e *Engine) resetProtocolState() {
	e.tables = make(map[int]*routing.Table, e.topo.NodeCount())
	for _, n := range e.topo.Nodes() {
		e.tables[n.ID] = routing.NewTable(n.ID)
	}
	e.events.Reset()
	e.seen = ttlcache.New[seenKey, struct{}](
		ttlcache.WithTTL[seenKey, struct{}](seenTTL),
		ttlcache.WithDisableTouchOnHit[seenKey, struct{}](),
	)
	e.seqno = make(map[int]int)
	e.nextBroadcast = make(map[int]int)
	e.discoveries = nil
	e.tick = 0
}

// SetNodeCount sets how many nodes the next RegenerateTopology creates.
func (e *Engine) SetNodeCount(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 2 {
		return fmt.Errorf("%w: node count %d, need at least 2", ErrInvalidTopology, n)
	}
	e.nodeCount = n
	return nil
}

// RegenerateTopology re-places all nodes from the seed and wipes every
// route table and the event log: old routing state is meaningless on a new
// graph.
func (e *Engine) RegenerateTopology(seed int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.topo.Regenerate(e.nodeCount, seed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTopology, err)
	}
	e.resetProtocolState()
	e.detector.Rescan()
	if e.detector.Enabled() {
		e.detector.SetEnabled(true) // fresh velocities for the new nodes
	}
	e.log.Info("topology regenerated", "nodes", e.nodeCount, "seed", seed)
	return nil
}

// SetMobilityEnabled switches the mobility model on or off.
func (e *Engine) SetMobilityEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detector.SetEnabled(enabled)
	e.log.Info("mobility", "enabled", enabled)
}

// StartDiscovery registers a route discovery attempt from src to dst. The
// attempt advances one hop-level per Tick; inspect the returned Discovery
// between ticks for its state.
func (e *Engine) StartDiscovery(src, dst int) (*Discovery, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.topo.Node(src); !ok {
		return nil, fmt.Errorf("%w: no such node %d", ErrInvalidTopology, src)
	}
	if _, ok := e.topo.Node(dst); !ok {
		return nil, fmt.Errorf("%w: no such node %d", ErrInvalidTopology, dst)
	}
	if src == dst {
		return nil, fmt.Errorf("%w: source and destination are both %d", ErrInvalidTopology, src)
	}
	d := &Discovery{
		Origin:   src,
		Target:   dst,
		State:    StateInit,
		deadline: e.tick + discoveryLifetime(e.topo.NodeCount()),
		dataNode: -1,
	}
	e.discoveries = append(e.discoveries, d)
	e.log.Info("discovery requested", "src", src, "dst", dst)
	return d, nil
}

// A flood plus the returning reply each take at most nodeCount hop-levels;
// anything still unresolved after this many ticks is abandoned.
func discoveryLifetime(nodes int) int64 {
	return int64(4*nodes + 8)
}

// SimulateLinkFailure forces the named link down and runs route maintenance
// for it, exactly as if mobility had torn it.
func (e *Engine) SimulateLinkFailure(a, b int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.topo.Node(a); !ok {
		return fmt.Errorf("%w: no such node %d", ErrInvalidTopology, a)
	}
	if _, ok := e.topo.Node(b); !ok {
		return fmt.Errorf("%w: no such node %d", ErrInvalidTopology, b)
	}
	if !e.topo.HasLink(a, b) {
		return fmt.Errorf("%w: no link between %d and %d", ErrInvalidTopology, a, b)
	}
	e.topo.Block(a, b)
	e.detector.Rescan()
	e.log.Info("simulated link failure", "a", a, "b", b)
	e.handleBrokenLink(a, b)
	return nil
}

// SimulateNodeFailure takes the named node down, breaking all its links.
func (e *Engine) SimulateNodeFailure(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.topo.Node(id)
	if !ok {
		return fmt.Errorf("%w: no such node %d", ErrInvalidTopology, id)
	}
	lost := e.topo.Neighbors(id)
	n.Active = false
	e.detector.Rescan()
	e.log.Info("simulated node failure", "node", id, "links_lost", len(lost))
	for _, peer := range lost {
		e.handleBrokenLink(id, peer)
	}
	return nil
}

// Tick advances the simulation one step in the fixed order of the
// simulation clock: mobility update and adjacency recompute, failure
// detection and RERR propagation, then one hop-level of progress for every
// pending discovery attempt. It returns the events emitted by this tick.
func (e *Engine) Tick() []packet.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	mark := e.events.Len()

	for _, link := range e.detector.Tick() {
		e.handleBrokenLink(link[0], link[1])
	}

	for _, d := range e.discoveries {
		e.advanceDiscovery(d)
	}

	e.seen.DeleteExpired()
	return e.events.Since(mark)
}

// Now returns the current simulation time in ticks.
func (e *Engine) Now() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// EventLog returns the full packet trace in append order.
func (e *Engine) EventLog() []packet.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events.Events()
}

// RouteTable returns a copy of one node's route table.
func (e *Engine) RouteTable(nodeID int) (map[int]routing.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tbl, ok := e.tables[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: no such node %d", ErrInvalidTopology, nodeID)
	}
	return tbl.Snapshot(), nil
}

// Pending reports whether any discovery attempt still has work left.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.discoveries {
		if d.Active() {
			return true
		}
	}
	return false
}

// Snapshot summarises the simulation for display collaborators.
type Snapshot struct {
	Tick        int64
	Nodes       int
	Links       int
	Discoveries int
	Established int
	Failed      int
	Events      int
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		Tick:        e.tick,
		Nodes:       e.topo.NodeCount(),
		Links:       len(e.topo.Links()),
		Discoveries: len(e.discoveries),
		Events:      e.events.Len(),
	}
	for _, d := range e.discoveries {
		switch d.State {
		case StateEstablished:
			s.Established++
		case StateFailed:
			s.Failed++
		}
	}
	return s
}

// Topology exposes node positions and adjacency to read-only collaborators.
func (e *Engine) Topology() *topology.Topology {
	return e.topo
}

func (e *Engine) bumpSeq(node int) int {
	e.seqno[node]++
	return e.seqno[node]
}

func (e *Engine) bumpBroadcast(node int) int {
	e.nextBroadcast[node]++
	return e.nextBroadcast[node]
}

func (e *Engine) markSeen(node, origin, broadcastID int) bool {
	key := seenKey{node: node, origin: origin, broadcastID: broadcastID}
	if e.seen.Has(key) {
		return false
	}
	e.seen.Set(key, struct{}{}, ttlcache.DefaultTTL)
	return true
}

func (e *Engine) record(kind packet.Kind, src, dst, hops int, path []int) {
	e.events.Append(packet.Event{
		Tick:        e.tick,
		Kind:        kind,
		Source:      src,
		Destination: dst,
		HopCount:    hops,
		Path:        path,
	})
}
