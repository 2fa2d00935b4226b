package engine

import "github.com/Adnaan29/AODV-Protocol-Simulator/internal/packet"

// State is the lifecycle of one route discovery attempt.
type State int

const (
	StateInit State = iota
	StateForwarding
	StateReply
	StateEstablished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateForwarding:
		return "FORWARDING"
	case StateReply:
		return "REPLY"
	case StateEstablished:
		return "ESTABLISHED"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// rreqDelivery is one RREQ copy in flight: from has broadcast the envelope,
// to will receive it on the next hop-level.
type rreqDelivery struct {
	from int
	to   int
	pkt  packet.Packet
}

// rrepTransit is the RREP envelope travelling back along the reverse route.
type rrepTransit struct {
	route []int // destination ... originator
	index int   // current holder position in route
	pkt   packet.Packet
}

// Discovery is one route discovery attempt keyed by (Origin, Target,
// OriginSeq). The engine mutates it during Tick; callers read it between
// ticks.
type Discovery struct {
	Origin      int
	Target      int
	OriginSeq   int
	DestSeq     int
	BroadcastID int
	State       State
	Err         error

	// Route and HopCount are set once the attempt reaches ESTABLISHED.
	Route    []int
	HopCount int

	// NeedsRediscovery flips when a RERR invalidates the established
	// route. The engine never re-floods on its own; that is the caller's
	// policy decision.
	NeedsRediscovery bool

	deadline int64
	frontier []rreqDelivery
	reply    *rrepTransit
	dataNode int           // current DATA holder, -1 when no data in flight
	data     packet.Packet // the DATA envelope being forwarded
}

func (d *Discovery) terminal() bool {
	return d.State == StateEstablished || d.State == StateFailed
}

// Active reports whether the attempt still has protocol work pending:
// flooding, a returning reply, or a DATA traversal in progress.
func (d *Discovery) Active() bool {
	if d.State == StateEstablished {
		return d.dataNode >= 0
	}
	return d.State != StateFailed
}
