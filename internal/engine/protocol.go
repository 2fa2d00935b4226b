package engine

import (
	"slices"

	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/packet"
)

// advanceDiscovery moves one attempt forward by a single hop-level.
func (e *Engine) advanceDiscovery(d *Discovery) {
	if d.State == StateFailed {
		return
	}
	if !d.terminal() && e.tick > d.deadline {
		e.fail(d)
		return
	}

	switch d.State {
	case StateInit:
		e.originate(d)
	case StateForwarding:
		e.forwardFlood(d)
	case StateReply:
		e.forwardReply(d)
	case StateEstablished:
		e.forwardData(d)
	}
}

// originate performs the INIT transition: the originator bumps its sequence
// counter, takes a fresh broadcast ID and floods the RREQ envelope to its
// current neighbors. The first hop-level is processed within the same tick.
func (e *Engine) originate(d *Discovery) {
	d.OriginSeq = e.bumpSeq(d.Origin)
	d.BroadcastID = e.bumpBroadcast(d.Origin)
	e.markSeen(d.Origin, d.Origin, d.BroadcastID)

	pkt := packet.Packet{
		Kind:          packet.KindRREQ,
		Source:        d.Origin,
		Destination:   d.Target,
		Path:          []int{d.Origin},
		OriginatorSeq: d.OriginSeq,
		BroadcastID:   d.BroadcastID,
	}
	for _, nb := range e.topo.Neighbors(d.Origin) {
		d.frontier = append(d.frontier, rreqDelivery{from: d.Origin, to: nb, pkt: pkt})
	}
	d.State = StateForwarding
	e.log.Debug("rreq flood started",
		"origin", d.Origin, "target", d.Target, "seq", d.OriginSeq, "bid", d.BroadcastID)
	e.forwardFlood(d)
}

// forwardFlood processes one hop-level of the RREQ flood, breadth-first.
// Duplicates are dropped silently; the trace records one RREQ event per
// accepted delivery.
func (e *Engine) forwardFlood(d *Discovery) {
	frontier := d.frontier
	d.frontier = nil
	reachedTarget := false

	for _, del := range frontier {
		// adjacency may have changed since the copy was queued
		if !e.topo.HasLink(del.from, del.to) {
			continue
		}
		if !e.markSeen(del.to, del.pkt.Source, del.pkt.BroadcastID) {
			continue // duplicate, no event
		}

		fwd := del.pkt
		fwd.HopCount++
		fwd.Path = append(slices.Clone(del.pkt.Path), del.to)

		// reverse route toward the originator
		e.tables[del.to].Update(fwd.Source, del.from, fwd.HopCount, fwd.OriginatorSeq)

		e.record(fwd.Kind, del.from, del.to, fwd.HopCount, fwd.Path)

		if del.to == d.Target {
			e.startReply(d, fwd.Path)
			reachedTarget = true
			continue
		}
		if reachedTarget {
			continue // destination answered, stop growing the flood
		}
		for _, nb := range e.topo.Neighbors(del.to) {
			if nb == del.from {
				continue
			}
			d.frontier = append(d.frontier, rreqDelivery{from: del.to, to: nb, pkt: fwd})
		}
	}

	if d.State == StateForwarding && len(d.frontier) == 0 {
		// the flood died out without reaching the destination
		e.fail(d)
	}
}

// startReply is the REPLY transition at the destination: it bumps its own
// sequence number and unicasts a RREP envelope back along the reverse route
// the flood just recorded.
func (e *Engine) startReply(d *Discovery, path []int) {
	d.DestSeq = e.bumpSeq(d.Target)
	route := slices.Clone(path)
	slices.Reverse(route)
	d.reply = &rrepTransit{
		route: route,
		pkt: packet.Packet{
			Kind:           packet.KindRREP,
			Source:         d.Target,
			Destination:    d.Origin,
			Path:           []int{d.Target},
			DestinationSeq: d.DestSeq,
		},
	}
	d.frontier = nil
	d.State = StateReply
	e.log.Debug("rreq reached destination",
		"origin", d.Origin, "target", d.Target, "hops", len(path)-1, "seq", d.DestSeq)
}

// forwardReply moves the RREP one hop toward the originator, installing the
// forward route and precursor lists as it goes.
func (e *Engine) forwardReply(d *Discovery) {
	tr := d.reply
	cur := tr.route[tr.index]
	next := tr.route[tr.index+1]

	if !e.topo.HasLink(cur, next) {
		// reverse route broke under the reply; the attempt ends FAILED
		e.log.Debug("rrep lost to broken link", "from", cur, "to", next)
		e.fail(d)
		return
	}

	tr.pkt.HopCount++
	tr.pkt.Path = append(tr.pkt.Path, next)

	// forward route toward the destination, and the reverse entry's
	// precursor bookkeeping for later RERR propagation
	e.tables[next].Update(d.Target, cur, tr.pkt.HopCount, tr.pkt.DestinationSeq)
	e.tables[cur].AddPrecursor(d.Target, next)
	e.tables[next].AddPrecursor(d.Origin, cur)

	e.record(tr.pkt.Kind, cur, next, tr.pkt.HopCount, tr.pkt.Path)

	tr.index++
	if next != d.Origin {
		return
	}

	d.State = StateEstablished
	d.Route = slices.Clone(tr.route)
	slices.Reverse(d.Route)
	d.HopCount = len(d.Route) - 1
	d.reply = nil
	d.dataNode = d.Origin
	d.data = packet.Packet{
		Kind:        packet.KindData,
		Source:      d.Origin,
		Destination: d.Target,
		Path:        []int{d.Origin},
	}
	e.log.Info("route established",
		"origin", d.Origin, "target", d.Target, "hops", d.HopCount, "route", d.Route)
}

// forwardData moves the DATA envelope one hop along the established route,
// following live next-hop entries so an invalidated route stops the stream.
func (e *Engine) forwardData(d *Discovery) {
	if d.dataNode < 0 {
		return
	}
	entry, ok := e.tables[d.dataNode].Lookup(d.Target)
	if !ok || !e.topo.HasLink(d.dataNode, entry.NextHop) {
		e.log.Debug("data stopped, no usable route", "at", d.dataNode, "target", d.Target)
		d.dataNode = -1
		return
	}

	next := entry.NextHop
	d.data.HopCount++
	d.data.Path = append(d.data.Path, next)
	e.record(d.data.Kind, d.dataNode, next, d.data.HopCount, d.data.Path)

	if next == d.Target {
		e.log.Debug("data delivered", "origin", d.Origin, "target", d.Target)
		d.dataNode = -1
		return
	}
	d.dataNode = next
}

func (e *Engine) fail(d *Discovery) {
	d.State = StateFailed
	d.Err = ErrUnreachable
	d.frontier = nil
	d.reply = nil
	d.dataNode = -1
	e.log.Warn("discovery failed", "origin", d.Origin, "target", d.Target)
}

// handleBrokenLink runs route maintenance for one torn link: both endpoints
// invalidate the routes that crossed it and RERRs ripple back through the
// precursor lists until no one is left routing that way.
func (e *Engine) handleBrokenLink(a, b int) {
	e.log.Debug("link broken", "a", a, "b", b)
	e.propagateRouteError(a, b)
	e.propagateRouteError(b, a)

	// an established route whose origin lost its entry needs the caller
	// to decide on rediscovery
	for _, d := range e.discoveries {
		if d.State != StateEstablished {
			continue
		}
		if _, ok := e.tables[d.Origin].Lookup(d.Target); !ok {
			d.NeedsRediscovery = true
			d.dataNode = -1
		}
	}
}

// rerrHop is one station of the RERR ripple: node has just invalidated the
// envelope's Unreachable destinations and must tell its precursors.
type rerrHop struct {
	node int
	pkt  packet.Packet
}

func (e *Engine) propagateRouteError(node, via int) {
	dests := e.tables[node].DestinationsVia(via)
	var lost []int
	for _, dest := range dests {
		if e.tables[node].Invalidate(dest) {
			lost = append(lost, dest)
		}
	}
	if len(lost) == 0 {
		return
	}

	queue := []rerrHop{{node: node, pkt: packet.Packet{
		Kind:        packet.KindRERR,
		Source:      node,
		Unreachable: lost,
		Path:        []int{node},
	}}}
	for len(queue) > 0 {
		hop := queue[0]
		queue = queue[1:]

		// group the affected destinations by precursor
		affected := make(map[int][]int)
		for _, dest := range hop.pkt.Unreachable {
			for _, p := range e.tables[hop.node].Precursors(dest) {
				entry, ok := e.tables[p].Lookup(dest)
				if !ok || entry.NextHop != hop.node {
					continue // not routing through us anymore
				}
				affected[p] = append(affected[p], dest)
			}
		}
		order := make([]int, 0, len(affected))
		for p := range affected {
			order = append(order, p)
		}
		slices.Sort(order)

		for _, p := range order {
			fwd := hop.pkt
			fwd.HopCount++
			fwd.Path = append(slices.Clone(hop.pkt.Path), p)
			fwd.Unreachable = nil
			for _, dest := range affected[p] {
				if e.tables[p].Invalidate(dest) {
					fwd.Unreachable = append(fwd.Unreachable, dest)
					e.record(fwd.Kind, hop.node, dest, fwd.HopCount, fwd.Path)
				}
			}
			if len(fwd.Unreachable) > 0 {
				queue = append(queue, rerrHop{node: p, pkt: fwd})
			}
		}
	}
}
