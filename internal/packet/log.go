package packet

import "slices"

// Event is one recorded packet hop. Once appended to a Log it is never
// mutated; the exporter and any display layer read it as-is.
type Event struct {
	Tick        int64 `json:"tick"`
	Kind        Kind  `json:"kind"`
	Source      int   `json:"source"`
	Destination int   `json:"destination"`
	HopCount    int   `json:"hop_count"`
	Path        []int `json:"path"`
}

// Log is the append-only packet event trace for one simulation run.
type Log struct {
	events []Event
}

func NewLog() *Log {
	return &Log{}
}

// Append records an event. The path is copied so later mutation of the
// caller's slice cannot reach back into the log.
func (l *Log) Append(e Event) {
	e.Path = slices.Clone(e.Path)
	l.events = append(l.events, e)
}

// Events returns the trace in append order.
func (l *Log) Events() []Event {
	return slices.Clone(l.events)
}

func (l *Log) Len() int {
	return len(l.events)
}

// Since returns the events appended after position n, in append order.
func (l *Log) Since(n int) []Event {
	if n < 0 || n > len(l.events) {
		return nil
	}
	return slices.Clone(l.events[n:])
}

// Reset drops all recorded events. Used when the topology is regenerated,
// which invalidates every prior routing decision the trace describes.
func (l *Log) Reset() {
	l.events = nil
}
