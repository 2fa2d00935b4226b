package packet

import (
	"fmt"
)

// Kind identifies an AODV control or data packet.
type Kind int

const (
	KindRREQ Kind = iota + 1
	KindRREP
	KindData
	KindRERR
)

func (k Kind) String() string {
	switch k {
	case KindRREQ:
		return "RREQ"
	case KindRREP:
		return "RREP"
	case KindData:
		return "DATA"
	case KindRERR:
		return "RERR"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// ParseKind is the inverse of Kind.String for the exported trace format.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "RREQ":
		return KindRREQ, nil
	case "RREP":
		return KindRREP, nil
	case "DATA":
		return KindData, nil
	case "RERR":
		return KindRERR, nil
	}
	return 0, fmt.Errorf("unknown packet kind %q", s)
}

// Packet is the shared envelope for everything travelling between nodes.
// Kind-specific fields are only meaningful for their kind: the sequence
// numbers and BroadcastID for RREQ/RREP, Unreachable for RERR.
type Packet struct {
	Kind           Kind  `json:"kind"`
	Source         int   `json:"source"`
	Destination    int   `json:"destination"`
	HopCount       int   `json:"hop_count"`
	Path           []int `json:"path"`
	OriginatorSeq  int   `json:"originator_seq,omitempty"`
	DestinationSeq int   `json:"destination_seq,omitempty"`
	BroadcastID    int   `json:"broadcast_id,omitempty"`
	Unreachable    []int `json:"unreachable,omitempty"`
}
