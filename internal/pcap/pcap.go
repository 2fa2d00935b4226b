// Package pcap writes the packet event log in a pcap-style text format and
// parses it back.
//
// Format, one record per line, tab separated:
//
//	tick<TAB>KIND<TAB>src<TAB>dst<TAB>hops<TAB>path
//
// where KIND is one of RREQ, RREP, DATA, RERR and path is the ordered node
// IDs the packet has traversed, joined by ">". Lines starting with "#" are
// header comments and are skipped by the parser. Record order is append
// order; timestamps are the simulation ticks recorded at event creation, so
// the same log always exports byte-identically. Suppressed duplicate RREQs
// produce no record.
package pcap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/packet"
)

const pathSep = ">"

// Export writes the trace to w. It fails only on write errors; the event
// log itself is always serialisable.
func Export(w io.Writer, events []packet.Event) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# AODV Simulation PCAP Dump")
	fmt.Fprintf(bw, "# Total Packets: %d\n", len(events))
	fmt.Fprintln(bw, "# tick\tkind\tsrc\tdst\thops\tpath")

	for _, ev := range events {
		fmt.Fprintf(bw, "%d\t%s\t%d\t%d\t%d\t%s\n",
			ev.Tick, ev.Kind, ev.Source, ev.Destination, ev.HopCount, joinPath(ev.Path))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("pcap export: %w", err)
	}
	return nil
}

// ExportFile writes the trace to path, creating or truncating it.
func ExportFile(path string, events []packet.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcap export: %w", err)
	}
	defer f.Close()

	if err := Export(f, events); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("pcap export: %w", err)
	}
	return nil
}

// Parse reads a trace produced by Export back into events, in file order.
func Parse(r io.Reader) ([]packet.Event, error) {
	var events []packet.Event
	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			return nil, fmt.Errorf("pcap parse: line %d: want 6 fields, got %d", lineNo, len(fields))
		}

		tick, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("pcap parse: line %d: tick: %w", lineNo, err)
		}
		kind, err := packet.ParseKind(fields[1])
		if err != nil {
			return nil, fmt.Errorf("pcap parse: line %d: %w", lineNo, err)
		}
		src, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("pcap parse: line %d: src: %w", lineNo, err)
		}
		dst, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("pcap parse: line %d: dst: %w", lineNo, err)
		}
		hops, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("pcap parse: line %d: hops: %w", lineNo, err)
		}
		path, err := splitPath(fields[5])
		if err != nil {
			return nil, fmt.Errorf("pcap parse: line %d: path: %w", lineNo, err)
		}

		events = append(events, packet.Event{
			Tick:        tick,
			Kind:        kind,
			Source:      src,
			Destination: dst,
			HopCount:    hops,
			Path:        path,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pcap parse: %w", err)
	}
	return events, nil
}

func joinPath(path []int) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, pathSep)
}

func splitPath(s string) ([]int, error) {
	if s == "-" {
		return nil, nil
	}
	parts := strings.Split(s, pathSep)
	path := make([]int, len(parts))
	for i, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		path[i] = id
	}
	return path, nil
}
