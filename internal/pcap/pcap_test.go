package pcap

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/packet"
)

func sampleEvents() []packet.Event {
	return []packet.Event{
		{Tick: 1, Kind: packet.KindRREQ, Source: 0, Destination: 1, HopCount: 1, Path: []int{0, 1}},
		{Tick: 2, Kind: packet.KindRREQ, Source: 1, Destination: 2, HopCount: 2, Path: []int{0, 1, 2}},
		{Tick: 3, Kind: packet.KindRREP, Source: 2, Destination: 1, HopCount: 1, Path: []int{2, 1}},
		{Tick: 5, Kind: packet.KindData, Source: 0, Destination: 1, HopCount: 1, Path: []int{0, 1}},
		{Tick: 9, Kind: packet.KindRERR, Source: 1, Destination: 2, HopCount: 1, Path: []int{1, 0}},
	}
}

func TestExport_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleEvents()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "# AODV Simulation PCAP Dump", lines[0])
	assert.Equal(t, "# Total Packets: 5", lines[1])
	assert.Equal(t, "1\tRREQ\t0\t1\t1\t0>1", lines[3])
	assert.Equal(t, "3\tRREP\t2\t1\t1\t2>1", lines[5])
	assert.Equal(t, "9\tRERR\t1\t2\t1\t1>0", lines[7])
}

func TestExport_Deterministic(t *testing.T) {
	events := sampleEvents()
	var a, b bytes.Buffer
	require.NoError(t, Export(&a, events))
	require.NoError(t, Export(&b, events))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestExport_EmptyPath(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []packet.Event{
		{Tick: 1, Kind: packet.KindData, Source: 0, Destination: 1},
	}))
	assert.Contains(t, buf.String(), "1\tDATA\t0\t1\t0\t-\n")
}

func TestRoundTrip(t *testing.T) {
	events := sampleEvents()
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, events))

	got, err := Parse(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.pcap.txt")
	events := sampleEvents()
	require.NoError(t, ExportFile(path, events))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := Parse(f)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(events, got))
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"field count": "1\tRREQ\t0\t1\t1",
		"bad tick":    "x\tRREQ\t0\t1\t1\t0>1",
		"bad kind":    "1\tBOGUS\t0\t1\t1\t0>1",
		"bad src":     "1\tRREQ\tx\t1\t1\t0>1",
		"bad path":    "1\tRREQ\t0\t1\t1\t0>x",
	}
	for name, line := range cases {
		_, err := Parse(strings.NewReader(line + "\n"))
		assert.Error(t, err, name)
	}
}

func TestParse_SkipsCommentsAndBlanks(t *testing.T) {
	in := "# header\n\n1\tRREQ\t0\t1\t1\t0>1\n"
	got, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, packet.KindRREQ, got[0].Kind)
}
