package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendCopiesPath(t *testing.T) {
	l := NewLog()
	path := []int{0, 1}
	l.Append(Event{Tick: 1, Kind: KindRREQ, Source: 0, Destination: 1, HopCount: 1, Path: path})

	// the in-flight envelope keeps mutating after the hop is recorded
	path[1] = 99
	_ = append(path, 2)

	got := l.Events()
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 1}, got[0].Path)
}

func TestLog_EventsIsACopy(t *testing.T) {
	l := NewLog()
	l.Append(Event{Tick: 1, Kind: KindData, Source: 0, Destination: 1})

	events := l.Events()
	events[0].Source = 99

	assert.Equal(t, 0, l.Events()[0].Source)
}

func TestLog_Since(t *testing.T) {
	l := NewLog()
	for i := 0; i < 3; i++ {
		l.Append(Event{Tick: int64(i), Kind: KindRREQ, Source: i, Destination: i + 1})
	}

	assert.Len(t, l.Since(0), 3)
	got := l.Since(2)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Source)
	assert.Empty(t, l.Since(3))

	// out-of-range marks yield nothing rather than panicking
	assert.Nil(t, l.Since(-1))
	assert.Nil(t, l.Since(4))
}

func TestLog_Reset(t *testing.T) {
	l := NewLog()
	l.Append(Event{Tick: 1, Kind: KindRREQ})
	require.Equal(t, 1, l.Len())

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Events())
}

func TestKind_StringParseRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindRREQ, KindRREP, KindData, KindRERR} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("BOGUS")
	assert.Error(t, err)
	assert.Contains(t, Kind(0).String(), "UNKNOWN")
}
