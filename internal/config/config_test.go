package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeScenario(t, `
nodes: 10
seed: 7
range: 150
mobility: true
max_ticks: 80
discoveries:
  - source: 0
    destination: 9
  - source: 3
    destination: 5
failures:
  - at_tick: 20
    link: [2, 3]
    note: backbone cut
  - at_tick: 30
    node: 4
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, s.Nodes)
	assert.Equal(t, int64(7), s.Seed)
	assert.Equal(t, 150.0, s.Range)
	assert.True(t, s.Mobility)
	assert.Equal(t, 80, s.MaxTicks)
	require.Len(t, s.Discoveries, 2)
	assert.Equal(t, Discovery{Source: 3, Destination: 5}, s.Discoveries[1])
	require.Len(t, s.Failures, 2)
	assert.Equal(t, []int{2, 3}, s.Failures[0].Link)
	assert.Equal(t, "backbone cut", s.Failures[0].Note)
	require.NotNil(t, s.Failures[1].Node)
	assert.Equal(t, 4, *s.Failures[1].Node)
}

func TestLoad_DefaultsMaxTicks(t *testing.T) {
	path := writeScenario(t, `
nodes: 5
discoveries:
  - source: 0
    destination: 4
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, s.MaxTicks)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	s := Default()
	assert.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	node := func(n int) *int { return &n }
	base := func() Scenario {
		return Scenario{
			Nodes:       5,
			MaxTicks:    100,
			Discoveries: []Discovery{{Source: 0, Destination: 4}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"too few nodes", func(s *Scenario) { s.Nodes = 1 }},
		{"no discoveries", func(s *Scenario) { s.Discoveries = nil }},
		{"source out of range", func(s *Scenario) { s.Discoveries[0].Source = 5 }},
		{"destination negative", func(s *Scenario) { s.Discoveries[0].Destination = -1 }},
		{"source equals destination", func(s *Scenario) { s.Discoveries[0].Destination = 0 }},
		{"link and node both set", func(s *Scenario) {
			s.Failures = []Failure{{AtTick: 1, Link: []int{0, 1}, Node: node(2)}}
		}},
		{"link wrong length", func(s *Scenario) {
			s.Failures = []Failure{{AtTick: 1, Link: []int{0}}}
		}},
		{"link node out of range", func(s *Scenario) {
			s.Failures = []Failure{{AtTick: 1, Link: []int{0, 5}}}
		}},
		{"failed node out of range", func(s *Scenario) {
			s.Failures = []Failure{{AtTick: 1, Node: node(7)}}
		}},
		{"negative tick", func(s *Scenario) {
			s.Failures = []Failure{{AtTick: -1, Link: []int{0, 1}}}
		}},
	}
	for _, tc := range cases {
		s := base()
		tc.mutate(&s)
		assert.Error(t, s.Validate(), tc.name)
	}

	ok := base()
	ok.Failures = []Failure{{AtTick: 0, Link: []int{0, 1}}, {AtTick: 3, Node: node(2)}}
	assert.NoError(t, ok.Validate())
}
