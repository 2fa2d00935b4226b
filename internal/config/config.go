package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Discovery requests one route discovery from Source to Destination.
type Discovery struct {
	Source      int `yaml:"source"`
	Destination int `yaml:"destination"`
}

// Failure scripts a simulated failure at a given tick. Exactly one of Link
// or Node must be set.
type Failure struct {
	AtTick int    `yaml:"at_tick"`
	Link   []int  `yaml:"link,omitempty"`
	Node   *int   `yaml:"node,omitempty"`
	Note   string `yaml:"note,omitempty"`
}

// Scenario is one simulation run: a topology, the discoveries to attempt
// and the failures to inject along the way.
type Scenario struct {
	Nodes    int     `yaml:"nodes"`
	Seed     int64   `yaml:"seed"`
	Width    float64 `yaml:"width,omitempty"`
	Height   float64 `yaml:"height,omitempty"`
	Range    float64 `yaml:"range,omitempty"`
	Mobility bool    `yaml:"mobility,omitempty"`
	MaxTicks int     `yaml:"max_ticks,omitempty"`

	Discoveries []Discovery `yaml:"discoveries"`
	Failures    []Failure   `yaml:"failures,omitempty"`
}

// Default is the scenario used when no config file is given: a mid-size
// static network with a single discovery across it.
func Default() Scenario {
	return Scenario{
		Nodes:    15,
		Seed:     1,
		MaxTicks: 200,
		Discoveries: []Discovery{
			{Source: 0, Destination: 14},
		},
	}
}

// Load reads and validates a scenario file.
func Load(path string) (Scenario, error) {
	var s Scenario
	file, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(file, &s); err != nil {
		return s, fmt.Errorf("parse scenario: %w", err)
	}
	if s.MaxTicks == 0 {
		s.MaxTicks = 200
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Scenario) Validate() error {
	if s.Nodes < 2 {
		return fmt.Errorf("scenario: nodes must be at least 2, got %d", s.Nodes)
	}
	if len(s.Discoveries) == 0 {
		return fmt.Errorf("scenario: at least one discovery is required")
	}
	for i, d := range s.Discoveries {
		if d.Source < 0 || d.Source >= s.Nodes {
			return fmt.Errorf("scenario: discovery %d: source %d out of range", i, d.Source)
		}
		if d.Destination < 0 || d.Destination >= s.Nodes {
			return fmt.Errorf("scenario: discovery %d: destination %d out of range", i, d.Destination)
		}
		if d.Source == d.Destination {
			return fmt.Errorf("scenario: discovery %d: source equals destination", i)
		}
	}
	for i, f := range s.Failures {
		switch {
		case f.Node != nil && len(f.Link) > 0:
			return fmt.Errorf("scenario: failure %d: set either link or node, not both", i)
		case f.Node != nil:
			if *f.Node < 0 || *f.Node >= s.Nodes {
				return fmt.Errorf("scenario: failure %d: node %d out of range", i, *f.Node)
			}
		case len(f.Link) == 2:
			for _, id := range f.Link {
				if id < 0 || id >= s.Nodes {
					return fmt.Errorf("scenario: failure %d: node %d out of range", i, id)
				}
			}
		default:
			return fmt.Errorf("scenario: failure %d: link needs exactly 2 node IDs", i)
		}
		if f.AtTick < 0 {
			return fmt.Errorf("scenario: failure %d: at_tick must not be negative", i)
		}
	}
	return nil
}
