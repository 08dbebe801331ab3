// Package workload reads the YAML documents that describe a simulated
// process mix: how many tickets each unit holds and how it behaves.
package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Workload is a complete simulation description.
type Workload struct {
	Name   string     `yaml:"name" json:"name"`
	Seed   int64      `yaml:"seed,omitempty" json:"seed,omitempty"`
	Quanta int        `yaml:"quanta" json:"quanta"`
	Units  []UnitSpec `yaml:"units" json:"units"`
}

// UnitSpec describes one simulated unit.
type UnitSpec struct {
	Name    string `yaml:"name" json:"name"`
	Tickets int    `yaml:"tickets" json:"tickets"`

	// Arrive is the quantum at which the unit is spawned.
	Arrive int `yaml:"arrive,omitempty" json:"arrive,omitempty"`

	// Work is the number of quanta the unit needs before it terminates.
	// Zero means it never finishes.
	Work int `yaml:"work,omitempty" json:"work,omitempty"`

	// BlockChance is the probability that the unit blocks after a quantum.
	BlockChance float64 `yaml:"block_chance,omitempty" json:"block_chance,omitempty"`

	// WakeChance is the per-quantum probability that a blocked unit wakes.
	WakeChance float64 `yaml:"wake_chance,omitempty" json:"wake_chance,omitempty"`

	// WaitsOn names the unit this one waits for when it blocks. While
	// blocked it lends its tickets to that unit.
	WaitsOn string `yaml:"waits_on,omitempty" json:"waits_on,omitempty"`
}

// Parse decodes a workload document. Unknown fields are rejected.
func Parse(data []byte) (*Workload, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var w Workload
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	return &w, nil
}

// ParseFile reads and decodes the workload document at path.
func ParseFile(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Marshal renders the workload back to YAML.
func (w *Workload) Marshal() ([]byte, error) {
	return yaml.Marshal(w)
}

// Unit returns the definition of the named unit.
func (w *Workload) Unit(name string) (UnitSpec, bool) {
	for _, u := range w.Units {
		if u.Name == name {
			return u, true
		}
	}
	return UnitSpec{}, false
}

// TotalTickets sums the tickets of every unit in the workload.
func (w *Workload) TotalTickets() int {
	total := 0
	for _, u := range w.Units {
		total += u.Tickets
	}
	return total
}
