package policy

import (
	"fmt"
	"log/slog"
)

// Registry maps policy names to slots and implementations.
// Registration happens at startup before concurrent access, so no mutex is needed.
type Registry struct {
	byName map[string]int
	slots  []Policy
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		byName: make(map[string]int),
		logger: logger.With("component", "policy-registry"),
	}
}

// Register adds p under the next free slot and returns that slot.
func (r *Registry) Register(p Policy) (int, error) {
	name := p.Name()
	if len(name) != NameLen {
		return 0, fmt.Errorf("policy name %q must be exactly %d characters", name, NameLen)
	}
	if _, ok := r.byName[name]; ok {
		return 0, fmt.Errorf("policy %q already registered", name)
	}

	slot := len(r.slots)
	r.slots = append(r.slots, p)
	r.byName[name] = slot
	if sa, ok := p.(SlotAware); ok {
		sa.SetSlot(slot)
	}

	r.logger.Info("policy registered", "name", name, "slot", slot)
	return slot, nil
}

// Get returns the Policy registered under name.
func (r *Registry) Get(name string) (Policy, int, error) {
	slot, ok := r.byName[name]
	if !ok {
		return nil, 0, fmt.Errorf("no policy registered as %q", name)
	}
	return r.slots[slot], slot, nil
}

// BySlot returns the Policy registered under slot.
func (r *Registry) BySlot(slot int) (Policy, error) {
	if slot < 0 || slot >= len(r.slots) {
		return nil, fmt.Errorf("no policy in slot %d", slot)
	}
	return r.slots[slot], nil
}

// Names returns the registered policy names in slot order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.slots))
	for _, p := range r.slots {
		names = append(names, p.Name())
	}
	return names
}
