package policy

import (
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/me/lottsched/internal/lottery"
	"github.com/me/lottsched/pkg/model"
)

// stubPolicy is a do-nothing policy used to exercise the registry.
type stubPolicy struct {
	name string
	slot int
}

func (s *stubPolicy) Name() string { return s.name }
func (s *stubPolicy) InitParams(*model.Unit, any) error { return nil }
func (s *stubPolicy) NotifyStatusChange(*model.Unit) {}
func (s *stubPolicy) Schedule([]*model.Unit) (*model.Unit, error) { return nil, model.ErrEmptyLottery }
func (s *stubPolicy) ReleaseParams(u *model.Unit) int { return u.Slot }
func (s *stubPolicy) SetSlot(slot int) { s.slot = slot }

func testRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_RegisterAssignsSlots(t *testing.T) {
	r := testRegistry()

	lott := lottery.New()
	slot, err := r.Register(lott)
	if err != nil {
		t.Fatalf("Register(LOTT): %v", err)
	}
	if slot != 0 || lott.Slot() != 0 {
		t.Errorf("LOTT slot = %d (policy sees %d), want 0", slot, lott.Slot())
	}

	fifo := &stubPolicy{name: "FIFO"}
	slot, err = r.Register(fifo)
	if err != nil {
		t.Fatalf("Register(FIFO): %v", err)
	}
	if slot != 1 || fifo.slot != 1 {
		t.Errorf("FIFO slot = %d (policy sees %d), want 1", slot, fifo.slot)
	}

	if got, want := r.Names(), []string{"LOTT", "FIFO"}; !slices.Equal(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}

func TestRegistry_RejectsBadNames(t *testing.T) {
	r := testRegistry()
	for _, name := range []string{"", "LOT", "LOTTO"} {
		if _, err := r.Register(&stubPolicy{name: name}); err == nil {
			t.Errorf("Register(%q) succeeded, want error", name)
		}
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := testRegistry()
	if _, err := r.Register(&stubPolicy{name: "RRBN"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Register(&stubPolicy{name: "RRBN"}); err == nil {
		t.Error("duplicate Register succeeded, want error")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := testRegistry()
	lott := lottery.New()
	if _, err := r.Register(lott); err != nil {
		t.Fatalf("Register: %v", err)
	}

	p, slot, err := r.Get("LOTT")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p != lott || slot != 0 {
		t.Errorf("Get = (%v, %d), want the lottery in slot 0", p, slot)
	}
	if _, _, err := r.Get("NOPE"); err == nil {
		t.Error("Get(NOPE) succeeded, want error")
	}

	if p, err := r.BySlot(0); err != nil || p != lott {
		t.Errorf("BySlot(0) = (%v, %v), want lottery", p, err)
	}
	for _, slot := range []int{-1, 1} {
		if _, err := r.BySlot(slot); err == nil {
			t.Errorf("BySlot(%d) succeeded, want error", slot)
		}
	}
}
