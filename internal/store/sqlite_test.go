package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/me/lottsched/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id, workload string, created time.Time) *model.Run {
	completed := created.Add(time.Second)
	return &model.Run{
		ID:              id,
		Workload:        workload,
		Policy:          "LOTT",
		State:           model.RunStateCompleted,
		Seed:            42,
		Quanta:          100,
		Draws:           96,
		EmptyDraws:      4,
		Redistributions: 97,
		TicketsMoved:    12,
		Document:        "name: " + workload + "\n",
		Units: []model.UnitStats{
			{Name: "small", Tickets: 1, Wins: 25, ExpectedShare: 0.25, ObservedShare: 0.26, FinalStatus: model.UnitStatusReady},
			{Name: "large", Tickets: 3, Wins: 71, ExpectedShare: 0.75, ObservedShare: 0.74, FinalStatus: model.UnitStatusTerminated},
		},
		CreatedAt:   created,
		CompletedAt: &completed,
	}
}

func TestRun_CreateAndGet(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	run := sampleRun("run_1", "pair", now)
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := st.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil")
	}
	if got.Workload != "pair" || got.Policy != "LOTT" || got.State != model.RunStateCompleted {
		t.Errorf("run = %+v", got)
	}
	if got.Draws != 96 || got.EmptyDraws != 4 || got.TicketsMoved != 12 || got.Seed != 42 {
		t.Errorf("counters = %d/%d/%d seed %d", got.Draws, got.EmptyDraws, got.TicketsMoved, got.Seed)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
	if len(got.Units) != 2 {
		t.Fatalf("len(Units) = %d, want 2", len(got.Units))
	}
	if got.Units[1].Name != "large" || got.Units[1].Wins != 71 || got.Units[1].FinalStatus != model.UnitStatusTerminated {
		t.Errorf("Units[1] = %+v", got.Units[1])
	}
}

func TestRun_GetMissing(t *testing.T) {
	st := testStore(t)
	got, err := st.GetRun(context.Background(), "run_missing")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got != nil {
		t.Errorf("GetRun = %+v, want nil", got)
	}
}

func TestRun_DuplicateID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := st.CreateRun(ctx, sampleRun("run_1", "pair", now)); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.CreateRun(ctx, sampleRun("run_1", "pair", now)); err == nil {
		t.Error("duplicate CreateRun succeeded, want error")
	}

	// The failed insert rolled back; the first run's unit stats are intact.
	stats, err := st.ListUnitStats(ctx, "run_1")
	if err != nil {
		t.Fatalf("ListUnitStats: %v", err)
	}
	if len(stats) != 2 {
		t.Errorf("len(stats) = %d, want 2", len(stats))
	}
}

func TestListRuns(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		workload := "pair"
		if i%2 == 1 {
			workload = "mixed"
		}
		run := sampleRun(fmt.Sprintf("run_%d", i), workload, base.Add(time.Duration(i)*time.Minute))
		if i == 4 {
			run.State = model.RunStateFailed
		}
		if err := st.CreateRun(ctx, run); err != nil {
			t.Fatalf("CreateRun %d: %v", i, err)
		}
	}

	runs, total, err := st.ListRuns(ctx, model.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 5 || len(runs) != 2 {
		t.Fatalf("total=%d len=%d, want 5/2", total, len(runs))
	}
	if runs[0].ID != "run_4" || runs[1].ID != "run_3" {
		t.Errorf("order = %s, %s; want run_4, run_3", runs[0].ID, runs[1].ID)
	}

	tests := []struct {
		name  string
		opts  model.ListOptions
		total int
	}{
		{"by workload", model.ListOptions{Workload: "mixed"}, 2},
		{"by state", model.ListOptions{State: model.RunStateFailed}, 1},
		{"both", model.ListOptions{Workload: "pair", State: model.RunStateCompleted}, 2},
		{"offset past end", model.ListOptions{Offset: 10}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := st.ListRuns(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if total != tt.total {
				t.Errorf("total = %d, want %d", total, tt.total)
			}
		})
	}
}

func TestDeleteRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.CreateRun(ctx, sampleRun("run_1", "pair", time.Now().UTC())); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.DeleteRun(ctx, "run_1"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if got, _ := st.GetRun(ctx, "run_1"); got != nil {
		t.Error("run still present after delete")
	}
	if stats, _ := st.ListUnitStats(ctx, "run_1"); len(stats) != 0 {
		t.Errorf("unit stats still present: %+v", stats)
	}
	if err := st.DeleteRun(ctx, "run_1"); err == nil {
		t.Error("second DeleteRun succeeded, want error")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	st := testStore(t)
	if err := st.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate: %v", err)
	}
}
