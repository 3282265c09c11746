package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	first, err := store.Save(Snapshot{
		Timestamp:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FileCount:           3,
		CallCount:           40,
		ResolvedCount:       31,
		UnknownBindingCount: 5,
		CrossModuleCount:    3,
		FunctionCount:       12,
		AvgCompleteness:     0.4,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first.RunID == "" {
		t.Error("expected a generated run id")
	}

	second, err := store.Save(Snapshot{
		Timestamp:       time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		FileCount:       3,
		CallCount:       40,
		ResolvedCount:   35,
		AvgCompleteness: 0.6,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	recent, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d snapshots, expected 2", len(recent))
	}
	if recent[0].RunID != second.RunID {
		t.Errorf("newest first: got %s, expected %s", recent[0].RunID, second.RunID)
	}
	if recent[1].UnknownBindingCount != 5 {
		t.Errorf("UnknownBindingCount = %d, expected 5", recent[1].UnknownBindingCount)
	}
	if recent[0].AvgCompleteness != 0.6 {
		t.Errorf("AvgCompleteness = %v, expected 0.6", recent[0].AvgCompleteness)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := store.Save(Snapshot{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("got %d snapshots after reopen, expected 1", len(recent))
	}
}
