package failures

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := Init(filepath.Join(t.TempDir(), "failures.db")); err != nil {
		t.Fatalf("Failed to init failure store: %v", err)
	}
	t.Cleanup(func() {
		Close()
		db = nil
	})
}

func TestStoreAndGetFailure(t *testing.T) {
	openTestStore(t)

	record := FailureRecord{
		JobID:     "job123",
		SourceKey: "media/clip.mp4",
		Stage:     "encode",
		Error:     "encoder exited with status 1",
		Trace:     "ffmpeg stderr tail",
	}
	if err := StoreFailure(record); err != nil {
		t.Fatalf("StoreFailure failed: %v", err)
	}

	got, err := GetFailure("job123")
	if err != nil {
		t.Fatalf("GetFailure failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a failure record, got nil")
	}
	if got.SourceKey != record.SourceKey || got.Stage != record.Stage || got.Error != record.Error {
		t.Errorf("Record mismatch: expected %+v, got %+v", record, *got)
	}
	if got.Timestamp.IsZero() {
		t.Error("StoreFailure should stamp the record")
	}
}

func TestGetFailureNotFound(t *testing.T) {
	openTestStore(t)

	got, err := GetFailure("nosuchjob")
	if err != nil {
		t.Fatalf("GetFailure failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for unknown job, got %+v", *got)
	}
}

func TestDeleteFailure(t *testing.T) {
	openTestStore(t)

	if err := StoreFailure(FailureRecord{JobID: "gone", Stage: "probe"}); err != nil {
		t.Fatalf("StoreFailure failed: %v", err)
	}
	if err := DeleteFailure("gone"); err != nil {
		t.Fatalf("DeleteFailure failed: %v", err)
	}
	if got, _ := GetFailure("gone"); got != nil {
		t.Error("Record should be gone after delete")
	}
}

func TestListFailures(t *testing.T) {
	openTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := StoreFailure(FailureRecord{JobID: id, Stage: "download"}); err != nil {
			t.Fatalf("StoreFailure failed: %v", err)
		}
	}

	records, err := ListFailures()
	if err != nil {
		t.Fatalf("ListFailures failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(records))
	}
}

func TestCleanupOldRecords(t *testing.T) {
	openTestStore(t)

	if err := StoreFailure(FailureRecord{JobID: "fresh", Stage: "publish"}); err != nil {
		t.Fatalf("StoreFailure failed: %v", err)
	}

	// Records were just stamped, so nothing is older than an hour
	if err := CleanupOldRecords(time.Hour); err != nil {
		t.Fatalf("CleanupOldRecords failed: %v", err)
	}
	if got, _ := GetFailure("fresh"); got == nil {
		t.Error("Fresh record should survive cleanup")
	}

	// A zero max age makes everything stale
	if err := CleanupOldRecords(0); err != nil {
		t.Fatalf("CleanupOldRecords failed: %v", err)
	}
	if got, _ := GetFailure("fresh"); got != nil {
		t.Error("Record should be removed when older than the cutoff")
	}
}

func TestStoreRequiresInit(t *testing.T) {
	db = nil
	if err := StoreFailure(FailureRecord{JobID: "x"}); err == nil {
		t.Error("Expected error when the store is not initialized")
	}
}
