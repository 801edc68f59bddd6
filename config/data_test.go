package config

import (
	"path/filepath"
	"testing"
)

func TestGetDataDirDefault(t *testing.T) {
	t.Setenv("VODPACKER_DATA_DIR", "")
	if got := GetDataDir(); got != "./data" {
		t.Errorf("Expected default ./data, got %s", got)
	}
}

func TestGetDataDirOverride(t *testing.T) {
	t.Setenv("VODPACKER_DATA_DIR", "/var/lib/vodpacker")
	if got := GetDataDir(); got != "/var/lib/vodpacker" {
		t.Errorf("Expected /var/lib/vodpacker, got %s", got)
	}
}

func TestDBPathsFollowDataDir(t *testing.T) {
	t.Setenv("VODPACKER_DATA_DIR", "/tmp/vpdata")

	cases := map[string]string{
		GetPendingQueueDBPath(): "PendingQueue.db",
		GetDestinationsDBPath(): "destinations.db",
		GetFailuresDBPath():     "failures.db",
		GetResultsDBPath():      "results.db",
	}
	for got, base := range cases {
		want := filepath.Join("/tmp/vpdata", base)
		if got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}

func TestGetRegionDefault(t *testing.T) {
	t.Setenv("VODPACKER_REGION", "")
	if got := GetRegion(); got != "us-east-1" {
		t.Errorf("Expected default region us-east-1, got %s", got)
	}
}

func TestGetPublishBackendDefault(t *testing.T) {
	t.Setenv("VODPACKER_PUBLISH_BACKEND", "")
	if got := GetPublishBackend(); got != "s3" {
		t.Errorf("Expected default backend s3, got %s", got)
	}
}

func TestGetSegmentBatchSize(t *testing.T) {
	t.Setenv("VODPACKER_SEGMENT_BATCH_SIZE", "")
	if got := GetSegmentBatchSize(); got != 40 {
		t.Errorf("Expected default batch size 40, got %d", got)
	}

	t.Setenv("VODPACKER_SEGMENT_BATCH_SIZE", "8")
	if got := GetSegmentBatchSize(); got != 8 {
		t.Errorf("Expected batch size 8, got %d", got)
	}

	// Garbage and non-positive values fall back to the default
	t.Setenv("VODPACKER_SEGMENT_BATCH_SIZE", "many")
	if got := GetSegmentBatchSize(); got != 40 {
		t.Errorf("Expected fallback batch size 40, got %d", got)
	}
	t.Setenv("VODPACKER_SEGMENT_BATCH_SIZE", "0")
	if got := GetSegmentBatchSize(); got != 40 {
		t.Errorf("Expected fallback batch size 40, got %d", got)
	}
}
