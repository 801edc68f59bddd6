package failures

import (
	"encoding/json"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// FailureRecord captures one failed pipeline invocation: which stage broke,
// the error, and a diagnostic trace for the caller.
type FailureRecord struct {
	JobID     string    `json:"job_id"`
	SourceKey string    `json:"source_key"`
	Stage     string    `json:"stage"` // download, probe, encode, manifest, publish
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	Trace     string    `json:"trace"`
}

var db *pebble.DB

var errNotInitialized = fmt.Errorf("failure store not initialized")

// Init opens the failure store at dbPath, creating it if needed.
func Init(dbPath string) error {
	d, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("open failure store: %w", err)
	}
	db = d
	return nil
}

// Close closes the failure store.
func Close() error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// StoreFailure records a failed invocation under its job id, stamping it
// with the current time.
func StoreFailure(record FailureRecord) error {
	if db == nil {
		return errNotInitialized
	}
	record.Timestamp = time.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failure record: %w", err)
	}
	return db.Set([]byte(record.JobID), data, pebble.Sync)
}

// GetFailure returns the failure record for a job id, or nil when the job
// has no recorded failure.
func GetFailure(jobID string) (*FailureRecord, error) {
	if db == nil {
		return nil, errNotInitialized
	}

	data, closer, err := db.Get([]byte(jobID))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get failure for %s: %w", jobID, err)
	}
	defer closer.Close()

	var record FailureRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal failure record for %s: %w", jobID, err)
	}
	return &record, nil
}

// DeleteFailure removes the failure record for a job id.
func DeleteFailure(jobID string) error {
	if db == nil {
		return errNotInitialized
	}
	return db.Delete([]byte(jobID), pebble.Sync)
}

// ListFailures returns every stored failure record. Corrupt entries are
// skipped rather than failing the listing.
func ListFailures() ([]FailureRecord, error) {
	if db == nil {
		return nil, errNotInitialized
	}

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("iterate failure store: %w", err)
	}
	defer iter.Close()

	var records []FailureRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var record FailureRecord
		if json.Unmarshal(iter.Value(), &record) != nil {
			continue
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate failure store: %w", err)
	}
	return records, nil
}

// CleanupOldRecords deletes failure records stamped before now-maxAge.
func CleanupOldRecords(maxAge time.Duration) error {
	if db == nil {
		return errNotInitialized
	}
	cutoff := time.Now().Add(-maxAge)

	records, err := ListFailures()
	if err != nil {
		return err
	}
	for _, record := range records {
		if !record.Timestamp.Before(cutoff) {
			continue
		}
		if err := db.Delete([]byte(record.JobID), pebble.Sync); err != nil {
			return fmt.Errorf("delete stale failure %s: %w", record.JobID, err)
		}
	}
	return nil
}
