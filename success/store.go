package success

import (
	"encoding/json"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// SuccessRecord is the durable result of one completed invocation.
type SuccessRecord struct {
	JobID       string    `json:"job_id"`
	SourceKey   string    `json:"source_key"`
	ManifestURL string    `json:"master_manifest_url"`
	Renditions  []string  `json:"renditions"`
	Timestamp   time.Time `json:"timestamp"`
}

var db *pebble.DB

var errNotInitialized = fmt.Errorf("success store not initialized")

// Init opens the success store at dbPath, creating it if needed.
func Init(dbPath string) error {
	d, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("open success store: %w", err)
	}
	db = d
	return nil
}

// Close closes the success store.
func Close() error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// StoreSuccess records a completed invocation under its job id, stamping it
// with the current time.
func StoreSuccess(record SuccessRecord) error {
	if db == nil {
		return errNotInitialized
	}
	record.Timestamp = time.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal success record: %w", err)
	}
	return db.Set([]byte(record.JobID), data, pebble.Sync)
}

// GetSuccess returns the success record for a job id, or nil when no record
// exists.
func GetSuccess(jobID string) (*SuccessRecord, error) {
	if db == nil {
		return nil, errNotInitialized
	}

	data, closer, err := db.Get([]byte(jobID))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get success for %s: %w", jobID, err)
	}
	defer closer.Close()

	var record SuccessRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal success record for %s: %w", jobID, err)
	}
	return &record, nil
}

// ListSuccesses returns every stored success record. Corrupt entries are
// skipped rather than failing the listing.
func ListSuccesses() ([]SuccessRecord, error) {
	if db == nil {
		return nil, errNotInitialized
	}

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("iterate success store: %w", err)
	}
	defer iter.Close()

	var records []SuccessRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var record SuccessRecord
		if json.Unmarshal(iter.Value(), &record) != nil {
			continue
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate success store: %w", err)
	}
	return records, nil
}

// CleanupOldRecords deletes success records stamped before now-maxAge.
func CleanupOldRecords(maxAge time.Duration) error {
	if db == nil {
		return errNotInitialized
	}
	cutoff := time.Now().Add(-maxAge)

	records, err := ListSuccesses()
	if err != nil {
		return err
	}
	for _, record := range records {
		if !record.Timestamp.Before(cutoff) {
			continue
		}
		if err := db.Delete([]byte(record.JobID), pebble.Sync); err != nil {
			return fmt.Errorf("delete stale success %s: %w", record.JobID, err)
		}
	}
	return nil
}
