package taskQueue

import (
	"encoding/json"

	"vodpacker/config"
	"vodpacker/models"
)

// PendingQueue holds accepted-but-unfinished jobs so a restart can pick them
// back up. A job is removed once it completes, fails terminally or is
// cancelled.

var PendingQueue *DBQueue

func OpenPendingQueueDB() error {
	q, err := OpenQueue(config.GetPendingQueueDBPath())
	if err != nil {
		return err
	}
	PendingQueue = q
	return nil
}

func ClosePendingQueueDB() error {
	if PendingQueue != nil {
		return PendingQueue.Close()
	}
	return nil
}

// AddPending persists a submitted job under its id.
func AddPending(id string, job models.TranscodeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return PendingQueue.Add(id, data)
}

// GetPending returns the persisted job for id.
func GetPending(id string) (models.TranscodeJob, error) {
	var job models.TranscodeJob
	data, err := PendingQueue.Get(id)
	if err != nil {
		return job, err
	}
	err = json.Unmarshal(data, &job)
	return job, err
}

// RemovePending drops a finished job from the queue.
func RemovePending(id string) error {
	return PendingQueue.Delete(id)
}

// EachPending iterates all persisted jobs.
func EachPending(fn func(id string, job models.TranscodeJob) error) error {
	return PendingQueue.Each(func(key string, value []byte) error {
		var job models.TranscodeJob
		if err := json.Unmarshal(value, &job); err != nil {
			return nil // skip corrupt records
		}
		return fn(key, job)
	})
}
