package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vodpacker/logger"
	"vodpacker/models"
	"vodpacker/taskQueue"
)

// JobState represents the current state of a job
type JobState int

const (
	JobStatePending JobState = iota
	JobStateProcessing
	JobStateCompleted
	JobStateFailed
	JobStateCancelled
)

func (s JobState) String() string {
	switch s {
	case JobStatePending:
		return "pending"
	case JobStateProcessing:
		return "processing"
	case JobStateCompleted:
		return "completed"
	case JobStateFailed:
		return "failed"
	case JobStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type pendingJob struct {
	id  string
	job models.TranscodeJob
}

var (
	pendingJobs []pendingJob
	activeJobs  = make(map[string]context.CancelFunc) // id -> cancel function
	jobStates   = make(map[string]JobState)           // id -> job state
	mu          sync.RWMutex
)

// AddPendingJob enqueues a job in memory and persists it to the pending
// queue so a restart can recover it.
func AddPendingJob(id string, tj models.TranscodeJob) error {
	if err := taskQueue.AddPending(id, tj); err != nil {
		return fmt.Errorf("persist pending job %s: %w", id, err)
	}
	mu.Lock()
	defer mu.Unlock()
	pendingJobs = append(pendingJobs, pendingJob{id: id, job: tj})
	jobStates[id] = JobStatePending
	return nil
}

// removePendingJob drops a job from the in-memory pending list.
func removePendingJob(id string) {
	mu.Lock()
	defer mu.Unlock()
	for i, p := range pendingJobs {
		if p.id == id {
			pendingJobs = append(pendingJobs[:i], pendingJobs[i+1:]...)
			break
		}
	}
}

// GetPendingJobs returns a copy of the pending jobs list
func getPendingJobs() []pendingJob {
	mu.RLock()
	defer mu.RUnlock()
	jobs := make([]pendingJob, len(pendingJobs))
	copy(jobs, pendingJobs)
	return jobs
}

// CancelJob cancels a pending job by id
func CancelJob(id string) error {
	mu.Lock()
	defer mu.Unlock()

	state, exists := jobStates[id]
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	switch state {
	case JobStateCompleted:
		return fmt.Errorf("job %s is already completed", id)
	case JobStateFailed:
		return fmt.Errorf("job %s has already failed", id)
	case JobStateCancelled:
		return fmt.Errorf("job %s is already cancelled", id)
	case JobStateProcessing:
		return fmt.Errorf("job %s is currently processing and cannot be cancelled", id)
	case JobStatePending:
		jobStates[id] = JobStateCancelled
		if cancel, ok := activeJobs[id]; ok {
			cancel()
			delete(activeJobs, id)
		}
		for i, p := range pendingJobs {
			if p.id == id {
				pendingJobs = append(pendingJobs[:i], pendingJobs[i+1:]...)
				break
			}
		}
		if err := taskQueue.RemovePending(id); err != nil {
			logger.Errorf("failed to remove cancelled job %s from queue: %v", id, err)
		}
		return nil
	default:
		return fmt.Errorf("job %s is in unknown state", id)
	}
}

// GetJobState returns the current state of a job
func GetJobState(id string) (JobState, bool) {
	mu.RLock()
	defer mu.RUnlock()
	state, exists := jobStates[id]
	return state, exists
}

// ScanForPendingJobs loads unfinished jobs from the durable queue at startup
// and re-enqueues them.
func ScanForPendingJobs() error {
	return taskQueue.EachPending(func(id string, tj models.TranscodeJob) error {
		mu.Lock()
		pendingJobs = append(pendingJobs, pendingJob{id: id, job: tj})
		jobStates[id] = JobStatePending
		mu.Unlock()
		logger.Infof("recovered pending job %s (%s)", id, tj.SourceKey)
		return nil
	})
}

// Execute runs one job to completion: pipeline, result stores, callback,
// queue bookkeeping. It is used both by the background processor and by the
// synchronous submission path.
func Execute(ctx context.Context, id string, tj models.TranscodeJob) models.JobResult {
	mu.Lock()
	jobStates[id] = JobStateProcessing
	mu.Unlock()

	result := runPipeline(ctx, id, tj)

	mu.Lock()
	if result.Status == "success" {
		jobStates[id] = JobStateCompleted
	} else if ctx.Err() == context.Canceled {
		jobStates[id] = JobStateCancelled
	} else {
		jobStates[id] = JobStateFailed
	}
	mu.Unlock()

	recordResult(id, tj, result)

	if err := sendCallback(tj, id, result); err != nil {
		logger.Errorf("failed to send callback for job %s: %v", id, err)
		// Callback failures never fail the job.
	}

	if err := taskQueue.RemovePending(id); err != nil {
		logger.Errorf("failed to remove job %s from pending queue: %v", id, err)
	}

	return result
}

// runPipeline builds the invocation-scoped pipeline and runs it.
func runPipeline(ctx context.Context, id string, tj models.TranscodeJob) models.JobResult {
	p, err := NewPipeline(tj)
	if err != nil {
		return models.JobResult{
			Status:  "error",
			Message: fmt.Sprintf("failed to configure job %s", id),
			Error:   err.Error(),
			Trace:   err.Error(),
		}
	}
	return p.Run(ctx, id, tj)
}

// ProcessPendingJobs runs in a loop processing pending jobs one at a time.
func ProcessPendingJobs() {
	for {
		jobs := getPendingJobs()
		if len(jobs) == 0 {
			time.Sleep(1 * time.Second) // Wait before checking again
			continue
		}
		logger.Infof("Processing %d pending jobs", len(jobs))

		for _, p := range jobs {
			mu.RLock()
			state := jobStates[p.id]
			mu.RUnlock()
			if state != JobStatePending {
				removePendingJob(p.id)
				continue
			}

			ctx, cancel := context.WithCancel(context.Background())
			mu.Lock()
			activeJobs[p.id] = cancel
			mu.Unlock()

			result := Execute(ctx, p.id, p.job)

			mu.Lock()
			delete(activeJobs, p.id)
			mu.Unlock()
			cancel()

			removePendingJob(p.id)
			if result.Status == "success" {
				logger.Infof("job %s completed: %s", p.id, result.ManifestURL)
			} else {
				logger.Errorf("job %s failed: %s", p.id, result.Error)
			}
		}
	}
}
