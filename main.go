package main

import (
	"context"
	"net/http"
	"time"

	"vodpacker/config"
	"vodpacker/credentials"
	"vodpacker/encoder"
	"vodpacker/failures"
	"vodpacker/job"
	"vodpacker/logger"
	"vodpacker/routes"
	"vodpacker/success"
	"vodpacker/taskQueue"
)

func main() {
	logger.Info("Starting Vodpacker server initialization")

	// ffmpeg and ffprobe must exist before accepting any jobs
	if err := encoder.RequireFFmpeg(); err != nil {
		logger.Fatalf("Encoder tooling check failed: %v", err)
	}

	logger.Debug("Initializing destinations database")
	if err := credentials.OpenDB(config.GetDestinationsDBPath()); err != nil {
		logger.Fatalf("Failed to initialize destinations store: %v", err)
	}
	defer credentials.CloseDB()

	logger.Debug("Initializing failures database")
	if err := failures.Init(config.GetFailuresDBPath()); err != nil {
		logger.Fatalf("Failed to initialize failure store: %v", err)
	}
	defer failures.Close()

	logger.Debug("Initializing results database")
	if err := success.Init(config.GetResultsDBPath()); err != nil {
		logger.Fatalf("Failed to initialize result store: %v", err)
	}
	defer success.Close()

	logger.Debug("Initializing pending job queue")
	if err := taskQueue.OpenPendingQueueDB(); err != nil {
		logger.Fatalf("Failed to initialize pending job queue: %v", err)
	}
	defer taskQueue.ClosePendingQueueDB()

	// Jobs queued before a restart are picked up again here.
	logger.Info("Scanning for pending jobs on startup")
	if err := job.ScanForPendingJobs(); err != nil {
		logger.Errorf("Failed to scan for pending jobs: %v", err)
		// Don't exit - continue with server startup
	}

	logger.Info("Starting cleanup routine (runs every 24 hours)")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupRoutine(ctx)

	logger.Info("Starting job processing routine")
	go job.ProcessPendingJobs()

	logger.Info("Registering HTTP routes")
	http.HandleFunc("/transcode", routes.TranscodeHandler)
	http.HandleFunc("/health", routes.HealthHandler)
	http.HandleFunc("/version", routes.VersionHandler)
	http.HandleFunc("/status", routes.JobStatusHandler)
	http.HandleFunc("/cancel", routes.CancelJobHandler)
	http.HandleFunc("/failures", routes.FailureQueryHandler)
	http.HandleFunc("/failures/list", routes.FailureListHandler)
	http.HandleFunc("/results", routes.ResultQueryHandler)
	http.HandleFunc("/results/list", routes.ResultListHandler)
	http.HandleFunc("/destinations", routes.RegisterDestinationHandler)

	logger.Infof("Vodpacker server starting on port 8080")
	if err := http.ListenAndServe(":8080", nil); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

// cleanupRoutine periodically drops old result and failure records.
func cleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
			// Records older than 30 days are no longer useful
			maxAge := 30 * 24 * time.Hour

			if err := success.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old result records: %v", err)
			}
			if err := failures.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old failure records: %v", err)
			}
			logger.Info("Scheduled cleanup completed")
		}
	}
}
