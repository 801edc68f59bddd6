package job

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vodpacker/failures"
	"vodpacker/ladder"
	"vodpacker/logger"
	"vodpacker/models"
	"vodpacker/success"
)

func renditionNames() []string {
	names := make([]string, 0, len(ladder.Tiers))
	for _, t := range ladder.Tiers {
		names = append(names, string(t))
	}
	return names
}

// recordResult persists the invocation outcome in the matching store.
// Storage errors are logged, never escalated: the result was already
// computed and losing the record must not turn a success into a failure.
func recordResult(id string, tj models.TranscodeJob, result models.JobResult) {
	if result.Status == "success" {
		record := success.SuccessRecord{
			JobID:       id,
			SourceKey:   tj.SourceKey,
			ManifestURL: result.ManifestURL,
			Renditions:  renditionNames(),
		}
		if err := success.StoreSuccess(record); err != nil {
			logger.Errorf("failed to store success record for job %s: %v", id, err)
		}
		return
	}

	record := failures.FailureRecord{
		JobID:     id,
		SourceKey: tj.SourceKey,
		Stage:     result.Stage,
		Error:     result.Error,
		Trace:     result.Trace,
	}
	if err := failures.StoreFailure(record); err != nil {
		logger.Errorf("failed to store failure record for job %s: %v", id, err)
	}
}

// sendCallback POSTs the job result to the configured callback URL, if any.
func sendCallback(tj models.TranscodeJob, id string, result models.JobResult) error {
	if tj.CallbackURL == "" {
		return nil // No callback configured
	}

	payload := map[string]interface{}{
		"jobId":     id,
		"sourceKey": tj.SourceKey,
		"result":    result,
		"timestamp": time.Now().Unix(),
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal callback payload: %w", err)
	}

	req, err := http.NewRequest("POST", tj.CallbackURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Vodpacker/1.0")
	for key, value := range tj.CallbackHeaders {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned non-2xx status: %d", resp.StatusCode)
	}

	logger.Infof("sent callback for job %s to %s", id, tj.CallbackURL)
	return nil
}
