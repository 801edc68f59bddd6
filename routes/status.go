package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"vodpacker/job"
	"vodpacker/logger"
)

// JobStatusResponse represents the job status response
type JobStatusResponse struct {
	JobID string `json:"jobId"`
	State string `json:"state"`
}

// JobStatusHandler returns the status of a job by id
func JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Job status request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	state, exists := job.GetJobState(id)
	if !exists {
		http.Error(w, fmt.Sprintf("Job %s not found", id), http.StatusNotFound)
		return
	}

	response := JobStatusResponse{JobID: id, State: state.String()}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("Failed to encode status response: %v", err)
	}
}
