package routes

import (
	"encoding/json"
	"net/http"

	"vodpacker/failures"
	"vodpacker/logger"
)

// FailureQueryHandler handles queries for packaging failures
func FailureQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter required", http.StatusBadRequest)
		return
	}

	record, err := failures.GetFailure(id)
	if err != nil {
		logger.Errorf("Failed to query failure for job %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if record == nil {
		response := map[string]interface{}{
			"jobId":   id,
			"status":  "success",
			"message": "No failure recorded for this job",
		}
		json.NewEncoder(w).Encode(response)
		return
	}

	response := map[string]interface{}{
		"jobId":     record.JobID,
		"sourceKey": record.SourceKey,
		"status":    "failed",
		"stage":     record.Stage,
		"timestamp": record.Timestamp,
		"error":     record.Error,
		"trace":     record.Trace,
	}
	json.NewEncoder(w).Encode(response)
}

// FailureListHandler handles listing all failures (admin endpoint)
func FailureListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := failures.ListFailures()
	if err != nil {
		logger.Errorf("Failed to list failures: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":    len(records),
		"failures": records,
	})
}
