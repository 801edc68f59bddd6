package routes

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"vodpacker/logger"
)

// Build-time variables (injected by ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var startTime = time.Now()

// HealthResponse is what load balancers and monitors poll.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	GoVersion     string `json:"go_version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	StartTime     string `json:"start_time"`
}

// HealthHandler reports liveness and basic build identity.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:        "healthy",
		Version:       version,
		GoVersion:     runtime.Version(),
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		StartTime:     startTime.UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("Failed to encode health response: %v", err)
	}
}
