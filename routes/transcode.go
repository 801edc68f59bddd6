package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"vodpacker/config"
	"vodpacker/job"
	"vodpacker/logger"
	"vodpacker/models"
	"vodpacker/utils"
)

// verifyJWT verifies the JWT from the request and returns the claims
func verifyJWT(r *http.Request) (*models.VodpackerJWT, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	claims, err := utils.VerifyJobToken(token, utils.VerifyConfig{
		SecretKey: []byte(config.SHARED_JWT_SECRET),
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// TranscodeHandler accepts one packaging job. The job description rides in
// the signed token. By default the job is queued and the response carries its
// id; with ?sync=1 the pipeline runs inline and the response is the full
// structured result (200 on success, 500 on failure).
func TranscodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := verifyJWT(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	tj := claims.Job
	if tj.SourceKey == "" {
		http.Error(w, "job is missing sourceKey", http.StatusBadRequest)
		return
	}

	id, err := utils.GenerateJobID()
	if err != nil {
		http.Error(w, "Failed to generate job id", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("sync") == "1" {
		// Run inline, detached from the request context so a dropped
		// client connection cannot abort a half-published package.
		logger.Infof("running job %s synchronously for %s", id, tj.SourceKey)
		result := job.Execute(context.Background(), id, tj)

		status := http.StatusOK
		if result.Status != "success" {
			status = http.StatusInternalServerError
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(result)
		return
	}

	if err := job.AddPendingJob(id, tj); err != nil {
		logger.Errorf("failed to enqueue job %s: %v", id, err)
		http.Error(w, "Failed to enqueue job", http.StatusInternalServerError)
		return
	}

	logger.Infof("queued job %s for %s", id, tj.SourceKey)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"jobId":  id,
		"status": "pending",
	})
}
