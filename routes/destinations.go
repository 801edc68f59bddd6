package routes

import (
	"encoding/json"
	"net/http"

	"vodpacker/credentials"
	"vodpacker/logger"
	"vodpacker/utils"
)

// RegisterDestinationHandler stores a named publish destination. The
// generated name is opaque; jobs reference it in their token instead of
// carrying raw credentials.
func RegisterDestinationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := verifyJWT(r); err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var dest credentials.Destination
	if err := json.NewDecoder(r.Body).Decode(&dest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch dest.Type {
	case "s3", "gcs", "sftp", "local":
	default:
		http.Error(w, "Unknown destination type", http.StatusBadRequest)
		return
	}

	name, err := utils.GenerateRandomHex(16)
	if err != nil {
		http.Error(w, "Failed to generate destination name", http.StatusInternalServerError)
		return
	}

	if err := credentials.StoreDestination(name, dest); err != nil {
		logger.Errorf("Failed to store destination: %v", err)
		http.Error(w, "Failed to store destination", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"destination": name,
	})
}
