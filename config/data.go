package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// SHARED_JWT_SECRET is the HMAC secret used to verify job submission tokens.
// Set via VODPACKER_JWT_SECRET.
var SHARED_JWT_SECRET = os.Getenv("VODPACKER_JWT_SECRET")

// GetDataDir returns the directory where vodpacker stores its databases.
// Priority: VODPACKER_DATA_DIR environment variable > "./data" default.
func GetDataDir() string {
	if dir := os.Getenv("VODPACKER_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetWorkspaceRoot returns the scratch directory root. Each job gets its own
// subdirectory under this root, removed when the job finishes.
func GetWorkspaceRoot() string {
	if dir := os.Getenv("VODPACKER_WORKSPACE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "vodpacker")
}

// GetPendingQueueDBPath returns the full path to the pending job queue database.
// Path: {DATA_DIR}/PendingQueue.db
func GetPendingQueueDBPath() string {
	return filepath.Join(GetDataDir(), "PendingQueue.db")
}

// GetDestinationsDBPath returns the full path to the publish destinations database.
// Path: {DATA_DIR}/destinations.db
func GetDestinationsDBPath() string {
	return filepath.Join(GetDataDir(), "destinations.db")
}

// GetFailuresDBPath returns the full path to the failures database.
// Path: {DATA_DIR}/failures.db
func GetFailuresDBPath() string {
	return filepath.Join(GetDataDir(), "failures.db")
}

// GetResultsDBPath returns the full path to the completed results database.
// Path: {DATA_DIR}/results.db
func GetResultsDBPath() string {
	return filepath.Join(GetDataDir(), "results.db")
}

// GetBucketName returns the object store bucket holding source videos and
// published packages.
func GetBucketName() string {
	return os.Getenv("VODPACKER_BUCKET")
}

// GetRegion returns the object store region.
func GetRegion() string {
	if r := os.Getenv("VODPACKER_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}

// GetCDNBaseURL returns the base URL under which published packages are
// reachable, without a trailing slash.
func GetCDNBaseURL() string {
	return os.Getenv("VODPACKER_CDN_BASE_URL")
}

// GetAccessKey returns the object store access key id.
func GetAccessKey() string {
	return os.Getenv("VODPACKER_ACCESS_KEY")
}

// GetSecretKey returns the object store secret access key.
func GetSecretKey() string {
	return os.Getenv("VODPACKER_SECRET_KEY")
}

// GetPublishBackend returns the default publish backend type (s3, gcs, sftp
// or local). Jobs may override it by naming a registered destination.
func GetPublishBackend() string {
	if b := os.Getenv("VODPACKER_PUBLISH_BACKEND"); b != "" {
		return b
	}
	return "s3"
}

// GetSegmentBatchSize returns how many segment files the publish walker
// uploads concurrently within one batch. Defaults to 40.
func GetSegmentBatchSize() int {
	if v := os.Getenv("VODPACKER_SEGMENT_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 40
}

// GetLocalServeBaseDir returns the base directory for the local publish
// backend. Files land here and can be served directly by an HTTP server.
// Defaults to "./serve" relative to the executable.
func GetLocalServeBaseDir() string {
	if dir := os.Getenv("VODPACKER_SERVE_DIR"); dir != "" {
		return dir
	}
	return "./serve"
}
