package credentials

import (
	"encoding/json"

	"vodpacker/logger"

	"github.com/cockroachdb/pebble"
)

// The destinations store maps a destination name to the backend type and
// credential map the publish walker needs to reach it. Jobs reference a
// destination by name; the default destination is assembled from env config.

// Destination is one registered publish target.
type Destination struct {
	Type       string            `json:"type"` // s3, gcs, sftp or local
	AccessInfo map[string]string `json:"accessInfo"`
}

var db *pebble.DB

// OpenDB opens the Pebble DB for destinations at the specified path
func OpenDB(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		logger.Errorf("Failed to open Pebble DB: %v", err)
		return err
	}
	return nil
}

// CloseDB closes the DB
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// GetDestination returns the destination registered under name.
func GetDestination(name string) (Destination, error) {
	var dest Destination
	value, closer, err := db.Get([]byte(name))
	if err != nil {
		return dest, err
	}
	defer closer.Close()
	err = json.Unmarshal(value, &dest)
	return dest, err
}

// StoreDestination stores the destination under the given name
func StoreDestination(name string, dest Destination) error {
	encoded, err := json.Marshal(dest)
	if err != nil {
		return err
	}
	return db.Set([]byte(name), encoded, pebble.Sync)
}

// DeleteDestination deletes the destination for the given name
func DeleteDestination(name string) error {
	return db.Delete([]byte(name), pebble.Sync)
}
