package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// GenerateJobID returns a short random string used to identify one job.
func GenerateJobID() (string, error) {
	const idLength = 12
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	byteArray := make([]byte, idLength)
	_, err := rand.Read(byteArray)
	if err != nil {
		return "", err
	}

	var idBuilder strings.Builder
	for _, b := range byteArray {
		idBuilder.WriteByte(charset[int(b)%len(charset)])
	}

	id := idBuilder.String()
	if len(id) != idLength {
		return "", errors.New("failed to generate job id of correct length")
	}
	return id, nil
}

// GenerateRandomHex returns n random bytes hex-encoded.
func GenerateRandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
