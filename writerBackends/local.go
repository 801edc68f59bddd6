package writerbackends

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vodpacker/logger"
)

// UploadToLocalServe writes content to the local file system under the serve
// base directory, from where an HTTP server can deliver the package directly.
func UploadToLocalServe(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	baseDir := accessInfo["baseDir"] // base directory files are served from
	key := accessInfo["key"]         // package-relative key, slash separated

	fullPath := filepath.Join(baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}

	logger.Debugf("saved '%s' to '%s'", key, fullPath)
	return nil
}
