package writerbackends

import (
	"context"
	"fmt"
	"io"
)

// UploadStream writes one file of a package to the configured backend.
// accessInfo carries the backend credentials plus "key", the remote key of
// the file relative to the backend's root (e.g. "myvideo/hls/low/index.m3u8").
func UploadStream(ctx context.Context, accessInfo map[string]string, reader io.Reader, backendType string) error {
	switch backendType {
	case "s3":
		if err := UploadToS3WithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
	case "gcs":
		if err := UploadToGCSWithJSON(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to GCS: %w", err)
		}
	case "sftp":
		if err := UploadToSFTPWithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to SFTP: %w", err)
		}
	case "local":
		if err := UploadToLocalServe(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to local serve dir: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend type: %s", backendType)
	}
	return nil
}
