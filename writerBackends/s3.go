package writerbackends

import (
	"context"
	"fmt"
	"io"

	"vodpacker/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// newS3Client builds a fresh S3 client from the provided keys. Every
// operation gets its own client: setup cost is traded for isolation, so a
// wedged connection in one upload cannot poison its siblings.
func newS3Client(accessInfo map[string]string) *s3.Client {
	creds := credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], "")
	return s3.New(s3.Options{
		Region:      accessInfo["region"],
		Credentials: creds,
	})
}

// UploadToS3WithCreds uploads content from an io.Reader to an S3 object and
// is fully self-contained, initializing its own client.
func UploadToS3WithCreds(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	key := accessInfo["key"]
	bucket := accessInfo["bucket"]

	uploader := manager.NewUploader(newS3Client(accessInfo))

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}

	logger.Debugf("uploaded object '%s' to bucket '%s'", key, bucket)
	return nil
}

// DownloadFromS3WithCreds streams an S3 object into writer. Used to fetch
// the source video into the job workspace.
func DownloadFromS3WithCreds(ctx context.Context, accessInfo map[string]string, writer io.Writer) error {
	key := accessInfo["key"]
	bucket := accessInfo["bucket"]

	out, err := newS3Client(accessInfo).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get object %s from bucket %s: %w", key, bucket, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(writer, out.Body); err != nil {
		return fmt.Errorf("failed to read object %s from bucket %s: %w", key, bucket, err)
	}

	logger.Debugf("downloaded object '%s' from bucket '%s'", key, bucket)
	return nil
}

// DeleteFromS3WithCreds removes an object. Used to drop the source video
// after a successful publish when the job asks for it.
func DeleteFromS3WithCreds(ctx context.Context, accessInfo map[string]string) error {
	key := accessInfo["key"]
	bucket := accessInfo["bucket"]

	_, err := newS3Client(accessInfo).DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, bucket, err)
	}
	return nil
}
