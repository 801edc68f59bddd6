package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"vodpacker/config"
	"vodpacker/credentials"
	"vodpacker/encoder"
	"vodpacker/ladder"
	"vodpacker/logger"
	"vodpacker/manifest"
	"vodpacker/models"
	"vodpacker/probe"
	"vodpacker/publish"
	writerbackends "vodpacker/writerBackends"
)

// Stage labels attached to pipeline errors, recorded in the failure store.
const (
	StageDownload = "download"
	StageProbe    = "probe"
	StageEncode   = "encode"
	StageManifest = "manifest"
	StagePublish  = "publish"
)

// stageError tags an error with the pipeline stage that produced it.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func atStage(stage string, err error) error {
	return &stageError{stage: stage, err: err}
}

// Pipeline holds the per-invocation configuration for one packaging run.
// All configuration is passed in explicitly; the pipeline itself never
// reads environment state.
type Pipeline struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	CDNBaseURL    string
	BatchSize     int
	WorkspaceRoot string
	Dest          credentials.Destination

	// Stage hooks, overridable in tests. Nil means the real implementation.
	fetchFn   func(ctx context.Context, sourceKey, dstPath string) error
	probeFn   func(ctx context.Context, path string) (probe.Geometry, error)
	encodeFn  func(ctx context.Context, inputPath string, r ladder.Rendition, rotation int, outputDir string) error
	publishFn func(ctx context.Context, localRoot, remotePrefix string) error
}

// NewPipeline assembles a pipeline from the process environment, resolving
// the job's publish destination from the destinations store (falling back to
// the env-configured default when the job names none).
func NewPipeline(tj models.TranscodeJob) (*Pipeline, error) {
	p := &Pipeline{
		Bucket:        config.GetBucketName(),
		Region:        config.GetRegion(),
		AccessKey:     config.GetAccessKey(),
		SecretKey:     config.GetSecretKey(),
		CDNBaseURL:    config.GetCDNBaseURL(),
		BatchSize:     config.GetSegmentBatchSize(),
		WorkspaceRoot: config.GetWorkspaceRoot(),
	}

	if tj.Destination != "" {
		dest, err := credentials.GetDestination(tj.Destination)
		if err != nil {
			return nil, fmt.Errorf("resolve destination %q: %w", tj.Destination, err)
		}
		p.Dest = dest
		return p, nil
	}

	p.Dest = defaultDestination(p)
	return p, nil
}

// defaultDestination builds the publish target from env config.
func defaultDestination(p *Pipeline) credentials.Destination {
	backend := config.GetPublishBackend()
	info := map[string]string{
		"bucket":    p.Bucket,
		"region":    p.Region,
		"accessKey": p.AccessKey,
		"secretKey": p.SecretKey,
	}
	if backend == "local" {
		info["baseDir"] = config.GetLocalServeBaseDir()
	}
	return credentials.Destination{Type: backend, AccessInfo: info}
}

// Run executes the full pipeline for one job and returns a structured
// result. It never panics past its own boundary and always clears the job
// workspace, on success and on every failure path.
func (p *Pipeline) Run(ctx context.Context, jobID string, tj models.TranscodeJob) (result models.JobResult) {
	workspace := filepath.Join(p.WorkspaceRoot, jobID)

	defer clearWorkspace(workspace)
	defer func() {
		if r := recover(); r != nil {
			result = models.JobResult{
				Status:  "error",
				Message: fmt.Sprintf("pipeline panic processing %s", tj.SourceKey),
				Error:   fmt.Sprint(r),
				Trace:   string(debug.Stack()),
			}
		}
	}()

	manifestURL, err := p.run(ctx, workspace, tj)
	if err != nil {
		res := models.JobResult{
			Status:  "error",
			Message: fmt.Sprintf("failed to package %s", tj.SourceKey),
			Error:   err.Error(),
			Trace:   err.Error(),
		}
		var se *stageError
		if errors.As(err, &se) {
			res.Stage = se.stage
			res.Error = se.err.Error()
		}
		return res
	}

	return models.JobResult{
		Status:      "success",
		Message:     fmt.Sprintf("packaged %s", tj.SourceKey),
		ManifestURL: manifestURL,
	}
}

// run walks the pipeline stages in order. Any returned error is tagged with
// the stage it came from.
func (p *Pipeline) run(ctx context.Context, workspace string, tj models.TranscodeJob) (string, error) {
	if err := os.MkdirAll(workspace, 0755); err != nil {
		return "", atStage(StageDownload, fmt.Errorf("create workspace: %w", err))
	}

	// Download the source object into the workspace.
	inputPath := filepath.Join(workspace, "source"+filepath.Ext(tj.SourceKey))
	if err := p.fetch(ctx, tj.SourceKey, inputPath); err != nil {
		return "", atStage(StageDownload, err)
	}
	logger.Infof("job %s: downloaded %s", tj.SourceKey, inputPath)

	// Probe geometry.
	geom, err := p.probe(ctx, inputPath)
	if err != nil {
		return "", atStage(StageProbe, err)
	}
	logger.Infof("job %s: source %dx%d rotation %d", tj.SourceKey, geom.Width, geom.Height, geom.Rotation)

	// Plan the ladder on the rotation-normalized geometry. Pure, cannot fail.
	plan := ladder.BuildPlan(geom.Normalized())

	// Encode all renditions concurrently. The first error wins; siblings
	// already in flight run to completion but nothing past this stage
	// starts once any of them failed.
	var g errgroup.Group
	for _, r := range plan {
		r := r
		g.Go(func() error {
			return p.encode(ctx, inputPath, r, geom.Rotation, filepath.Join(workspace, string(r.Name)))
		})
	}
	if err := g.Wait(); err != nil {
		return "", atStage(StageEncode, err)
	}

	// Synthesize both manifests from the plan.
	if err := manifest.WriteAll(workspace, plan); err != nil {
		return "", atStage(StageManifest, err)
	}

	// Drop the local source before uploading to cap disk usage. Non-fatal.
	if err := os.Remove(inputPath); err != nil {
		logger.Warnf("job %s: failed to remove local source %s: %v", tj.SourceKey, inputPath, err)
	}

	// Publish the whole output tree under the fixed remote prefix.
	remotePrefix := path.Join(tj.SourceKey, "hls")
	if err := p.publish(ctx, workspace, remotePrefix); err != nil {
		return "", atStage(StagePublish, err)
	}

	// Optionally drop the remote source now that the package is live.
	if tj.DeleteSource {
		info := p.sourceAccessInfo(tj.SourceKey)
		if err := writerbackends.DeleteFromS3WithCreds(ctx, info); err != nil {
			logger.Warnf("job %s: failed to delete source object: %v", tj.SourceKey, err)
		}
	}

	return fmt.Sprintf("%s/%s/hls/%s", p.CDNBaseURL, tj.SourceKey, manifest.MasterName), nil
}

// --- default stage implementations ---

func (p *Pipeline) sourceAccessInfo(key string) map[string]string {
	return map[string]string{
		"bucket":    p.Bucket,
		"region":    p.Region,
		"accessKey": p.AccessKey,
		"secretKey": p.SecretKey,
		"key":       key,
	}
}

func (p *Pipeline) fetch(ctx context.Context, sourceKey, dstPath string) error {
	if p.fetchFn != nil {
		return p.fetchFn(ctx, sourceKey, dstPath)
	}
	f, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", dstPath, err)
	}
	defer f.Close()
	return writerbackends.DownloadFromS3WithCreds(ctx, p.sourceAccessInfo(sourceKey), f)
}

func (p *Pipeline) probe(ctx context.Context, path string) (probe.Geometry, error) {
	if p.probeFn != nil {
		return p.probeFn(ctx, path)
	}
	return probe.Probe(ctx, path)
}

func (p *Pipeline) encode(ctx context.Context, inputPath string, r ladder.Rendition, rotation int, outputDir string) error {
	if p.encodeFn != nil {
		return p.encodeFn(ctx, inputPath, r, rotation, outputDir)
	}
	return encoder.EncodeRendition(ctx, inputPath, r, rotation, outputDir)
}

func (p *Pipeline) publish(ctx context.Context, localRoot, remotePrefix string) error {
	if p.publishFn != nil {
		return p.publishFn(ctx, localRoot, remotePrefix)
	}

	walker := publish.Walker{
		BatchSize: p.BatchSize,
		Upload: func(ctx context.Context, localPath, remoteKey string) error {
			f, err := os.Open(localPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", localPath, err)
			}
			defer f.Close()

			info := make(map[string]string, len(p.Dest.AccessInfo)+1)
			for k, v := range p.Dest.AccessInfo {
				info[k] = v
			}
			info["key"] = remoteKey
			return writerbackends.UploadStream(ctx, info, f, p.Dest.Type)
		},
	}
	return walker.Walk(ctx, localRoot, remotePrefix)
}

// clearWorkspace recursively removes the job scratch directory. Safe to call
// on a missing or already-empty directory; failures are logged, never
// escalated.
func clearWorkspace(workspace string) {
	if err := os.RemoveAll(workspace); err != nil {
		logger.Errorf("failed to clear workspace %s: %v", workspace, err)
	}
}
