package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"vodpacker/logger"
	"vodpacker/manifest"
)

// DefaultBatchSize bounds how many segment uploads run concurrently. It is
// the ceiling on simultaneous outbound connections during a publish.
const DefaultBatchSize = 40

// TaskKind classifies one unit of the upload worklist.
type TaskKind int

const (
	KindDirectory TaskKind = iota
	KindManifest
	KindSegmentBatch
)

// FileRef pairs a local file with its remote key.
type FileRef struct {
	LocalPath string
	RemoteKey string
}

// Task is one transient unit of the upload walk. Directory tasks expand into
// further tasks; manifest tasks upload one file; segment-batch tasks upload
// their files concurrently.
type Task struct {
	Kind      TaskKind
	LocalPath string
	RemoteKey string
	Files     []FileRef // populated for segment batches
}

// Uploader sends one local file to one remote key.
type Uploader func(ctx context.Context, localPath, remoteKey string) error

// Walker uploads a local directory tree to a remote key prefix. Within every
// directory, subdirectories are fully published first (one at a time), then
// manifest files one by one, then segment files in concurrent batches of at
// most BatchSize. This keeps directory structure writes from interleaving
// with bulk segment writes and bounds connection fan-out.
type Walker struct {
	Upload    Uploader
	BatchSize int
}

// Walk publishes localRoot under remotePrefix. Any single upload failure
// aborts the walk; retrying is the uploader's concern, not the walker's.
func (w *Walker) Walk(ctx context.Context, localRoot, remotePrefix string) error {
	batchSize := w.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// LIFO worklist: expanding a directory pushes its children on top, so a
	// subdirectory is fully drained before its siblings and before the
	// parent's own files.
	stack := []Task{{Kind: KindDirectory, LocalPath: localRoot, RemoteKey: remotePrefix}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch task.Kind {
		case KindDirectory:
			expanded, err := expandDirectory(task, batchSize)
			if err != nil {
				return err
			}
			// Reverse push keeps the contract order on pop.
			for i := len(expanded) - 1; i >= 0; i-- {
				stack = append(stack, expanded[i])
			}

		case KindManifest:
			if err := w.Upload(ctx, task.LocalPath, task.RemoteKey); err != nil {
				return fmt.Errorf("upload manifest %s: %w", task.RemoteKey, err)
			}

		case KindSegmentBatch:
			g := new(errgroup.Group)
			for _, f := range task.Files {
				f := f
				g.Go(func() error {
					if err := w.Upload(ctx, f.LocalPath, f.RemoteKey); err != nil {
						return fmt.Errorf("upload segment %s: %w", f.RemoteKey, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
		}
	}

	logger.Infof("published %s under %s", localRoot, remotePrefix)
	return nil
}

// expandDirectory partitions a directory's immediate children into
// subdirectory, manifest and segment tasks, in that processing order.
// Segment files are grouped into fixed-size batches. A directory without
// segment files simply produces no batches.
func expandDirectory(dir Task, batchSize int) ([]Task, error) {
	entries, err := os.ReadDir(dir.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir.LocalPath, err)
	}

	var subdirs, manifests []Task
	var segments []FileRef

	for _, entry := range entries {
		local := filepath.Join(dir.LocalPath, entry.Name())
		remote := path.Join(dir.RemoteKey, entry.Name())

		switch {
		case entry.IsDir():
			subdirs = append(subdirs, Task{Kind: KindDirectory, LocalPath: local, RemoteKey: remote})
		case strings.HasSuffix(entry.Name(), manifest.Ext):
			manifests = append(manifests, Task{Kind: KindManifest, LocalPath: local, RemoteKey: remote})
		default:
			segments = append(segments, FileRef{LocalPath: local, RemoteKey: remote})
		}
	}

	tasks := append(subdirs, manifests...)
	for start := 0; start < len(segments); start += batchSize {
		end := start + batchSize
		if end > len(segments) {
			end = len(segments)
		}
		tasks = append(tasks, Task{Kind: KindSegmentBatch, Files: segments[start:end]})
	}
	return tasks, nil
}
