package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// recorder is an Uploader that records upload order and tracks how many
// uploads are in flight at once.
type recorder struct {
	mu        sync.Mutex
	order     []string
	active    int
	maxActive int
	failKey   string
}

func (r *recorder) upload(ctx context.Context, localPath, remoteKey string) error {
	r.mu.Lock()
	r.active++
	if r.active > r.maxActive {
		r.maxActive = r.active
	}
	r.order = append(r.order, remoteKey)
	fail := r.failKey != "" && remoteKey == r.failKey
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}()

	if fail {
		return errors.New("injected upload failure")
	}
	return nil
}

func (r *recorder) position(key string) int {
	for i, k := range r.order {
		if k == key {
			return i
		}
	}
	return -1
}

// buildPackageTree lays out a typical output tree: two rendition
// directories plus the root manifests.
func buildPackageTree(t *testing.T, segmentCount int) string {
	t.Helper()
	root := t.TempDir()

	writeFile := func(rel string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(rel), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	writeFile("master.m3u8")
	writeFile("low_master.m3u8")
	for _, tier := range []string{"low", "super_low"} {
		writeFile(filepath.Join(tier, "index.m3u8"))
		writeFile(filepath.Join(tier, "init.mp4"))
		for i := 0; i < segmentCount; i++ {
			writeFile(filepath.Join(tier, fmt.Sprintf("segment_%03d.m4s", i)))
		}
	}
	return root
}

func TestWalkOrdering(t *testing.T) {
	root := buildPackageTree(t, 7)
	rec := &recorder{}

	w := Walker{Upload: rec.upload, BatchSize: 3}
	if err := w.Walk(context.Background(), root, "media/clip.mp4/hls"); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	// 2 root manifests + 2 tiers x (1 manifest + init + 7 segments)
	if len(rec.order) != 20 {
		t.Fatalf("Expected 20 uploads, got %d", len(rec.order))
	}

	// Subdirectories finish completely before the root manifests go up
	rootManifestPos := rec.position("media/clip.mp4/hls/low_master.m3u8")
	for _, key := range rec.order {
		if strings.Contains(key, "/low/") || strings.Contains(key, "/super_low/") {
			if rec.position(key) > rootManifestPos {
				t.Errorf("Rendition file %s uploaded after root manifests", key)
			}
		}
	}

	// Alphabetical directory order: all of low/ before any of super_low/
	lastLow, firstSuper := -1, len(rec.order)
	for i, key := range rec.order {
		if strings.Contains(key, "/low/") && i > lastLow {
			lastLow = i
		}
		if strings.Contains(key, "/super_low/") && i < firstSuper {
			firstSuper = i
		}
	}
	if lastLow > firstSuper {
		t.Error("super_low/ uploads interleaved with low/ uploads")
	}

	// Within each rendition directory the manifest goes first
	for _, tier := range []string{"low", "super_low"} {
		manifestKey := fmt.Sprintf("media/clip.mp4/hls/%s/index.m3u8", tier)
		manifestPos := rec.position(manifestKey)
		for _, key := range rec.order {
			if strings.HasPrefix(key, "media/clip.mp4/hls/"+tier+"/") && key != manifestKey {
				if rec.position(key) < manifestPos {
					t.Errorf("Segment %s uploaded before its manifest", key)
				}
			}
		}
	}

	// Root manifests are sequential in name order
	if rec.position("media/clip.mp4/hls/low_master.m3u8") > rec.position("media/clip.mp4/hls/master.m3u8") {
		t.Error("Root manifests uploaded out of name order")
	}
}

func TestWalkBoundsConcurrency(t *testing.T) {
	root := buildPackageTree(t, 25)
	rec := &recorder{}

	w := Walker{Upload: rec.upload, BatchSize: 4}
	if err := w.Walk(context.Background(), root, "p"); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if rec.maxActive > 4 {
		t.Errorf("Expected at most 4 concurrent uploads, observed %d", rec.maxActive)
	}
}

func TestWalkDefaultBatchSize(t *testing.T) {
	root := buildPackageTree(t, 2)
	rec := &recorder{}

	// Zero batch size falls back to the default
	w := Walker{Upload: rec.upload}
	if err := w.Walk(context.Background(), root, "p"); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if rec.maxActive > DefaultBatchSize {
		t.Errorf("Expected at most %d concurrent uploads, observed %d", DefaultBatchSize, rec.maxActive)
	}
}

func TestWalkManifestOnlyDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "master.m3u8"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := &recorder{}
	w := Walker{Upload: rec.upload, BatchSize: 3}
	if err := w.Walk(context.Background(), root, "p"); err != nil {
		t.Fatalf("Walk of manifest-only directory failed: %v", err)
	}
	if len(rec.order) != 1 || rec.order[0] != "p/master.m3u8" {
		t.Errorf("Expected single manifest upload, got %v", rec.order)
	}
}

func TestWalkAbortsOnFailure(t *testing.T) {
	root := buildPackageTree(t, 3)
	rec := &recorder{failKey: "p/low/index.m3u8"}

	w := Walker{Upload: rec.upload, BatchSize: 3}
	err := w.Walk(context.Background(), root, "p")
	if err == nil {
		t.Fatal("Expected Walk to fail")
	}
	if !strings.Contains(err.Error(), "p/low/index.m3u8") {
		t.Errorf("Expected failing key in error, got %v", err)
	}

	// Nothing from super_low/ or the root should have gone up
	for _, key := range rec.order {
		if strings.Contains(key, "super_low") || strings.HasSuffix(key, "master.m3u8") {
			t.Errorf("Upload %s happened after the failing manifest", key)
		}
	}
}

func TestWalkMissingDirectory(t *testing.T) {
	rec := &recorder{}
	w := Walker{Upload: rec.upload}
	if err := w.Walk(context.Background(), "/nonexistent/path", "p"); err == nil {
		t.Error("Expected error walking a missing directory")
	}
}
