package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"vodpacker/ladder"
	"vodpacker/logger"
)

// Names of the files a rendition encode produces inside its directory.
const (
	RenditionManifest = "index.m3u8"
	InitSegment       = "init.mp4"
	segmentPattern    = "segment_%03d.m4s"
)

// RequireFFmpeg checks that the external transcoding binaries are on PATH.
// Called once at startup so misconfiguration surfaces before the first job.
func RequireFFmpeg() error {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required command %q not found in PATH", bin)
		}
	}
	return nil
}

// BuildEncodeArgs assembles the full ffmpeg argument list for one rendition:
// fragmented-MP4 segmented HLS with independent 4s segments and a static
// playlist, written into outputDir.
func BuildEncodeArgs(inputPath string, r ladder.Rendition, rotation int, outputDir string) []string {
	rc := RateControlFor(r)

	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", BuildVideoFilter(r, rotation),
		"-c:v", "libx264",
		"-preset", rc.Preset,
		"-crf", strconv.Itoa(rc.CRF),
		"-b:v", fmt.Sprintf("%dk", rc.VideoBitrateKbps),
		"-maxrate", fmt.Sprintf("%dk", rc.MaxRateKbps),
		"-bufsize", fmt.Sprintf("%dk", rc.BufferSizeKbps),
		"-g", strconv.Itoa(rc.KeyframeInterval),
		"-keyint_min", strconv.Itoa(rc.KeyframeInterval),
		"-sc_threshold", "0",
	}
	if rc.FrameRateCap > 0 {
		args = append(args, "-r", strconv.Itoa(rc.FrameRateCap))
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", rc.AudioBitrateKbps),
		"-f", "hls",
		"-hls_time", strconv.Itoa(SegmentSeconds),
		"-hls_playlist_type", "vod",
		"-hls_segment_type", "fmp4",
		"-hls_flags", "independent_segments",
		"-hls_fmp4_init_filename", InitSegment,
		"-hls_segment_filename", filepath.Join(outputDir, segmentPattern),
		filepath.Join(outputDir, RenditionManifest),
	)
	return args
}

// EncodeRendition runs one ffmpeg invocation producing the segmented output
// for a single rendition. Stderr is captured and attached to the error so
// encode failures are diagnosable from the failure store.
func EncodeRendition(ctx context.Context, inputPath string, r ladder.Rendition, rotation int, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create rendition directory %s: %w", outputDir, err)
	}

	args := BuildEncodeArgs(inputPath, r, rotation, outputDir)
	logger.Debugf("encoding rendition %s: ffmpeg %v", r.Name, args)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg rendition %s: %w: %s", r.Name, err, tail(stderrBuf.String(), 2000))
	}

	logger.Infof("rendition %s encoded into %s", r.Name, outputDir)
	return nil
}

// tail returns at most the last n bytes of s. ffmpeg puts the interesting
// part of an error at the end of a very chatty stderr.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
