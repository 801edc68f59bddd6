package encoder

import (
	"strings"
	"testing"

	"vodpacker/ladder"
)

func TestBuildVideoFilterNoRotation(t *testing.T) {
	r := ladder.Rendition{Name: ladder.TierLow, Width: 1920, Height: 1080, BitrateKbps: 3456}

	got := BuildVideoFilter(r, 0)
	want := "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2,setsar=1"
	if got != want {
		t.Errorf("Expected filter %q, got %q", want, got)
	}
}

func TestBuildVideoFilterRotationAliases(t *testing.T) {
	r := ladder.Rendition{Name: ladder.TierLower, Width: 864, Height: 1536, BitrateKbps: 1000}

	// 90 and -270 are the same physical quarter turn
	if a, b := BuildVideoFilter(r, 90), BuildVideoFilter(r, -270); a != b {
		t.Errorf("Rotation 90 and -270 should produce identical filters: %q vs %q", a, b)
	}
	if !strings.HasPrefix(BuildVideoFilter(r, 90), "transpose=1,") {
		t.Errorf("Rotation 90 should start with transpose=1, got %q", BuildVideoFilter(r, 90))
	}

	// 270 and -90 likewise
	if a, b := BuildVideoFilter(r, 270), BuildVideoFilter(r, -90); a != b {
		t.Errorf("Rotation 270 and -90 should produce identical filters: %q vs %q", a, b)
	}
	if !strings.HasPrefix(BuildVideoFilter(r, 270), "transpose=2,") {
		t.Errorf("Rotation 270 should start with transpose=2, got %q", BuildVideoFilter(r, 270))
	}
}

func TestBuildVideoFilterUpsideDown(t *testing.T) {
	r := ladder.Rendition{Name: ladder.TierLow, Width: 1280, Height: 720, BitrateKbps: 2000}

	got := BuildVideoFilter(r, 180)
	if strings.Count(got, "hflip") != 1 || strings.Count(got, "vflip") != 1 {
		t.Errorf("Rotation 180 should flip both axes exactly once, got %q", got)
	}
	if strings.Contains(got, "transpose") {
		t.Errorf("Rotation 180 should not transpose, got %q", got)
	}
}

func TestBuildVideoFilterUnknownRotation(t *testing.T) {
	r := ladder.Rendition{Name: ladder.TierLow, Width: 1280, Height: 720, BitrateKbps: 2000}

	// Unknown rotation values fall through to the unrotated chain
	if got, want := BuildVideoFilter(r, 45), BuildVideoFilter(r, 0); got != want {
		t.Errorf("Unknown rotation should match unrotated chain: %q vs %q", got, want)
	}
}

func TestBuildVideoFilterPadsToDisplayBox(t *testing.T) {
	// Portrait rendition pads out to the widened 16:9 box
	r := ladder.Rendition{Name: ladder.TierLower, Width: 480, Height: 854, BitrateKbps: 1000}

	got := BuildVideoFilter(r, 0)
	if !strings.Contains(got, "pad=1518:854:") {
		t.Errorf("Expected pad to 1518x854 display box, got %q", got)
	}
	if !strings.Contains(got, "scale=480:854:") {
		t.Errorf("Expected scale to 480x854 content box, got %q", got)
	}
	if !strings.HasSuffix(got, "setsar=1") {
		t.Errorf("Filter chain should end with setsar=1, got %q", got)
	}
}
