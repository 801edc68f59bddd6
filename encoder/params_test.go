package encoder

import (
	"testing"

	"vodpacker/ladder"
)

func TestRateControlDerivation(t *testing.T) {
	r := ladder.Rendition{Name: ladder.TierLow, Width: 1920, Height: 1080, BitrateKbps: 3456}
	rc := RateControlFor(r)

	if rc.VideoBitrateKbps != 3456 {
		t.Errorf("Expected video bitrate 3456, got %d", rc.VideoBitrateKbps)
	}
	if rc.MaxRateKbps != 5184 {
		t.Errorf("Expected max rate 1.5x bitrate = 5184, got %d", rc.MaxRateKbps)
	}
	if rc.BufferSizeKbps != 10368 {
		t.Errorf("Expected buffer 2x max rate = 10368, got %d", rc.BufferSizeKbps)
	}
	if rc.KeyframeInterval != 120 {
		t.Errorf("Expected keyframe interval 120, got %d", rc.KeyframeInterval)
	}
}

func TestRateControlPerTier(t *testing.T) {
	cases := []struct {
		tier   ladder.Tier
		crf    int
		preset string
		audio  int
		fpsCap int
	}{
		{ladder.TierSuperLow, 28, "veryfast", 64, 24},
		{ladder.TierLower, 26, "faster", 96, 24},
		{ladder.TierLow, 23, "fast", 128, 0},
	}

	for _, c := range cases {
		rc := RateControlFor(ladder.Rendition{Name: c.tier, BitrateKbps: 2000})
		if rc.CRF != c.crf {
			t.Errorf("Tier %s: expected CRF %d, got %d", c.tier, c.crf, rc.CRF)
		}
		if rc.Preset != c.preset {
			t.Errorf("Tier %s: expected preset %s, got %s", c.tier, c.preset, rc.Preset)
		}
		if rc.AudioBitrateKbps != c.audio {
			t.Errorf("Tier %s: expected audio bitrate %d, got %d", c.tier, c.audio, rc.AudioBitrateKbps)
		}
		if rc.FrameRateCap != c.fpsCap {
			t.Errorf("Tier %s: expected frame rate cap %d, got %d", c.tier, c.fpsCap, rc.FrameRateCap)
		}
	}
}
