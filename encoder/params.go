package encoder

import "vodpacker/ladder"

// Segmenting constants. 4s segments with a keyframe every 4s (at the assumed
// 30fps) so every segment starts on an IDR frame.
const (
	SegmentSeconds   = 4
	keyframeInterval = SegmentSeconds * 30
	cappedFrameRate  = 24
)

// RateControl holds the tier-keyed codec and rate-control settings for one
// rendition encode.
type RateControl struct {
	CRF              int
	Preset           string
	KeyframeInterval int
	AudioBitrateKbps int
	VideoBitrateKbps int
	MaxRateKbps      int
	BufferSizeKbps   int
	FrameRateCap     int // 0 = no cap
}

// RateControlFor derives the encode settings from a planned rendition.
// Max rate is 1.5x the target bitrate and the buffer holds two seconds of
// max-rate traffic. The two lowest tiers are capped at 24fps.
func RateControlFor(r ladder.Rendition) RateControl {
	rc := RateControl{
		KeyframeInterval: keyframeInterval,
		VideoBitrateKbps: r.BitrateKbps,
		MaxRateKbps:      r.BitrateKbps * 3 / 2,
	}
	rc.BufferSizeKbps = rc.MaxRateKbps * 2

	switch r.Name {
	case ladder.TierSuperLow:
		rc.CRF = 28
		rc.Preset = "veryfast"
		rc.AudioBitrateKbps = 64
		rc.FrameRateCap = cappedFrameRate
	case ladder.TierLower:
		rc.CRF = 26
		rc.Preset = "faster"
		rc.AudioBitrateKbps = 96
		rc.FrameRateCap = cappedFrameRate
	default:
		rc.CRF = 23
		rc.Preset = "fast"
		rc.AudioBitrateKbps = 128
	}
	return rc
}
