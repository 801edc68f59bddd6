package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// Geometry holds the source video geometry as reported by ffprobe.
// Rotation is the container-level rotation metadata in degrees, one of
// 0, 90, 180, 270 or -90 (other values are treated as 0 downstream).
type Geometry struct {
	Width    int
	Height   int
	Rotation int
}

// Portrait reports whether the geometry is taller than wide.
func (g Geometry) Portrait() bool {
	return g.Height > g.Width
}

// Normalized returns the geometry with width and height swapped when the
// rotation turns the frame a quarter turn. Ladder planning always works on
// the display orientation.
func (g Geometry) Normalized() Geometry {
	rot := g.Rotation
	if rot < 0 {
		rot = -rot
	}
	if rot%180 == 90 {
		return Geometry{Width: g.Height, Height: g.Width, Rotation: g.Rotation}
	}
	return g
}

// Probe runs a single ffprobe JSON call against path and returns the source
// geometry of the first video stream.
func Probe(ctx context.Context, path string) (Geometry, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return Geometry{}, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a Geometry.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (Geometry, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Geometry{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return Geometry{}, fmt.Errorf("video stream has invalid dimensions %dx%d", s.Width, s.Height)
		}
		return Geometry{
			Width:    s.Width,
			Height:   s.Height,
			Rotation: rotationOf(s),
		}, nil
	}

	return Geometry{}, fmt.Errorf("no video stream found")
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecType          string            `json:"codec_type"`
	Width              int               `json:"width"`
	Height             int               `json:"height"`
	DisplayAspectRatio string            `json:"display_aspect_ratio"`
	SampleAspectRatio  string            `json:"sample_aspect_ratio"`
	Tags               map[string]string `json:"tags"`
	SideDataList       []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// rotationOf extracts rotation metadata, preferring the display matrix side
// data over the legacy rotate tag.
func rotationOf(s *ffprobeStream) int {
	for _, sd := range s.SideDataList {
		if sd.SideDataType == "Display Matrix" && sd.Rotation != 0 {
			return int(sd.Rotation)
		}
	}
	if s.Tags != nil {
		if v, ok := s.Tags["rotate"]; ok {
			if r, err := strconv.Atoi(v); err == nil {
				return r
			}
		}
	}
	return 0
}
