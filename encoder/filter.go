package encoder

import (
	"fmt"
	"strings"

	"vodpacker/ladder"
)

// BuildVideoFilter constructs the comma-joined ffmpeg video filter chain for
// one rendition: an optional rotation correction, a scale-to-fit into the
// encode target box, a centered pad out to the 16:9 display box, and a
// square sample-aspect-ratio reset.
//
// rotation is the container rotation metadata in degrees. 90 and -270 are
// aliases of the same physical quarter turn, as are 270 and -90. Values
// outside the known set fall through to the unrotated chain.
func BuildVideoFilter(r ladder.Rendition, rotation int) string {
	var filters []string

	switch rotation {
	case 90, -270:
		filters = append(filters, "transpose=1")
	case 270, -90:
		filters = append(filters, "transpose=2")
	case 180, -180:
		filters = append(filters, "hflip", "vflip")
	}

	display := ladder.DisplayBox(r.Width, r.Height)

	filters = append(filters,
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", r.Width, r.Height),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", display.Width, display.Height),
		"setsar=1",
	)

	return strings.Join(filters, ",")
}
