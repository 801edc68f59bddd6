package ladder

import "math"

// DisplayDimensions is the 16:9-normalized box a rendition is letterboxed
// into. It is what manifests advertise as RESOLUTION.
type DisplayDimensions struct {
	Width  int
	Height int
}

// DisplayBox normalizes a content box to 16:9. Portrait boxes keep their
// height and widen to 16:9 (pillarbox); everything else keeps its width and
// extends to 16:9 height (letterbox). The filter chain and the manifest
// writer must both go through this one routine so the padded frame and the
// advertised resolution cannot drift apart.
func DisplayBox(width, height int) DisplayDimensions {
	var dw, dh int
	if height > width {
		dh = height
		dw = int(math.Round(float64(height) * 16.0 / 9.0))
	} else {
		dw = width
		dh = int(math.Round(float64(width) * 9.0 / 16.0))
	}

	// Even dimensions, rounding up: the display box must fully contain the
	// scaled content box.
	if dw%2 != 0 {
		dw++
	}
	if dh%2 != 0 {
		dh++
	}
	return DisplayDimensions{Width: dw, Height: dh}
}
