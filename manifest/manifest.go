package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vodpacker/ladder"
)

// Manifest filenames in the published package root.
const (
	Ext         = ".m3u8"
	MasterName  = "master" + Ext
	ReducedName = "low_master" + Ext
)

const header = "#EXTM3U\n#EXT-X-VERSION:6\n"

// Master renders the top-level manifest advertising every rendition in plan
// order. Output is a pure function of the plan and regenerates byte-for-byte.
func Master(plan ladder.Plan) string {
	return render(plan)
}

// Reduced renders the constrained-bandwidth manifest: only the lower and
// super_low tiers, in that order.
func Reduced(plan ladder.Plan) string {
	byName := make(map[ladder.Tier]ladder.Rendition, len(plan))
	for _, r := range plan {
		byName[r.Name] = r
	}

	var reduced ladder.Plan
	for _, tier := range []ladder.Tier{ladder.TierLower, ladder.TierSuperLow} {
		if r, ok := byName[tier]; ok {
			reduced = append(reduced, r)
		}
	}
	return render(reduced)
}

func render(plan ladder.Plan) string {
	var b strings.Builder
	b.WriteString(header)
	for _, r := range plan {
		display := ladder.DisplayBox(r.Width, r.Height)
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d\n",
			r.BitrateKbps*1000, display.Width, display.Height)
		fmt.Fprintf(&b, "%s/%s\n", r.Name, "index"+Ext)
	}
	return b.String()
}

// WriteAll writes both manifests into dir.
func WriteAll(dir string, plan ladder.Plan) error {
	if err := os.WriteFile(filepath.Join(dir, MasterName), []byte(Master(plan)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", MasterName, err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReducedName), []byte(Reduced(plan)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", ReducedName, err)
	}
	return nil
}
