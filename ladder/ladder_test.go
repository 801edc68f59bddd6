package ladder

import (
	"testing"

	"vodpacker/probe"
)

func TestBuildPlanHDSource(t *testing.T) {
	plan := BuildPlan(probe.Geometry{Width: 1920, Height: 1080})

	if len(plan) != 3 {
		t.Fatalf("Expected 3 renditions, got %d", len(plan))
	}

	expected := []Rendition{
		{Name: TierSuperLow, Width: 1344, Height: 756, BitrateKbps: 4000},
		{Name: TierLower, Width: 1536, Height: 864, BitrateKbps: 1000},
		{Name: TierLow, Width: 1920, Height: 1080, BitrateKbps: 3456},
	}

	for i, want := range expected {
		got := plan[i]
		if got != want {
			t.Errorf("Rendition %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestBuildPlanSDSource(t *testing.T) {
	// 480 tall, not HD: super_low scales at 0.8 and lower at 1.0
	plan := BuildPlan(probe.Geometry{Width: 854, Height: 480})

	if plan[0].Width != 682 {
		t.Errorf("Expected super_low width 682, got %d", plan[0].Width)
	}
	if plan[1].Width != 854 || plan[1].Height != 480 {
		t.Errorf("Expected lower at source size 854x480, got %dx%d", plan[1].Width, plan[1].Height)
	}
	if plan[2].Width != 854 || plan[2].Height != 480 {
		t.Errorf("Expected low at source size 854x480, got %dx%d", plan[2].Width, plan[2].Height)
	}
}

func TestBuildPlanPortraitHDClassification(t *testing.T) {
	// Portrait sources classify HD on width, not height
	plan := BuildPlan(probe.Geometry{Width: 1080, Height: 1920})
	if plan[0].Width != 756 || plan[0].Height != 1344 {
		t.Errorf("Expected HD portrait super_low 756x1344, got %dx%d", plan[0].Width, plan[0].Height)
	}

	// 480-wide portrait is SD even though it is 854 tall
	plan = BuildPlan(probe.Geometry{Width: 480, Height: 854})
	if plan[1].Width != 480 || plan[1].Height != 854 {
		t.Errorf("Expected SD portrait lower at source size 480x854, got %dx%d", plan[1].Width, plan[1].Height)
	}
	if plan[0].Width != 384 || plan[0].Height != 682 {
		t.Errorf("Expected SD portrait super_low 384x682, got %dx%d", plan[0].Width, plan[0].Height)
	}
}

func TestBuildPlanDimensionsAlwaysEven(t *testing.T) {
	sources := []probe.Geometry{
		{Width: 1920, Height: 1080},
		{Width: 853, Height: 480},
		{Width: 480, Height: 854},
		{Width: 1279, Height: 721},
		{Width: 641, Height: 359},
	}

	for _, geom := range sources {
		for _, r := range BuildPlan(geom) {
			if r.Width%2 != 0 || r.Height%2 != 0 {
				t.Errorf("Source %dx%d tier %s: odd dimensions %dx%d",
					geom.Width, geom.Height, r.Name, r.Width, r.Height)
			}
		}
	}
}

func TestBuildPlanOrder(t *testing.T) {
	plan := BuildPlan(probe.Geometry{Width: 1280, Height: 720})
	for i, tier := range Tiers {
		if plan[i].Name != tier {
			t.Errorf("Position %d: expected tier %s, got %s", i, tier, plan[i].Name)
		}
	}
}

func TestBitrateClamping(t *testing.T) {
	// 4K source: every tier tops out at its max
	plan := BuildPlan(probe.Geometry{Width: 3840, Height: 2160})
	maxes := map[Tier]int{TierSuperLow: 10000, TierLower: 3000, TierLow: 6000}
	for _, r := range plan {
		if r.BitrateKbps != maxes[r.Name] {
			t.Errorf("4K tier %s: expected max bitrate %d, got %d", r.Name, maxes[r.Name], r.BitrateKbps)
		}
	}

	// Tiny source: every tier bottoms out at its min
	plan = BuildPlan(probe.Geometry{Width: 320, Height: 180})
	mins := map[Tier]int{TierSuperLow: 4000, TierLower: 1000, TierLow: 2000}
	for _, r := range plan {
		if r.BitrateKbps != mins[r.Name] {
			t.Errorf("Tiny tier %s: expected min bitrate %d, got %d", r.Name, mins[r.Name], r.BitrateKbps)
		}
	}
}

func TestDisplayBox(t *testing.T) {
	// Landscape keeps width, extends height to 16:9
	box := DisplayBox(1344, 756)
	if box.Width != 1344 || box.Height != 756 {
		t.Errorf("Expected 1344x756 unchanged, got %dx%d", box.Width, box.Height)
	}

	// Portrait keeps height, widens to 16:9
	box = DisplayBox(480, 854)
	if box.Width != 1518 || box.Height != 854 {
		t.Errorf("Expected portrait box 1518x854, got %dx%d", box.Width, box.Height)
	}
}

func TestDisplayBoxIdempotent(t *testing.T) {
	dims := [][2]int{
		{1920, 1080},
		{480, 854},
		{682, 384},
		{756, 1344},
		{640, 360},
	}

	for _, d := range dims {
		once := DisplayBox(d[0], d[1])
		twice := DisplayBox(once.Width, once.Height)
		if once != twice {
			t.Errorf("DisplayBox(%d,%d) not idempotent: %+v then %+v", d[0], d[1], once, twice)
		}
		if once.Width%2 != 0 || once.Height%2 != 0 {
			t.Errorf("DisplayBox(%d,%d): odd dimensions %+v", d[0], d[1], once)
		}
	}
}
