package hittest

import (
	"image"
	"testing"

	"github.com/meadori/dualscreen/controller"
	"github.com/meadori/dualscreen/layout"
)

// sampleAt builds a sample that normalises to pixel p in a workspace of the
// reference size.
func sampleAt(p image.Point, contact bool) Sample {
	return Sample{
		X:       Denormalize(p.X, layout.WorkspaceWidth),
		Y:       Denormalize(p.Y, layout.WorkspaceHeight),
		Contact: contact,
	}
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw    int16
		extent int
		want   int
	}{
		{-32767, 1074, 0},
		{-32768, 1074, 0},
		{32767, 1074, 1073},
		{0, 1074, 537},
		{0, 600, 300},
		{32767, 600, 599},
	}

	for _, tt := range tests {
		if got := Normalize(tt.raw, tt.extent); got != tt.want {
			t.Errorf("Normalize(%d, %d): expected %d, but got %d", tt.raw, tt.extent, tt.want, got)
		}
	}
}

func TestDenormalizeRoundTrip(t *testing.T) {
	for _, extent := range []int{layout.WorkspaceWidth, layout.WorkspaceHeight} {
		for p := 0; p < extent; p++ {
			if got := Normalize(Denormalize(p, extent), extent); got != p {
				t.Fatalf("extent %d: expected pixel %d to survive a round trip, but got %d", extent, p, got)
			}
		}
	}
}

func TestNoDataSample(t *testing.T) {
	if _, ok := (Sample{}).Point(100, 100); ok {
		t.Errorf("Expected origin without contact to carry no data")
	}
	if _, ok := (Sample{Contact: true}).Point(100, 100); !ok {
		t.Errorf("Expected origin with contact to carry data")
	}
}

func TestHoldAfterRelease(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)
	target := center(m.HotSpotRect(4))

	// Four ticks of contact then release.
	for i := 0; i < 4; i++ {
		res := e.Tick(m, sampleAt(target, true))
		if res.Word != controller.Key5 {
			t.Errorf("Contact tick %d: expected word 0x%02X, but got 0x%02X", i, controller.Key5, res.Word)
		}
		if st := e.HotSpot(4).State(); st != Contacted {
			t.Errorf("Contact tick %d: expected contacted, but got %v", i, st)
		}
	}

	for i := 0; i < DefaultHoldFrames; i++ {
		res := e.Tick(m, Sample{})
		if res.Word != controller.Key5 {
			t.Errorf("Hold tick %d: expected word 0x%02X, but got 0x%02X", i, controller.Key5, res.Word)
		}
	}

	res := e.Tick(m, Sample{})
	if res.Word != 0 {
		t.Errorf("Expected word 0 after the hold expires, but got 0x%02X", res.Word)
	}
	if st := e.HotSpot(4).State(); st != Idle {
		t.Errorf("Expected idle after the hold expires, but got %v", st)
	}
}

func TestSingleTapHoldsForHoldFrames(t *testing.T) {
	m := layout.New()
	e := New(5)
	target := center(m.HotSpotRect(0))

	seen := 0
	e.Tick(m, sampleAt(target, true))
	seen++
	for i := 0; i < 10; i++ {
		if e.Tick(m, Sample{}).Word != 0 {
			seen++
		}
	}
	if seen != 6 {
		t.Errorf("Expected code on 1 contact tick plus 5 hold ticks, but got %d ticks", seen)
	}
}

func TestRecontactRearms(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)
	target := center(m.HotSpotRect(0))

	e.Tick(m, sampleAt(target, true))
	e.Tick(m, Sample{})
	e.Tick(m, Sample{})
	e.Tick(m, sampleAt(target, true))
	if got := e.HotSpot(0).HoldFrames; got != DefaultHoldFrames {
		t.Errorf("Expected hold re-armed to %d, but got %d", DefaultHoldFrames, got)
	}
}

func TestWordIsOrOfContributors(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)

	e.Tick(m, sampleAt(center(m.HotSpotRect(0)), true))
	res := e.Tick(m, sampleAt(center(m.HotSpotRect(11)), true))

	want := controller.Key1 | controller.KeyEnter
	if res.Word != want {
		t.Errorf("Expected word 0x%02X, but got 0x%02X", want, res.Word)
	}
	if len(res.Active) != 2 || res.Active[0] != 0 || res.Active[1] != 11 {
		t.Errorf("Expected active hotspots [0 11], but got %v", res.Active)
	}
}

func TestGapsProduceNoInput(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)

	// Between the first and second column.
	r := m.HotSpotRect(0)
	gap := image.Pt(r.Max.X+layout.HotSpotGapX/2, r.Min.Y+10)
	if res := e.Tick(m, sampleAt(gap, true)); res.Word != 0 || len(res.Active) != 0 {
		t.Errorf("Expected no input in the gutter, but got word 0x%02X", res.Word)
	}
}

func TestMirroredHitTest(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)
	m.SetMirrored(true)

	// The unmirrored position of hotspot 0 is now the frame pane.
	if res := e.Tick(m, sampleAt(center(m.HotSpots[0].Rect), true)); res.Word != 0 {
		t.Errorf("Expected no input at the authored position when mirrored, but got 0x%02X", res.Word)
	}
	e.Reset()
	if res := e.Tick(m, sampleAt(center(m.HotSpotRect(0)), true)); res.Word != controller.Key1 {
		t.Errorf("Expected 0x%02X at the mirrored position, but got 0x%02X", controller.Key1, res.Word)
	}
}

func TestDoubleMirrorReplaysSamePath(t *testing.T) {
	ref := layout.New()
	at := func(i int) Sample { return sampleAt(center(ref.HotSpotRect(i)), true) }
	path := []Sample{
		at(0), at(0), at(4), at(4), {}, {}, {}, at(11), {}, {}, {}, {},
	}

	run := func(m *layout.Model) []uint16 {
		e := New(DefaultHoldFrames)
		words := make([]uint16, 0, len(path))
		for _, s := range path {
			words = append(words, e.Tick(m, s).Word)
		}
		return words
	}

	want := run(layout.New())
	toggled := layout.New()
	toggled.ToggleMirrored()
	toggled.ToggleMirrored()
	got := run(toggled)

	if len(got) != len(want) {
		t.Fatalf("Expected %d words, but got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tick %d: expected 0x%02X, but got 0x%02X", i, want[i], got[i])
		}
	}
	if want[0] != controller.Key1 || want[len(want)-1] != 0 {
		t.Errorf("Expected the path to start on key 1 and end idle, but got %v", want)
	}
}

func TestButtonEdges(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)
	swap := center(m.ButtonRect(layout.SwapButtonIdx))

	res := e.Tick(m, sampleAt(swap, true))
	if len(res.Edges) != 1 || res.Edges[0] != layout.SwapButtonIdx {
		t.Fatalf("Expected one edge on Swap, but got %v", res.Edges)
	}
	if !res.Pressed[layout.SwapButtonIdx] {
		t.Errorf("Expected Swap pressed")
	}

	// Holding does not fire again.
	for i := 0; i < 3; i++ {
		if res := e.Tick(m, sampleAt(swap, true)); len(res.Edges) != 0 {
			t.Errorf("Hold tick %d: expected no edges, but got %v", i, res.Edges)
		}
	}

	// Release then press fires again.
	if res := e.Tick(m, Sample{}); res.Pressed[layout.SwapButtonIdx] {
		t.Errorf("Expected Swap released")
	}
	if res := e.Tick(m, sampleAt(swap, true)); len(res.Edges) != 1 {
		t.Errorf("Expected a new edge after release, but got %v", res.Edges)
	}
}

func TestDisabledButtonNeverPressed(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)
	menu := center(m.ButtonRect(0))

	res := e.Tick(m, sampleAt(menu, true))
	if res.Pressed[0] || len(res.Edges) != 0 {
		t.Errorf("Expected disabled Menu button never to press, but got %v %v", res.Pressed, res.Edges)
	}
}

func TestReset(t *testing.T) {
	m := layout.New()
	e := New(DefaultHoldFrames)
	e.Tick(m, sampleAt(center(m.HotSpotRect(3)), true))
	e.Reset()
	if res := e.Tick(m, Sample{}); res.Word != 0 {
		t.Errorf("Expected no held input after Reset, but got 0x%02X", res.Word)
	}
}
