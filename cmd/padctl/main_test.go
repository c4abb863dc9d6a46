package main

import (
	"image"
	"testing"

	"github.com/meadori/dualscreen/controller"
	"github.com/meadori/dualscreen/layout"
	"github.com/meadori/dualscreen/server"
)

func TestTargetHotSpot(t *testing.T) {
	m := layout.New()
	pt, err := target(m, []string{"1"})
	if err != nil {
		t.Fatal(err)
	}
	if !pt.In(m.HotSpotRect(0)) {
		t.Errorf("Expected %v inside hotspot 1 at %v", pt, m.HotSpotRect(0))
	}

	m.SetMirrored(true)
	pt, err = target(m, []string{"12"})
	if err != nil {
		t.Fatal(err)
	}
	if !pt.In(m.HotSpotRect(11)) {
		t.Errorf("Expected %v inside mirrored hotspot 12 at %v", pt, m.HotSpotRect(11))
	}
}

func TestTargetPixelAndErrors(t *testing.T) {
	m := layout.New()
	pt, err := target(m, []string{"10", "20"})
	if err != nil || pt != image.Pt(10, 20) {
		t.Errorf("Expected (10,20), but got %v (%v)", pt, err)
	}
	for _, args := range [][]string{{"0"}, {"13"}, {"a"}, {"1", "b"}, {}} {
		if _, err := target(m, args); err == nil {
			t.Errorf("Expected an error for %v", args)
		}
	}
}

func TestKeypadWord(t *testing.T) {
	word, err := keypadWord("1]")
	if err != nil {
		t.Fatal(err)
	}
	if word != controller.Key1|controller.KeyEnter {
		t.Errorf("Expected 0x%02X, but got 0x%02X", controller.Key1|controller.KeyEnter, word)
	}
	if word, _ := keypadWord(""); word != 0 {
		t.Errorf("Expected an empty word, but got 0x%02X", word)
	}
	if _, err := keypadWord("x"); err == nil {
		t.Errorf("Expected an error for a non-keypad key")
	}
}

func TestLocalLayoutFollowsRemoteBackground(t *testing.T) {
	remote := layout.New()
	remote.Rebuild(300)
	remote.SetMirrored(true)

	m := localLayout(server.State{Mirrored: true, BackgroundWidth: 300})
	pt, err := target(m, []string{"1"})
	if err != nil {
		t.Fatal(err)
	}
	if !pt.In(remote.HotSpotRect(0)) {
		t.Errorf("Expected %v inside the remote hotspot 1 at %v", pt, remote.HotSpotRect(0))
	}
	if m.HotSpotRect(0) != remote.HotSpotRect(0) {
		t.Errorf("Expected local hotspot %v to match remote %v", m.HotSpotRect(0), remote.HotSpotRect(0))
	}
}
