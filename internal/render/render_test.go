package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

func testSnapshot() game.Snapshot {
	return game.Snapshot{
		Width:  800,
		Height: 600,
		HUD:    game.HUD{Score: 42, Level: 2, ComboMultiplier: 1},
		Player: game.PlayerSnapshot{X: 400, Y: 300, Radius: 20, State: "idle"},
		Collectibles: []game.EntitySnapshot{
			{X: 600, Y: 450, Radius: 14, Kind: "primary"},
			{X: 200, Y: 450, Radius: 14, Kind: "hazard"},
		},
	}
}

// TestRenderPNG verifies frames encode at the configured size.
func TestRenderPNG(t *testing.T) {
	r := New(config.RenderConfig{Width: 400, Height: 300}, nil)

	var buf bytes.Buffer
	if err := r.RenderPNG(&buf, testSnapshot()); err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("Expected 400x300, got %dx%d", b.Dx(), b.Dy())
	}
}

// TestFrameScalesEntities verifies snapshot coordinates are scaled to the
// frame and drawn in their kind's colour.
func TestFrameScalesEntities(t *testing.T) {
	r := New(config.RenderConfig{Width: 400, Height: 300}, nil)
	img := r.Frame(testSnapshot())

	// Player centre (400,300) lands at (200,150).
	if got := img.RGBAAt(200, 150); got != colorPlayer {
		t.Errorf("Expected player colour at centre, got %v", got)
	}
	// Primary (600,450) lands at (300,225).
	if got := img.RGBAAt(300, 225); got != collectibleColors["primary"] {
		t.Errorf("Expected primary colour, got %v", got)
	}
	// Empty corner away from grid lines and HUD.
	if got := img.RGBAAt(390, 290); got != colorBackground {
		t.Errorf("Expected background colour, got %v", got)
	}
}

// TestFrameIsCopy verifies later renders do not mutate returned frames.
func TestFrameIsCopy(t *testing.T) {
	r := New(config.RenderConfig{Width: 100, Height: 100}, nil)
	snap := testSnapshot()
	first := r.Frame(snap)
	before := first.RGBAAt(50, 50)

	snap.Player.X, snap.Player.Y = 50, 50
	r.Frame(snap)

	if first.RGBAAt(50, 50) != before {
		t.Error("Earlier frame changed after a later render")
	}
}
