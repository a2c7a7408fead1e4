package game

import (
	"testing"

	"pgregory.net/rapid"
)

// TestOverlapsTolerance verifies the squared-distance test with tolerance.
func TestOverlapsTolerance(t *testing.T) {
	tests := []struct {
		name string
		dist float64
		want bool
	}{
		{"concentric", 0, true},
		{"deep overlap", 15, true},
		{"shallow overlap below tolerance", 18, false},
		{"edge contact", 20, false},
		{"apart", 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(0, 0, 10, tt.dist, 0, 10, 0.64)
			if got != tt.want {
				t.Errorf("Overlaps at distance %v: expected %v, got %v", tt.dist, tt.want, got)
			}
		})
	}
}

// TestOverlapsSymmetric verifies argument order never changes the result.
func TestOverlapsSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		coord := rapid.Float64Range(-1000, 1000)
		radius := rapid.Float64Range(0, 100)
		ax, ay, ar := coord.Draw(t, "ax"), coord.Draw(t, "ay"), radius.Draw(t, "ar")
		bx, by, br := coord.Draw(t, "bx"), coord.Draw(t, "by"), radius.Draw(t, "br")
		tol := rapid.Float64Range(0.1, 1).Draw(t, "tol")

		if Overlaps(ax, ay, ar, bx, by, br, tol) != Overlaps(bx, by, br, ax, ay, ar, tol) {
			t.Fatalf("asymmetric result for (%v,%v,%v) vs (%v,%v,%v)", ax, ay, ar, bx, by, br)
		}
	})
}

// TestDepthScale verifies the radius grows toward the bottom of the field.
func TestDepthScale(t *testing.T) {
	if got := DepthScale(0, 600, 0.75, 1.15); got != 0.75 {
		t.Errorf("Expected 0.75 at the top, got %v", got)
	}
	if got := DepthScale(600, 600, 0.75, 1.15); got != 1.15 {
		t.Errorf("Expected 1.15 at the bottom, got %v", got)
	}
	if got := DepthScale(-50, 600, 0.75, 1.15); got != 0.75 {
		t.Errorf("Expected clamp above the field, got %v", got)
	}
}
