package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

// TestBuiltinTables verifies the embedded tables parse and are usable.
func TestBuiltinTables(t *testing.T) {
	tables := Builtin()

	if len(tables.Bosses) == 0 {
		t.Fatal("Expected built-in bosses")
	}
	for _, b := range tables.Bosses {
		if b.Phases[1].IntervalMs >= b.Phases[0].IntervalMs {
			t.Errorf("%s: phase 2 should attack faster than phase 1", b.Name)
		}
		if b.Phases[1].Bullets <= b.Phases[0].Bullets {
			t.Errorf("%s: phase 2 should fire more bullets than phase 1", b.Name)
		}
		if b.Pattern == game.PatternFan && b.Phases[1].SpreadDeg >= b.Phases[0].SpreadDeg {
			t.Errorf("%s: phase 2 fan should be tighter than phase 1", b.Name)
		}
	}

	if len(tables.Characters) == 0 || tables.Characters[0].Key != "classic" {
		t.Fatalf("Expected classic first, got %+v", tables.Characters)
	}
	if !tables.Characters[0].Unlocked(game.Profile{}) {
		t.Error("Classic should be free")
	}
}

// TestParseBossesRejects verifies invalid archetypes are reported.
func TestParseBossesRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown pattern", `
bosses:
  - {name: X, pattern: spiral, max_health: 1, radius: 1, max_attacks: 1, phases: [{interval_ms: 1}, {interval_ms: 1}]}`, "unknown pattern"},
		{"one phase", `
bosses:
  - {name: X, pattern: fan, max_health: 1, radius: 1, speed: 1, max_attacks: 1, phases: [{interval_ms: 1}]}`, "expected 2 phases"},
		{"zero health", `
bosses:
  - {name: X, pattern: fan, radius: 1, max_attacks: 1, phases: [{interval_ms: 1}, {interval_ms: 1}]}`, "max_health"},
		{"zero speed", `
bosses:
  - {name: X, pattern: radial, max_health: 1, radius: 1, max_attacks: 1, phases: [{interval_ms: 1}, {interval_ms: 1}]}`, "speed must be positive"},
		{"negative speed", `
bosses:
  - {name: X, pattern: radial, max_health: 1, radius: 1, speed: -2, max_attacks: 1, phases: [{interval_ms: 1}, {interval_ms: 1}]}`, "speed must be positive"},
		{"bad interval", `
bosses:
  - {name: X, pattern: fan, max_health: 1, radius: 1, speed: 1, max_attacks: 1, phases: [{interval_ms: 1}, {interval_ms: 0}]}`, "phase 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBosses([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// TestParseCharactersRejects verifies duplicate keys and all-paid tables fail.
func TestParseCharactersRejects(t *testing.T) {
	dup := `
characters:
  - {key: a, price: 0}
  - {key: a, price: 10}`
	if _, err := ParseCharacters([]byte(dup)); err == nil {
		t.Error("Expected duplicate key error")
	}

	paid := `
characters:
  - {key: a, price: 10}`
	if _, err := ParseCharacters([]byte(paid)); err == nil {
		t.Error("Expected no-free-character error")
	}
}

// TestLoadOverride verifies a directory table replaces the built-in one
// while missing files fall back.
func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	custom := `
characters:
  - {key: solo, name: Solo, price: 0, score_multiplier: 3}`
	if err := os.WriteFile(filepath.Join(dir, characterFile), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	tables, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tables.Characters) != 1 || tables.Characters[0].ScoreMultiplier != 3 {
		t.Errorf("Expected override, got %+v", tables.Characters)
	}
	if len(tables.Bosses) != len(Builtin().Bosses) {
		t.Error("Expected built-in bosses when the file is missing")
	}
}
