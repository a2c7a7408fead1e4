// Package data loads the static game tables (boss archetypes and
// characters) from YAML. Built-in tables are embedded; a directory on disk
// may override them.
package data

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

//go:embed tables/*.yaml
var builtin embed.FS

const (
	bossFile      = "bosses.yaml"
	characterFile = "characters.yaml"
)

// BossPhase is one attack regime as written in YAML.
type BossPhase struct {
	IntervalMs  float64 `yaml:"interval_ms"`
	Bullets     int     `yaml:"bullets"`
	BulletSpeed float64 `yaml:"bullet_speed"`
	SpreadDeg   float64 `yaml:"spread_deg"`
}

// BossTemplate is a boss archetype as written in YAML.
type BossTemplate struct {
	Name         string      `yaml:"name"`
	Pattern      string      `yaml:"pattern"`
	MaxHealth    int         `yaml:"max_health"`
	Radius       float64     `yaml:"radius"`
	Speed        float64     `yaml:"speed"`
	MaxAttacks   int         `yaml:"max_attacks"`
	ExitReward   int         `yaml:"exit_reward"`
	DefeatReward int         `yaml:"defeat_reward"`
	Phases       []BossPhase `yaml:"phases"`
}

// CharacterTemplate is a character as written in YAML.
type CharacterTemplate struct {
	Key              string  `yaml:"key"`
	Name             string  `yaml:"name"`
	Price            int     `yaml:"price"`
	ScoreMultiplier  float64 `yaml:"score_multiplier"`
	RewardMultiplier float64 `yaml:"reward_multiplier"`
	SpeedScale       float64 `yaml:"speed_scale"`
}

type bossListFile struct {
	Bosses []BossTemplate `yaml:"bosses"`
}

type characterListFile struct {
	Characters []CharacterTemplate `yaml:"characters"`
}

// Tables holds every static table the engine needs.
type Tables struct {
	Bosses     []game.BossArchetype
	Characters []game.Character
}

// Load reads the tables from dir. Files missing from dir fall back to the
// embedded defaults; an empty dir uses the defaults only.
func Load(dir string) (*Tables, error) {
	bossData, err := readTable(dir, bossFile)
	if err != nil {
		return nil, err
	}
	charData, err := readTable(dir, characterFile)
	if err != nil {
		return nil, err
	}

	bosses, err := ParseBosses(bossData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", bossFile, err)
	}
	chars, err := ParseCharacters(charData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", characterFile, err)
	}
	return &Tables{Bosses: bosses, Characters: chars}, nil
}

// Builtin returns the embedded tables. They are validated by tests, so a
// failure here is a build defect.
func Builtin() *Tables {
	t, err := Load("")
	if err != nil {
		panic(err)
	}
	return t
}

func readTable(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}
	data, err := builtin.ReadFile("tables/" + name)
	if err != nil {
		return nil, fmt.Errorf("read builtin %s: %w", name, err)
	}
	return data, nil
}

// ParseBosses decodes and validates a boss list.
func ParseBosses(raw []byte) ([]game.BossArchetype, error) {
	var f bossListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	out := make([]game.BossArchetype, 0, len(f.Bosses))
	for i, b := range f.Bosses {
		arch, err := b.archetype()
		if err != nil {
			return nil, fmt.Errorf("boss %d (%s): %w", i, b.Name, err)
		}
		out = append(out, arch)
	}
	return out, nil
}

func (b BossTemplate) archetype() (game.BossArchetype, error) {
	pattern := game.BossPattern(b.Pattern)
	switch {
	case b.Name == "":
		return game.BossArchetype{}, fmt.Errorf("missing name")
	case pattern != game.PatternRadial && pattern != game.PatternFan:
		return game.BossArchetype{}, fmt.Errorf("unknown pattern %q", b.Pattern)
	case b.MaxHealth <= 0:
		return game.BossArchetype{}, fmt.Errorf("max_health must be positive")
	case b.Radius <= 0:
		return game.BossArchetype{}, fmt.Errorf("radius must be positive")
	case b.Speed <= 0:
		return game.BossArchetype{}, fmt.Errorf("speed must be positive")
	case b.MaxAttacks <= 0:
		return game.BossArchetype{}, fmt.Errorf("max_attacks must be positive")
	case len(b.Phases) != 2:
		return game.BossArchetype{}, fmt.Errorf("expected 2 phases, got %d", len(b.Phases))
	}

	arch := game.BossArchetype{
		Name:         b.Name,
		Pattern:      pattern,
		MaxHealth:    b.MaxHealth,
		Radius:       b.Radius,
		Speed:        b.Speed,
		MaxAttacks:   b.MaxAttacks,
		ExitReward:   b.ExitReward,
		DefeatReward: b.DefeatReward,
	}
	for i, p := range b.Phases {
		if p.IntervalMs <= 0 {
			return game.BossArchetype{}, fmt.Errorf("phase %d: interval_ms must be positive", i+1)
		}
		arch.Phases[i] = game.BossPhaseSpec{
			IntervalMs:  p.IntervalMs,
			Bullets:     p.Bullets,
			BulletSpeed: p.BulletSpeed,
			SpreadDeg:   p.SpreadDeg,
		}
	}
	return arch, nil
}

// ParseCharacters decodes and validates a character list. Keys must be
// unique and at least one character must be free.
func ParseCharacters(raw []byte) ([]game.Character, error) {
	var f characterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(f.Characters))
	free := false
	out := make([]game.Character, 0, len(f.Characters))
	for _, c := range f.Characters {
		if c.Key == "" {
			return nil, fmt.Errorf("character %q: missing key", c.Name)
		}
		if seen[c.Key] {
			return nil, fmt.Errorf("character %q: duplicate key", c.Key)
		}
		if c.Price < 0 {
			return nil, fmt.Errorf("character %q: negative price", c.Key)
		}
		seen[c.Key] = true
		free = free || c.Price == 0
		out = append(out, game.Character{
			Key:              c.Key,
			Name:             c.Name,
			Price:            c.Price,
			ScoreMultiplier:  c.ScoreMultiplier,
			RewardMultiplier: c.RewardMultiplier,
			SpeedScale:       c.SpeedScale,
		})
	}
	if len(out) > 0 && !free {
		return nil, fmt.Errorf("no free character")
	}
	return out, nil
}
