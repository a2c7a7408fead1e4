package game

// Character is a selectable player skin with its gameplay modifiers.
type Character struct {
	Key              string
	Name             string
	Price            int // Zero means available to everyone
	ScoreMultiplier  float64
	RewardMultiplier float64
	SpeedScale       float64
}

// DefaultCharacter is used when no character table is supplied.
var DefaultCharacter = Character{
	Key:              "classic",
	Name:             "Classic",
	ScoreMultiplier:  1,
	RewardMultiplier: 1,
	SpeedScale:       1,
}

// Unlocked reports whether p may play c.
func (c Character) Unlocked(p Profile) bool {
	return c.Price == 0 || p.Owns(c.Key)
}

func findCharacter(chars []Character, key string) (Character, bool) {
	for _, c := range chars {
		if c.Key == key {
			return c, true
		}
	}
	return Character{}, false
}

// applyCharacter copies c's multipliers into the run state.
func (s *GameState) applyCharacter(c Character) {
	s.ScoreMultiplier = nonZero(c.ScoreMultiplier)
	s.RewardMultiplier = nonZero(c.RewardMultiplier)
	s.hudDirty = true
}

func nonZero(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
