package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType classifies entries in the event log.
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeRunStart
	EventTypePickup
	EventTypePowerUp
	EventTypeLevelUp
	EventTypeAbility
	EventTypeBossSpawn
	EventTypeBossPhase
	EventTypeBossRetired
	EventTypeGameOver
)

// EventVersion is bumped when payload shapes change.
const EventVersion uint8 = 1

var eventTypeNames = [...]string{
	EventTypeUnknown:     "unknown",
	EventTypeRunStart:    "run_start",
	EventTypePickup:      "pickup",
	EventTypePowerUp:     "powerup",
	EventTypeLevelUp:     "level_up",
	EventTypeAbility:     "ability",
	EventTypeBossSpawn:   "boss_spawn",
	EventTypeBossPhase:   "boss_phase",
	EventTypeBossRetired: "boss_retired",
	EventTypeGameOver:    "game_over",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// MarshalText writes the event type by name.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (t *EventType) UnmarshalText(b []byte) error {
	for i, name := range eventTypeNames {
		if name == string(b) {
			*t = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", b)
}

// Event is one append-only log record.
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`
	Tick      uint64          `json:"tick"`
	SimMs     float64         `json:"simMs"`
	SessionID string          `json:"sessionId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// RunStartPayload opens a run.
type RunStartPayload struct {
	PlayerID  string `json:"playerId"`
	Character string `json:"character"`
	Seed      int64  `json:"seed"`
}

// PickupPayload records a collectible pickup.
type PickupPayload struct {
	Kind  string `json:"kind"`
	Delta int    `json:"delta,omitempty"`
	Score int    `json:"score"`
	Combo int    `json:"combo"`
}

// LevelPayload records a level change.
type LevelPayload struct {
	Level int `json:"level"`
	Score int `json:"score"`
}

// AbilityPayload records an ability activation.
type AbilityPayload struct {
	Clones     int     `json:"clones"`
	DurationMs float64 `json:"durationMs"`
}

// BossPayload records boss lifecycle changes.
type BossPayload struct {
	Name    string `json:"name"`
	Phase   int    `json:"phase"`
	Health  int    `json:"health"`
	Outcome string `json:"outcome,omitempty"`
	Reward  int    `json:"reward,omitempty"`
}

// GameOverPayload closes a run.
type GameOverPayload struct {
	Cause     string `json:"cause"`
	Score     int    `json:"score"`
	Level     int    `json:"level"`
	Primaries int    `json:"primaries"`
}

// EncodePayload marshals a payload, returning nil on failure.
func EncodePayload(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates an event stamped with the wall clock.
func NewEvent(eventType EventType, sessionID string, tick uint64, simMs float64, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Tick:      tick,
		SimMs:     simMs,
		SessionID: sessionID,
		Payload:   EncodePayload(payload),
	}
}
