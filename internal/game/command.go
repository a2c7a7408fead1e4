package game

import "go.uber.org/zap"

// Input is the per-tick player intent. MoveX and MoveY are in [-1,1].
// Fire and Ability are edge-triggered: once queued they stay set until the
// next tick consumes them.
type Input struct {
	MoveX   float64 `json:"moveX"`
	MoveY   float64 `json:"moveY"`
	Fire    bool    `json:"fire,omitempty"`
	Ability bool    `json:"ability,omitempty"`
}

// CommandKind enumerates messages accepted by the engine's command queue.
type CommandKind uint8

const (
	CmdInput CommandKind = iota
	CmdPause
	CmdResume
	CmdRestart
	CmdSelectCharacter
)

func (k CommandKind) String() string {
	switch k {
	case CmdInput:
		return "input"
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdRestart:
		return "restart"
	case CmdSelectCharacter:
		return "select_character"
	default:
		return "unknown"
	}
}

// Command is a message from any goroutine to the tick goroutine.
type Command struct {
	Kind      CommandKind
	Input     Input
	Character string
}

// Enqueue submits cmd from any goroutine. It returns false when the queue
// is full; the command is dropped.
func (e *Engine) Enqueue(cmd Command) bool {
	if e.commands.TryPush(cmd) {
		return true
	}
	e.commandsDropped.Add(1)
	return false
}

// drainCommands applies every queued command. ts is the timestamp of the
// tick about to run, used to re-anchor the clock on resume.
func (e *Engine) drainCommands(ts float64) {
	n := e.commands.DrainTo(e.cmdBuf)
	for i := 0; i < n; i++ {
		e.apply(e.cmdBuf[i], ts)
		e.cmdBuf[i] = Command{}
	}
}

func (e *Engine) apply(cmd Command, ts float64) {
	switch cmd.Kind {
	case CmdInput:
		e.held.MoveX = clampUnit(cmd.Input.MoveX)
		e.held.MoveY = clampUnit(cmd.Input.MoveY)
		e.held.Fire = e.held.Fire || cmd.Input.Fire
		e.held.Ability = e.held.Ability || cmd.Input.Ability

	case CmdPause:
		e.Pause()

	case CmdResume:
		e.Resume(ts)

	case CmdRestart:
		e.restart()

	case CmdSelectCharacter:
		if !e.selectCharacter(cmd.Character) {
			e.log.Debug("character selection rejected",
				zap.String("session", e.sessionID),
				zap.String("character", cmd.Character))
		}
	}
}
