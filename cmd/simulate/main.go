// Command simulate runs one session headless with a scripted pilot. It
// steps the engine on a fixed timestep as fast as possible, logs the HUD,
// and writes the final frame as a PNG. Runs with the same seed and
// duration are reproducible.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/data"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
	"github.com/hungerium/hungeriumm-sub001/internal/render"
)

type options struct {
	configPath string
	seed       int64
	seconds    float64
	player     string
	character  string
	owned      string
	highScore  int
	out        string
	every      float64
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a TOML config file")
	flag.Int64Var(&opts.seed, "seed", 1, "RNG seed")
	flag.Float64Var(&opts.seconds, "seconds", 60, "simulated seconds to run")
	flag.StringVar(&opts.player, "player", "simulator", "player id")
	flag.StringVar(&opts.character, "character", "", "character key to select")
	flag.StringVar(&opts.owned, "own", "", "character key the profile owns")
	flag.IntVar(&opts.highScore, "high-score", 0, "starting high score")
	flag.StringVar(&opts.out, "out", "frame.png", "final frame path; empty skips rendering")
	flag.Float64Var(&opts.every, "every", 5, "simulated seconds between HUD log lines")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg.Logging.Level)
	defer log.Sync()

	if err := simulate(cfg, opts, log); err != nil {
		log.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func simulate(cfg config.AppConfig, opts options, log *zap.Logger) error {
	tables, err := data.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	profile := game.Profile{
		PlayerID:          opts.player,
		HighScore:         opts.highScore,
		SelectedCharacter: opts.character,
	}
	if opts.owned != "" {
		profile.OwnedCharacters = []string{opts.owned}
	}

	t := &tally{}
	e := game.NewEngine(game.Options{
		Config:        cfg.Sim,
		Logger:        log.Named("engine"),
		Collaborators: game.Collaborators{Score: t, VFX: t, Audio: t, Profile: t},
		Profile:       profile,
		Archetypes:    tables.Bosses,
		Characters:    tables.Characters,
		Seed:          opts.seed,
		SessionID:     "simulate",
	})

	dt := 1000.0 / float64(cfg.Sim.TickRate)
	total := opts.seconds * 1000
	nextLog := opts.every * 1000
	restarted := false
	for ts := 0.0; ts <= total; ts += dt {
		if snap, ok := e.Snapshot(); ok {
			if snap.HUD.Over && !restarted {
				log.Info("game over, restarting once", zap.Int("score", snap.HUD.Score))
				e.Enqueue(game.Command{Kind: game.CmdRestart})
				restarted = true
			}
			e.Enqueue(game.Command{Kind: game.CmdInput, Input: pilot(snap)})
		}
		e.Step(ts)

		if opts.every > 0 && ts >= nextLog {
			nextLog += opts.every * 1000
			h := t.hud
			log.Info("hud",
				zap.Float64("t", ts/1000),
				zap.Int("score", h.Score),
				zap.Int("level", h.Level),
				zap.Int("combo", h.Combo),
				zap.Int("rewards", h.PendingRewards),
				zap.Bool("over", h.Over))
		}
	}
	e.Checkpoint()

	st := e.Stats()
	log.Info("simulation finished",
		zap.Uint64("ticks", st.Ticks),
		zap.Uint64("pickups", st.Pickups),
		zap.Uint64("hazards_shot", st.HazardsShot),
		zap.Uint64("bosses_retired", st.BossesRetired),
		zap.Uint64("game_overs", st.GameOvers),
		zap.Int("bursts", t.bursts),
		zap.Int("sounds", t.sounds),
		zap.Int("high_score", t.saved.HighScore),
		zap.Int("pending_rewards", t.saved.PendingRewards))

	if opts.out == "" {
		return nil
	}
	snap, ok := e.Snapshot()
	if !ok {
		return errors.New("no snapshot to render")
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	defer f.Close()
	if err := render.New(cfg.Render, log.Named("render")).RenderPNG(f, snap); err != nil {
		return err
	}
	log.Info("frame written", zap.String("path", opts.out))
	return nil
}

// pilot steers toward the nearest primary collectible and away from close
// hazards, firing whenever a hazard or boss is on screen.
func pilot(snap game.Snapshot) game.Input {
	p := snap.Player
	var in game.Input

	best := math.MaxFloat64
	var tx, ty float64
	for _, c := range snap.Collectibles {
		dx, dy := c.X-p.X, c.Y-p.Y
		d := math.Hypot(dx, dy)
		if d == 0 {
			continue
		}
		switch c.Kind {
		case "hazard":
			in.Fire = true
			if d < 120 {
				in.MoveX -= dx / d * 2
				in.MoveY -= dy / d * 2
			}
		case "primary":
			if d < best {
				best = d
				tx, ty = dx/d, dy/d
			}
		}
	}
	in.MoveX += tx
	in.MoveY += ty
	if snap.Boss != nil {
		in.Fire = true
		in.Ability = snap.HUD.AbilityReady
	}

	if n := math.Hypot(in.MoveX, in.MoveY); n > 1 {
		in.MoveX /= n
		in.MoveY /= n
	}
	return in
}

// tally counts presentation outputs and keeps the last HUD and profile.
type tally struct {
	hud    game.HUD
	saved  game.Profile
	bursts int
	sounds int
}

func (t *tally) UpdateHUD(h game.HUD) { t.hud = h }
func (t *tally) UpdateBossHUD(game.BossHUD) {}
func (t *tally) ParticleBurst(_, _ float64, _ game.Effect, _ float64) { t.bursts++ }
func (t *tally) PlaySound(string) { t.sounds++ }
func (t *tally) SaveProfile(p game.Profile) { t.saved = p }

func newLogger(level string) *zap.Logger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	zapCfg.EncoderConfig.ConsoleSeparator = "  "
	zapCfg.DisableCaller = true
	zapCfg.DisableStacktrace = true
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
