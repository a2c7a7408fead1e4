// Package render draws snapshots into PNG frames with gg. It is used by the
// frame endpoint and the headless simulator; the browser client draws its
// own frames from the websocket stream.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
)

var (
	colorBackground = color.RGBA{12, 12, 28, 255}
	colorGrid       = color.RGBA{30, 30, 45, 255}
	colorPlayer     = color.RGBA{0, 212, 255, 255}
	colorShield     = color.RGBA{120, 200, 255, 140}
	colorObstacle   = color.RGBA{110, 110, 130, 255}
	colorShot       = color.RGBA{255, 255, 160, 255}
	colorBossShot   = color.RGBA{255, 90, 60, 255}
	colorBoss       = color.RGBA{200, 40, 90, 255}
	colorHealthBack = color.RGBA{40, 40, 50, 220}
	colorHealth     = color.RGBA{230, 60, 60, 255}
	colorText       = color.RGBA{255, 255, 255, 255}
	colorPanel      = color.RGBA{18, 18, 24, 200}
)

var collectibleColors = map[string]color.RGBA{
	"primary": {255, 200, 40, 255},
	"hazard":  {255, 60, 60, 255},
	"shield":  {90, 170, 255, 255},
	"speed":   {120, 255, 120, 255},
	"magnet":  {200, 120, 255, 255},
	"repel":   {255, 150, 60, 255},
	"ranged":  {255, 255, 255, 255},
}

// Renderer draws snapshots. One gg context is reused under a mutex, so a
// Renderer is safe for concurrent use but renders one frame at a time.
type Renderer struct {
	width  int
	height int
	face   font.Face

	mu sync.Mutex
	dc *gg.Context
}

// New creates a renderer. A font that fails to load falls back to the
// built-in bitmap face.
func New(cfg config.RenderConfig, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}

	var face font.Face = basicfont.Face7x13
	if cfg.FontPath != "" {
		f, err := loadFace(cfg.FontPath, 16)
		if err != nil {
			log.Warn("font load failed, using bitmap font", zap.String("path", cfg.FontPath), zap.Error(err))
		} else {
			face = f
		}
	}

	return &Renderer{
		width:  w,
		height: h,
		face:   face,
		dc:     gg.NewContext(w, h),
	}
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Size returns the frame size in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// RenderPNG draws snap and encodes it as PNG.
func (r *Renderer) RenderPNG(w io.Writer, snap game.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw(snap)
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Frame draws snap and returns a copy of the pixels.
func (r *Renderer) Frame(snap game.Snapshot) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw(snap)
	src := r.dc.Image()
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

func (r *Renderer) draw(snap game.Snapshot) {
	dc := r.dc
	dc.Identity()
	dc.SetColor(colorBackground)
	dc.Clear()

	sx, sy := 1.0, 1.0
	if snap.Width > 0 && snap.Height > 0 {
		sx = float64(r.width) / snap.Width
		sy = float64(r.height) / snap.Height
	}

	dc.Push()
	dc.Scale(sx, sy)
	r.drawGrid(dc, snap.Width, snap.Height)
	r.drawEntities(dc, snap)
	dc.Pop()

	r.drawHUD(dc, snap)
}

func (r *Renderer) drawGrid(dc *gg.Context, w, h float64) {
	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	const step = 100.0
	for x := 0.0; x < w; x += step {
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()
	}
	for y := 0.0; y < h; y += step {
		dc.DrawLine(0, y, w, y)
		dc.Stroke()
	}
}

func (r *Renderer) drawEntities(dc *gg.Context, snap game.Snapshot) {
	for _, o := range snap.Obstacles {
		dc.Push()
		dc.RotateAbout(o.Rotation, o.X, o.Y)
		dc.SetColor(colorObstacle)
		dc.DrawRectangle(o.X-o.Radius, o.Y-o.Radius, o.Radius*2, o.Radius*2)
		dc.Fill()
		dc.Pop()
	}

	for _, c := range snap.Collectibles {
		col, ok := collectibleColors[c.Kind]
		if !ok {
			col = colorText
		}
		dc.SetColor(col)
		if c.Kind == "hazard" {
			drawSpiky(dc, c.X, c.Y, c.Radius, c.Rotation)
		} else {
			dc.DrawCircle(c.X, c.Y, c.Radius)
		}
		dc.Fill()
	}

	for _, p := range snap.Particles {
		a := uint8(math.Round(clamp01(p.Alpha) * 255))
		col := collectibleColors["primary"]
		dc.SetColor(color.RGBA{col.R, col.G, col.B, a})
		dc.DrawCircle(p.X, p.Y, p.Radius)
		dc.Fill()
	}

	dc.SetColor(colorShot)
	for _, s := range snap.Shots {
		dc.DrawCircle(s.X, s.Y, s.Radius)
		dc.Fill()
	}
	dc.SetColor(colorBossShot)
	for _, s := range snap.BossShots {
		dc.DrawCircle(s.X, s.Y, s.Radius)
		dc.Fill()
	}

	for _, c := range snap.Clones {
		a := uint8(math.Round(clamp01(c.Alpha) * 180))
		dc.SetColor(color.RGBA{colorPlayer.R, colorPlayer.G, colorPlayer.B, a})
		dc.DrawCircle(c.X, c.Y, c.Radius)
		dc.Fill()
	}

	if b := snap.Boss; b != nil {
		dc.SetColor(colorBoss)
		dc.DrawCircle(b.X, b.Y, b.Radius)
		dc.Fill()
		if b.Invulnerable {
			dc.SetColor(colorText)
			dc.SetLineWidth(2)
			dc.DrawCircle(b.X, b.Y, b.Radius+3)
			dc.Stroke()
		}
	}

	p := snap.Player
	dc.SetColor(colorPlayer)
	dc.DrawCircle(p.X, p.Y, p.Radius)
	dc.Fill()
	if p.Shielded {
		dc.SetColor(colorShield)
		dc.SetLineWidth(3)
		dc.DrawCircle(p.X, p.Y, p.Radius+6)
		dc.Stroke()
	}
}

func drawSpiky(dc *gg.Context, x, y, r, rot float64) {
	const points = 8
	for i := 0; i < points*2; i++ {
		rr := r
		if i%2 == 1 {
			rr = r * 0.55
		}
		a := rot + float64(i)*math.Pi/points
		px, py := x+math.Cos(a)*rr, y+math.Sin(a)*rr
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.ClosePath()
}

func (r *Renderer) drawHUD(dc *gg.Context, snap game.Snapshot) {
	dc.SetFontFace(r.face)
	h := snap.HUD

	dc.SetColor(colorPanel)
	dc.DrawRoundedRectangle(8, 8, 220, 76, 6)
	dc.Fill()

	dc.SetColor(colorText)
	dc.DrawString(fmt.Sprintf("SCORE %d", h.Score), 18, 28)
	dc.DrawString(fmt.Sprintf("LEVEL %d  x%d", h.Level, h.ComboMultiplier), 18, 48)
	dc.DrawString(fmt.Sprintf("BEST %d", max(h.HighScore, h.Score)), 18, 68)

	if b := snap.Boss; b != nil {
		w := float64(r.width) * 0.5
		x := (float64(r.width) - w) / 2
		dc.SetColor(colorHealthBack)
		dc.DrawRectangle(x, 12, w, 10)
		dc.Fill()
		dc.SetColor(colorHealth)
		dc.DrawRectangle(x, 12, w*clamp01(b.HealthPct/100), 10)
		dc.Fill()
		dc.SetColor(colorText)
		dc.DrawStringAnchored(b.Name, float64(r.width)/2, 36, 0.5, 0.5)
	}

	switch {
	case h.Over:
		dc.DrawStringAnchored("GAME OVER", float64(r.width)/2, float64(r.height)/2, 0.5, 0.5)
	case h.Paused:
		dc.DrawStringAnchored("PAUSED", float64(r.width)/2, float64(r.height)/2, 0.5, 0.5)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
