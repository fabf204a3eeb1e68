package overlay

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/state"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

// Config describes the overlay window.
type Config struct {
	Title  string
	Width  int
	Height int
	Logger *slog.Logger
}

// Game implements ebiten.Game for the overlay.
type Game struct {
	ctx     context.Context
	windows platform.Backend
	shared  *state.Shared
	panel   *Panel
	logger  *slog.Logger

	clipboardOnce sync.Once
	clipboardOK   bool
}

// New creates the overlay game. It stops at the first frame after ctx is done.
func New(ctx context.Context, cfg Config, windows platform.Backend, shared *state.Shared) *Game {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		ctx:     ctx,
		windows: windows,
		shared:  shared,
		panel:   NewPanel(shared),
		logger:  logger,
	}
}

// Run opens the overlay window and blocks until ctx is done or the window is
// closed. It must be called from the main goroutine.
func Run(ctx context.Context, cfg Config, windows platform.Backend, shared *state.Shared) error {
	g := New(ctx, cfg, windows, shared)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetRunnableOnUnfocused(true)

	return ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		ScreenTransparent: true,
	})
}

// Update resolves the overlay handle until it is known and applies panel
// input.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.resolveOverlay()
	g.handleInput()
	return nil
}

// resolveOverlay stores this process's active window as the overlay handle.
// A zero result means the window is not mapped yet; retry next frame.
func (g *Game) resolveOverlay() {
	if g.shared.Overlay.Get() != 0 {
		return
	}
	id, err := g.windows.ActiveWindow()
	if err != nil {
		g.logger.Debug("overlay window lookup failed", "error", err)
		return
	}
	if id == 0 {
		return
	}
	if err := g.windows.PrepareOverlay(id); err != nil {
		g.logger.Warn("failed to prepare overlay window", "window", id, "error", err)
	}
	if g.shared.Overlay.Set(id) {
		g.logger.Info("overlay window resolved", "window", id)
	}
}

func (g *Game) handleInput() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.panel.Click(ebiten.CursorPosition())
	}
	if !g.panel.Editing() {
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.panel.Blur()
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) || inpututil.IsKeyJustPressed(ebiten.KeyDelete) {
		g.panel.Erase()
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl {
		if inpututil.IsKeyJustPressed(ebiten.KeyV) {
			g.paste()
		}
		return
	}
	g.panel.Type(ebiten.AppendInputChars(nil))
}

func (g *Game) paste() {
	g.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			g.logger.Warn("clipboard unavailable", "error", err)
			return
		}
		g.clipboardOK = true
	})
	if !g.clipboardOK {
		return
	}
	if !g.panel.Paste(clipboard.Read(clipboard.FmtText)) {
		g.logger.Debug("ignored clipboard paste: not a single letter or digit")
	}
}

var (
	panelColor   = color.RGBA{16, 16, 20, 200}
	boxColor     = color.RGBA{60, 60, 68, 255}
	checkedColor = color.RGBA{0, 220, 90, 255}
	labelColor   = color.RGBA{220, 220, 220, 255}
	fieldColor   = color.RGBA{36, 36, 44, 255}
	focusColor   = color.RGBA{90, 150, 255, 255}
	statusColor  = color.RGBA{150, 150, 160, 255}
)

// Draw renders the panel on an otherwise transparent screen.
func (g *Game) Draw(screen *ebiten.Image) {
	fill(screen, g.panel.Bounds(), panelColor)

	face := basicfont.Face7x13
	for _, t := range g.panel.rows() {
		fill(screen, t.box, boxColor)
		if t.flag.Get() {
			fill(screen, Rect{X: t.box.X + 3, Y: t.box.Y + 3, W: t.box.W - 6, H: t.box.H - 6}, checkedColor)
		}
		text.Draw(screen, t.label, face, t.box.X+t.box.W+labelGap, t.box.Y+t.box.H-3, labelColor)
	}

	field := g.panel.field
	if g.panel.Editing() {
		fill(screen, Rect{X: field.X - 1, Y: field.Y - 1, W: field.W + 2, H: field.H + 2}, focusColor)
	}
	fill(screen, field, fieldColor)
	if s := g.panel.FieldText(); s != "" {
		w := text.BoundString(face, s).Dx()
		text.Draw(screen, s, face, field.X+(field.W-w)/2, field.Y+field.H-6, labelColor)
	}

	status := g.panel.status
	text.Draw(screen, g.panel.StatusText(), face, status.X, status.Y+status.H-3, statusColor)
}

// Layout keeps one screen pixel per window pixel as the tracker resizes the
// window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func fill(dst *ebiten.Image, r Rect, c color.Color) {
	sub := dst.SubImage(image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H))
	if img, ok := sub.(*ebiten.Image); ok {
		img.Fill(c)
	}
}
