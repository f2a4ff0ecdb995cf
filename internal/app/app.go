package app

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"unicode/utf8"

	"orbit/internal/controls"
	"orbit/internal/frameloop"
	"orbit/internal/render"
	"orbit/internal/scene"
	"orbit/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/sqweek/dialog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type fontKey struct {
	size  int
	mono  bool
	scale int
}

type fontBank struct {
	regular *opentype.Font
	mono    *opentype.Font
	cache   map[fontKey]font.Face
}

func newFontBank() fontBank {
	bank := fontBank{cache: map[fontKey]font.Face{}}
	reg, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return bank
	}
	mono, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return bank
	}
	bank.regular = reg
	bank.mono = mono
	return bank
}

type WindowOptions struct {
	Title     string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	TPS       int
}

// App hosts a Runtime in an ebiten window. Layout supplies the logical size
// and the monitor's device scale factor supplies the density; Draw runs the
// queued frame callbacks and shows the backing store with the debug panel on
// top.
type App struct {
	rt    *Runtime
	opts  WindowOptions
	theme ui.Theme

	field  *controls.Field
	panel  ui.PanelLayout
	chrome *render.FrameBuffer

	chromeImg *ebiten.Image
	sceneImg  *ebiten.Image

	fonts fontBank

	showPanel bool
	status    string
	frameTick uint64

	screenW  int
	screenH  int
	logicalW float64
	logicalH float64
	scale    float64
}

func New(rt *Runtime, opts WindowOptions) *App {
	if opts.Title == "" {
		opts.Title = "Orbit"
	}
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 768
	}
	return &App{
		rt:        rt,
		opts:      opts,
		theme:     ui.DefaultTheme(),
		fonts:     newFontBank(),
		showPanel: true,
		status:    "F1 panel, Space loop, [ ] density cap",
		scale:     1,
	}
}

func (a *App) Run() error {
	ebiten.SetWindowTitle(a.opts.Title)
	ebiten.SetWindowSize(a.opts.Width, a.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if a.opts.MinWidth > 0 || a.opts.MinHeight > 0 {
		ebiten.SetWindowSizeLimits(a.opts.MinWidth, a.opts.MinHeight, -1, -1)
	}
	if a.opts.TPS > 0 {
		ebiten.SetTPS(a.opts.TPS)
	}
	defer a.rt.Close()
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("run game loop: %w", err)
	}
	return nil
}

func (a *App) Update() error {
	a.frameTick++
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	if a.editing() {
		a.handleFieldInput(ctrl)
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.showPanel = !a.showPanel
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.rt.SetLoop(!a.rt.Loop())
		a.status = fmt.Sprintf("Looping %s", onOff(a.rt.Loop()))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		a.rt.StepDensityCap(-1)
		a.status = fmt.Sprintf("Density cap %.0f", a.rt.DensityCap())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		a.rt.StepDensityCap(1)
		a.status = fmt.Sprintf("Density cap %.0f", a.rt.DensityCap())
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if shift {
			a.report(copyFrame(a.rt.Surface), "Copied frame")
		} else {
			a.report(copyFill(a.rt.Store), "Copied fill")
		}
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		a.report(pasteFill(a.rt.Store), "Pasted fill")
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.saveFrame()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.report(a.rt.Store.Reset(scene.FillControl), "Reset fill to "+a.rt.Store.Default(scene.FillControl))
	}
	if a.showPanel && (inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyKPEnter)) {
		a.focus(scene.FillControl)
	}
	if a.showPanel && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if row, ok := a.panel.RowAt(x, y); ok {
			a.focus(row.Name)
		}
	}
	return nil
}

func (a *App) editing() bool {
	return a.field != nil && a.field.Focused
}

func (a *App) focus(name string) {
	a.field = controls.NewField(name)
	a.field.Focus(a.rt.Store)
	a.status = "Editing " + name
}

func (a *App) handleFieldInput(ctrl bool) {
	f := a.field
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		f.Cancel()
		a.status = "Edit cancelled"
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyKPEnter) {
		a.commitField()
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		row, ok := a.panel.RowAt(x, y)
		if !ok || row.Name != f.Name {
			a.commitField()
			return
		}
		a.placeCaret(row, x)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) || repeating(ebiten.KeyBackspace) {
		f.Backspace()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || repeating(ebiten.KeyDelete) {
		f.DeleteForward()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || repeating(ebiten.KeyArrowLeft) {
		f.MoveCaretLeft()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || repeating(ebiten.KeyArrowRight) {
		f.MoveCaretRight()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		f.MoveCaretToLineStart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnd) {
		f.MoveCaretToLineEnd()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		if clip, err := readClipboardText(); err == nil {
			_ = f.InsertTextAtCaret(clip)
		}
		return
	}
	if ctrl {
		return
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x20 || r == 0x7F || !utf8.ValidRune(r) {
			continue
		}
		_ = f.InsertTextAtCaret(string(r))
	}
}

// repeating reports key auto-repeat after a short hold.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d > 30 && d%4 == 0
}

func (a *App) commitField() {
	name := a.field.Name
	if err := a.field.Commit(a.rt.Store); err != nil {
		a.status = err.Error()
		a.rt.Logger.Warn("control commit failed", "name", name, "error", err)
		return
	}
	a.status = fmt.Sprintf("%s = %s", name, a.rt.Store.Get(name))
}

func (a *App) placeCaret(row ui.Row, x int) {
	face := a.valueFace()
	buf := a.field.Text()
	rel := x - row.Field.Min.X - a.dp(4)
	pos := len(buf)
	for i := range buf {
		if a.measureString(face, buf[:i]) >= rel {
			pos = i
			break
		}
	}
	a.field.SetCaret(pos)
}

func (a *App) saveFrame() {
	path, err := dialog.File().Filter("PNG images", "png").Save()
	if errors.Is(err, dialog.ErrCancelled) {
		a.status = "Save cancelled"
		return
	}
	if err != nil {
		a.report(err, "")
		return
	}
	path, err = SaveFramePNG(path, a.rt.Surface)
	a.report(err, "Saved "+filepath.Base(path))
}

func (a *App) report(err error, ok string) {
	if err != nil {
		a.status = err.Error()
		a.rt.Logger.Warn("panel action failed", "error", err)
		return
	}
	a.status = ok
}

func (a *App) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	a.rt.Frame()
	a.rt.Sync(frameloop.Dimensions{Width: a.logicalW, Height: a.logicalH}, a.scale)
	a.drawScene(screen, w, h)

	if !a.showPanel {
		return
	}
	if a.chrome == nil || a.chrome.W != w || a.chrome.H != h {
		a.chrome = render.NewFrameBuffer(w, h)
		a.chromeImg = ebiten.NewImage(w, h)
	}
	a.chrome.Clear(color.RGBA{})
	a.panel = ui.ComputePanelLayout(w, h, a.rt.Store.Names(), a.theme, a.scale)
	ui.DrawPanel(a.chrome, a.panel, a.rt.Store, a.field, a.theme, a.scale)
	a.drawCaret()
	a.chromeImg.WritePixels(a.chrome.Pixels)
	screen.DrawImage(a.chromeImg, nil)
	a.drawPanelText(screen)
}

func (a *App) drawScene(screen *ebiten.Image, w, h int) {
	bw, bh := a.rt.Surface.BackingSize()
	pix := a.rt.Surface.Pixels()
	if bw <= 0 || bh <= 0 || len(pix) < 4*bw*bh {
		return
	}
	if a.sceneImg == nil || a.sceneImg.Bounds().Dx() != bw || a.sceneImg.Bounds().Dy() != bh {
		if a.sceneImg != nil {
			a.sceneImg.Deallocate()
		}
		a.sceneImg = ebiten.NewImage(bw, bh)
	}
	a.sceneImg.WritePixels(pix[:4*bw*bh])
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/float64(bw), float64(h)/float64(bh))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(a.sceneImg, op)
}

func (a *App) drawCaret() {
	if !a.editing() || (a.frameTick/30)%2 == 1 {
		return
	}
	for _, row := range a.panel.Rows {
		if row.Name != a.field.Name {
			continue
		}
		x := row.Field.Min.X + a.dp(4) + a.measureString(a.valueFace(), string(a.field.Buffer[:a.field.CaretByte]))
		a.chrome.FillRect(x, row.Field.Min.Y+a.dp(3), max(1, a.dp(1)), row.Field.Dy()-a.dp(6), a.theme.Text)
	}
}

func (a *App) drawPanelText(screen *ebiten.Image) {
	titleFace := a.uiFace(12, false)
	labelFace := a.uiFace(11, false)
	valueFace := a.valueFace()
	statusFace := a.uiFace(10, false)

	t := a.panel.Title
	text.Draw(screen, "Controls", titleFace, t.Min.X+a.dp(8), baseline(t.Min.Y, t.Dy(), titleFace), a.theme.Text)

	for _, row := range a.panel.Rows {
		text.Draw(screen, row.Name, labelFace, row.Label.Min.X, baseline(row.Label.Min.Y, row.Label.Dy(), labelFace), a.theme.MutedText)
		value := a.rt.Store.Get(row.Name)
		if a.editing() && a.field.Name == row.Name {
			value = a.field.Text()
		}
		text.Draw(screen, value, valueFace, row.Field.Min.X+a.dp(4), baseline(row.Field.Min.Y, row.Field.Dy(), valueFace), a.theme.Text)
	}

	s := a.panel.Status
	text.Draw(screen, a.statusLine(), statusFace, s.Min.X+a.dp(8), baseline(s.Min.Y, s.Dy(), statusFace), a.theme.MutedText)
}

func (a *App) statusLine() string {
	sz := a.rt.Surface.Sizing()
	frames := uint64(0)
	if inst := a.rt.Instance(); inst != nil {
		frames = inst.Frames()
	}
	return fmt.Sprintf("[ %dx%d @%.2g ] [ cap %.0f ] [ loop %s ] [ #%d ] %s",
		sz.BackingW, sz.BackingH, sz.Density, a.rt.DensityCap(), onOff(a.rt.Loop()), frames, a.status)
}

func baseline(top, height int, face font.Face) int {
	m := face.Metrics()
	asc := m.Ascent.Ceil()
	desc := m.Descent.Ceil()
	return top + (height-asc-desc)/2 + asc
}

// Layout reports a device-pixel screen so the backing store maps 1:1 onto
// it at the monitor's scale factor.
func (a *App) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	scale := 1.0
	if m := ebiten.Monitor(); m != nil {
		if s := m.DeviceScaleFactor(); s > 0 {
			scale = s
		}
	}
	a.scale = scale
	a.logicalW = float64(outsideWidth)
	a.logicalH = float64(outsideHeight)
	a.screenW = int(math.Ceil(float64(outsideWidth) * scale))
	a.screenH = int(math.Ceil(float64(outsideHeight) * scale))
	if a.screenW < 1 {
		a.screenW = 1
	}
	if a.screenH < 1 {
		a.screenH = 1
	}
	return a.screenW, a.screenH
}

func (a *App) dp(v int) int {
	return int(math.Round(float64(v) * a.scale))
}

func (a *App) measureString(face font.Face, s string) int {
	if face == nil || s == "" {
		return 0
	}
	adv := font.MeasureString(face, s)
	px := (int(adv) + 32) >> 6
	if px < 0 {
		px = 0
	}
	return px
}

func (a *App) valueFace() font.Face {
	return a.uiFace(11, true)
}

// uiFace returns a cached face sized in points at the current density.
func (a *App) uiFace(size int, mono bool) font.Face {
	key := fontKey{size: size, mono: mono, scale: int(math.Round(a.scale * 1000))}
	if f, ok := a.fonts.cache[key]; ok {
		return f
	}
	base := a.fonts.regular
	if mono {
		base = a.fonts.mono
	}
	if base == nil {
		return basicfont.Face7x13
	}
	opts := &opentype.FaceOptions{Size: float64(size) * a.scale, DPI: 72, Hinting: font.HintingFull}
	face, err := opentype.NewFace(base, opts)
	if err != nil {
		return basicfont.Face7x13
	}
	a.fonts.cache[key] = face
	return face
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
