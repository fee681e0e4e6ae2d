package display

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-whitted-raytracer/pkg/output"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

const (
	moveStep = 5.0 // World units per tick while a movement key is held
	zoomStep = 1.0 // Degrees of field of view per tick
)

// Viewer presents frames from a FrameExchange in a window and drives the camera from the keyboard.
// W/S move forward and back, A/D strafe, Q/E move down and up, Z/X zoom, Escape quits.
type Viewer struct {
	raytracer *renderer.Raytracer
	exchange  *renderer.FrameExchange
	width     int
	height    int
	rgb       []byte
	rgba      []byte
	image     *ebiten.Image
	frames    int
	failc     chan error
}

// NewViewer creates a viewer for the exchange's resolution
func NewViewer(rt *renderer.Raytracer, exchange *renderer.FrameExchange) *Viewer {
	width, height := exchange.Size()
	return &Viewer{
		raytracer: rt,
		exchange:  exchange,
		width:     width,
		height:    height,
		rgb:       make([]byte, width*height*3),
		rgba:      make([]byte, width*height*4),
		failc:     make(chan error, 1),
	}
}

// Run opens the window and blocks until it is closed
func (v *Viewer) Run(title string) error {
	ebiten.SetWindowSize(v.width, v.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(v)
}

// Frames returns how many rendered frames have been presented
func (v *Viewer) Frames() int {
	return v.frames
}

// Fail closes the window on its next update and makes Run return err.
// It is safe to call from any goroutine; only the first error is kept.
func (v *Viewer) Fail(err error) {
	if err == nil {
		return
	}
	select {
	case v.failc <- err:
	default:
	}
}

func (v *Viewer) failure() error {
	select {
	case err := <-v.failc:
		return err
	default:
		return nil
	}
}

// Update polls for a finished frame and applies camera input
func (v *Viewer) Update() error {
	if err := v.failure(); err != nil {
		return err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if _, ok := v.exchange.TryTake(v.rgb); ok {
		if v.image == nil {
			v.image = ebiten.NewImage(v.width, v.height)
		}
		output.ExpandRGBA(v.rgba, v.rgb)
		v.image.WritePixels(v.rgba)
		v.frames++
	}

	v.handleInput()
	return nil
}

func (v *Viewer) handleInput() {
	var forward, right, up float64
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		forward += moveStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		forward -= moveStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		right += moveStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		right -= moveStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		up += moveStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		up -= moveStep
	}
	if forward != 0 || right != 0 || up != 0 {
		v.raytracer.MoveCamera(forward, right, up)
	}

	var zoom float64
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		zoom -= zoomStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		zoom += zoomStep
	}
	if zoom != 0 {
		camera := v.raytracer.Camera()
		v.raytracer.SetProjection(camera.Focal, camera.FovY+zoom)
	}
}

// Draw scales the latest frame to the window
func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.image == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(v.width), float64(sh)/float64(v.height))
	screen.DrawImage(v.image, op)
}

// Layout keeps the logical screen at the render resolution
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}
