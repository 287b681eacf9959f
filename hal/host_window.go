//go:build !tinygo && cgo

package hal

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"kestrel/internal/buildinfo"
)

const (
	winWidth  = 480
	winHeight = 360
)

// RunWindow starts a desktop window showing an artificial horizon for the
// simulated vehicle plus the status rows. It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error) error {
	h := New().(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("Kestrel (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(winWidth*2, winHeight*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h    *hostHAL
	step func() error
}

// Update follows wall time, sliced into 1ms steps so the flight loop sweeps
// at its on-target cadence between frames.
func (g *hostGame) Update() error {
	us := g.h.clock.pendingReal()
	for us >= 1000 {
		g.h.clock.advance(1000)
		g.h.sim.step(1000)
		if g.step != nil {
			if err := g.step(); err != nil {
				return err
			}
		}
		us -= 1000
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	roll, pitch, yaw := g.h.sim.attitude()

	screen.Fill(color.RGBA{0x10, 0x14, 0x1C, 0xFF})
	drawHorizon(screen, roll, pitch)

	rows := g.h.status.snapshot()
	text := ""
	for _, r := range rows {
		if r != "" {
			text += r + "\n"
		}
	}
	text += fmt.Sprintf("yaw %5.1f", yaw)
	if g.h.led.state() {
		text += "\nLED"
	}
	ebitenutil.DebugPrint(screen, text)
}

// drawHorizon draws the sky/ground split line and a fixed center reticle.
func drawHorizon(screen *ebiten.Image, roll, pitch float32) {
	cx := float32(winWidth) / 2
	cy := float32(winHeight)/2 + pitch*3

	r := float64(roll) * math.Pi / 180
	dx := float32(math.Cos(r)) * winWidth
	dy := float32(math.Sin(r)) * winWidth

	vector.StrokeLine(screen, cx-dx, cy-dy, cx+dx, cy+dy, 2,
		color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}, true)

	reticle := color.RGBA{0xFF, 0xA0, 0x20, 0xFF}
	vector.StrokeLine(screen, cx-30, winHeight/2, cx-10, winHeight/2, 2, reticle, true)
	vector.StrokeLine(screen, cx+10, winHeight/2, cx+30, winHeight/2, 2, reticle, true)
	vector.StrokeCircle(screen, cx, winHeight/2, 4, 2, reticle, true)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return winWidth, winHeight
}
