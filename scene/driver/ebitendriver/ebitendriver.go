// Package ebitendriver pumps a SceneManager from an Ebiten game loop. The
// runtime core never drives itself; this adapter is one ready-made external
// driver, calling Update with the tick delta and forwarding the draw phase to
// the active scene's render pass.
package ebitendriver

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/scenekit/scene"
)

// Driver implements ebiten.Game over a SceneManager.
type Driver struct {
	manager *scene.SceneManager
	width   int
	height  int
	screen  *ebiten.Image
}

// New creates a driver with the given logical screen size.
func New(m *scene.SceneManager, width, height int) *Driver {
	return &Driver{manager: m, width: width, height: height}
}

// Manager returns the driven scene manager.
func (d *Driver) Manager() *scene.SceneManager { return d.manager }

// Screen returns the image being drawn this frame. Only valid inside a render
// pass; render systems grab it here.
func (d *Driver) Screen() *ebiten.Image { return d.screen }

// Update runs one frame tick against the active scene. Ebiten ticks at a
// fixed rate, so the delta is 1/TPS.
func (d *Driver) Update() error {
	d.manager.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

// Draw forwards the render pass to the active scene's systems.
func (d *Driver) Draw(screen *ebiten.Image) {
	d.screen = screen
	d.manager.Render()
	d.screen = nil
}

// Layout reports the fixed logical screen size.
func (d *Driver) Layout(outsideWidth, outsideHeight int) (int, int) {
	return d.width, d.height
}

// Run opens the window and blocks in the Ebiten game loop until it exits.
func (d *Driver) Run(title string) error {
	ebiten.SetWindowSize(d.width, d.height)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(d)
}
