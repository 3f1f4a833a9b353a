// Command enginedemo is a minimal ebiten-driven scene that wires
// ecs/world.World and physics.Driver together: a handful of circle and
// rect rigidbodies fall under gravity onto a static rect floor. It exists
// to exercise the engine end to end, not as a game.
package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"ironloop/internal/core/components"
	"ironloop/internal/core/config"
	"ironloop/internal/core/ecs/world"
	"ironloop/internal/core/physics"
)

const (
	screenWidth  = 1280
	screenHeight = 720
)

// Game wires the ECS world, the physics world, and the physics driver
// together, stepping physics once per Update at the configured fixed
// timestep and rendering every collider each Draw.
type Game struct {
	ecsWorld  *world.World
	physWorld *physics.World
	driver    *physics.Driver
	settings  config.Settings

	bodyColliders []physics.Handle // for draw-time shape lookup
}

// NewGame builds a small scene: a static rect floor and a handful of
// falling circle/rect rigidbodies.
func NewGame() *Game {
	settings := config.DefaultSettings()
	settings.Gravity = config.Vector2{X: 0, Y: 200}
	settings.DebugLogging = false

	ecsWorld := world.New()
	world.Register[components.Transform](ecsWorld)

	physWorld := physics.NewWorld()
	accel := physics.NewGrid(settings.AcceleratorCellSize)
	driver := physics.NewDriver(settings, accel)

	g := &Game{ecsWorld: ecsWorld, physWorld: physWorld, driver: driver, settings: settings}

	// Static floor.
	floorEntity := ecsWorld.NewEntity()
	world.AddComponent(ecsWorld, floorEntity, components.NewTransform(components.Vector2{X: screenWidth / 2, Y: screenHeight - 20}))
	floorHandle := physWorld.AddCollider(physics.Collider{
		Owner:    floorEntity,
		Shape:    physics.NewRect(screenWidth, 40),
		IsStatic: true,
		Layer:    0,
		Phys:     &physics.PhysData{InvMass: 0},
	})
	g.bodyColliders = append(g.bodyColliders, floorHandle)

	// A handful of falling circles and rects.
	spawn := []struct {
		pos   components.Vector2
		shape physics.Shape
	}{
		{components.Vector2{X: 300, Y: 100}, physics.NewCircle(20)},
		{components.Vector2{X: 420, Y: 60}, physics.NewCircle(15)},
		{components.Vector2{X: 560, Y: 120}, physics.NewRect(40, 40)},
		{components.Vector2{X: 700, Y: 40}, physics.NewCircle(25)},
	}
	for _, s := range spawn {
		entity := ecsWorld.NewEntity()
		world.AddComponent(ecsWorld, entity, components.NewTransform(s.pos))
		_, handle := physWorld.NewPhysicsBodyWithRigidbody(entity, s.shape, components.Vector2{}, 0, physics.PhysData{
			InvMass:        1,
			Restitution:    0.4,
			StaticFriction: 0.4,
			DynFriction:    0.3,
		})
		g.bodyColliders = append(g.bodyColliders, handle)
	}

	return g
}

// Update moves every non-static body by its velocity over the configured
// fixed timestep, then steps physics once.
func (g *Game) Update() error {
	dt := g.settings.FixedTimestep
	for _, h := range g.bodyColliders {
		c, ok := g.physWorld.GetCollider(h)
		if !ok || c.IsStatic {
			continue
		}
		if tr, ok := world.GetComponentMut[components.Transform](g.ecsWorld, c.Owner); ok {
			tr.Position = tr.Position.Add(tr.Velocity.Scale(dt))
		}
	}
	g.driver.Step(g.ecsWorld, g.physWorld)
	return nil
}

// Draw renders every collider as a filled shape plus a debug overlay line
// reporting the last step's metrics.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})

	for _, h := range g.bodyColliders {
		c, ok := g.physWorld.GetCollider(h)
		if !ok {
			continue
		}
		col := color.RGBA{80, 200, 120, 255}
		if c.IsStatic {
			col = color.RGBA{120, 120, 140, 255}
		}
		switch c.Shape.Kind {
		case physics.ShapeCircle:
			vector.DrawFilledCircle(screen, float32(c.Position.X), float32(c.Position.Y), float32(c.Shape.Radius), col, true)
		case physics.ShapeRect:
			x := float32(c.Position.X - c.Shape.HalfWidth)
			y := float32(c.Position.Y - c.Shape.HalfHeight)
			vector.DrawFilledRect(screen, x, y, float32(c.Shape.HalfWidth*2), float32(c.Shape.HalfHeight*2), col, true)
		}
	}

	m := g.driver.Metrics
	overlay := fmt.Sprintf("candidates=%d tests=%d contacts=%d solved=%d",
		m.CandidatesConsidered, m.TestsAttempted, m.Contacts, m.Solved)
	ebitenutil.DebugPrint(screen, overlay)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("ironloop engine demo")
	if err := ebiten.RunGame(NewGame()); err != nil {
		log.Fatal(err)
	}
}
