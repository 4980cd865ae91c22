package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/app"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
	"github.com/gonewx/tdcore/pkg/systems"
)

var (
	colorBackground = color.RGBA{34, 40, 34, 255}
	colorPlaceable  = color.RGBA{96, 148, 82, 255}
	colorEnemyZone  = color.RGBA{70, 96, 64, 255}
	colorCellBorder = color.RGBA{40, 60, 40, 255}
	colorBitmapUsed = color.RGBA{200, 60, 60, 90}
	colorDefender   = color.RGBA{70, 130, 220, 255}
	colorEnemy      = color.RGBA{210, 70, 60, 255}
	colorProjectile = color.RGBA{250, 220, 90, 255}
	colorToken      = color.RGBA{180, 180, 200, 255}
	colorTokenDrag  = color.RGBA{240, 240, 255, 255}
	colorHPBack     = color.RGBA{20, 20, 20, 200}
	colorHPFill     = color.RGBA{90, 220, 90, 255}
)

var rosterKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// viewer 调试窗口
//
// 操作：
//   - 数字键选择防御原型进入点选放置，左键确认，右键 / ESC 取消
//   - 拖拽棋盘下方的令牌到可放置单元格
//   - 空格暂停，G 显示占用位图
type viewer struct {
	sim   *app.Simulation
	cam   *camera
	views *viewPool
	dt    float64

	paused     bool
	showBitmap bool
	outcome    string
}

func newViewer(sim *app.Simulation, cam *camera, views *viewPool, dt float64) *viewer {
	v := &viewer{sim: sim, cam: cam, views: views, dt: dt}
	g := sim.Grid()

	// 占用位图只在调试叠加层中显示，由防御单位的放置和死亡同步
	events.Subscribe(sim.Bus(), func(ev events.CharacterPlaced) {
		g.TryOccupy(ev.Cell)
	})
	events.Subscribe(sim.Bus(), func(ev events.CharacterDied) {
		if ev.Entity != nil && ev.Entity.Role == ecs.RoleDefense {
			g.Free(ev.Entity.Cell())
		}
	})
	events.Subscribe(sim.Bus(), func(events.GameWon) { v.outcome = "VICTORY" })
	events.Subscribe(sim.Bus(), func(ev events.GameLost) { v.outcome = "DEFEAT: " + ev.Reason })
	return v
}

func (v *viewer) Update() error {
	v.handleInput()
	if !v.paused {
		v.sim.Step(v.dt)
	}
	return nil
}

func (v *viewer) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		v.showBitmap = !v.showBitmap
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		v.sim.Placement().Cancel()
	}

	roster := v.sim.Level().Defenses()
	for i, key := range rosterKeys {
		if i < len(roster) && inpututil.IsKeyJustPressed(key) {
			if !v.sim.Select(roster[i].ID) {
				log.Info().Str("archetype", roster[i].ID).Msg("[tdgame] out of stock")
			}
		}
	}

	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)
	selection := v.sim.Selection()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if v.sim.Placement().State() == systems.PlacementPreviewing {
			v.sim.ConfirmPlacement()
		} else if selection != nil {
			selection.PointerDown(fx, fy)
		}
	}
	if selection == nil || selection.Dragging() == nil {
		return
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		selection.PointerMove(fx, fy)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		selection.PointerUp(fx, fy)
	}
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	v.drawBoard(screen)
	v.drawGhost(screen)
	v.drawEntities(screen)
	v.drawProjectiles(screen)
	v.drawTokens(screen)
	v.drawStatus(screen)
}

func (v *viewer) Layout(int, int) (int, int) {
	return v.cam.width, v.cam.height
}

func (v *viewer) drawBoard(screen *ebiten.Image) {
	g := v.sim.Grid()
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			cell := grid.NewCell(r, c)
			x, y, w, h := v.cam.cellRect(g, cell)
			fill := colorEnemyZone
			if r < g.PlaceableRowCount() {
				fill = colorPlaceable
			}
			vector.DrawFilledRect(screen, x, y, w, h, fill, false)
			vector.StrokeRect(screen, x, y, w, h, 1, colorCellBorder, false)

			if v.showBitmap && r < g.PlaceableRowCount() && !g.IsDefensePlacementAllowed(cell) {
				vector.DrawFilledRect(screen, x, y, w, h, colorBitmapUsed, false)
			}
		}
	}
}

func (v *viewer) drawGhost(screen *ebiten.Image) {
	ghost := v.sim.Ghost()
	if !ghost.Visible {
		return
	}
	x, y, w, h := v.cam.cellRect(v.sim.Grid(), ghost.Cell)
	vector.DrawFilledRect(screen, x+4, y+4, w-8, h-8, tintColor(ghost.Tint), false)
}

func (v *viewer) drawEntities(screen *ebiten.Image) {
	radius := float32(v.cam.scale * v.sim.Grid().CellSize() * 0.3)
	for _, e := range v.sim.Entities() {
		if !e.ViewValid() {
			continue
		}
		cx, cy := v.cam.toScreen(e.Position())
		clr := colorDefender
		if e.Role == ecs.RoleEnemy {
			clr = colorEnemy
		}
		vector.DrawFilledCircle(screen, cx, cy, radius, clr, true)

		if h, ok := ecs.HealthOf(e); ok && h.Max() > 0 {
			barW := radius * 2
			frac := float32(h.Current()) / float32(h.Max())
			vector.DrawFilledRect(screen, cx-radius, cy-radius-8, barW, 4, colorHPBack, false)
			vector.DrawFilledRect(screen, cx-radius, cy-radius-8, barW*frac, 4, colorHPFill, false)
		}
		ebitenutil.DebugPrintAt(screen, e.Archetype.ID, int(cx-radius), int(cy+radius))
	}
}

func (v *viewer) drawProjectiles(screen *ebiten.Image) {
	for _, p := range v.sim.Projectiles() {
		x, y := v.cam.toScreen(p.Position)
		vector.DrawFilledCircle(screen, x, y, 4, colorProjectile, true)
	}
}

func (v *viewer) drawTokens(screen *ebiten.Image) {
	selection := v.sim.Selection()
	if selection == nil {
		return
	}
	for _, t := range selection.Tokens() {
		x, y := v.cam.toScreen(t.Position)
		hw := float32(t.HalfExtents.X() * v.cam.scale)
		hd := float32(t.HalfExtents.Z() * v.cam.scale)
		clr := colorToken
		if t == selection.Dragging() {
			clr = colorTokenDrag
		}
		vector.DrawFilledRect(screen, x-hw, y-hd, hw*2, hd*2, clr, false)
		ebitenutil.DebugPrintAt(screen, t.Archetype.ID, int(x-hw), int(y+hd))
	}
}

func (v *viewer) drawStatus(screen *ebiten.Image) {
	var b strings.Builder
	spawned, planned := v.sim.EnemiesSpawned()
	fmt.Fprintf(&b, "%s  t=%.1fs  enemies %d/%d", v.sim.State(), v.sim.Elapsed(), spawned, planned)
	if hp, maxHP, ok := v.sim.BaseHP(); ok {
		fmt.Fprintf(&b, "  base %d/%d", hp, maxHP)
	}
	fmt.Fprintf(&b, "  views %d", v.views.Len())
	if v.paused {
		b.WriteString("  [PAUSED]")
	}
	b.WriteString("\n")

	for i, a := range v.sim.Level().Defenses() {
		if i >= len(rosterKeys) {
			break
		}
		fmt.Fprintf(&b, "[%d] %s x%d  ", i+1, a.DisplayName, v.sim.Stock(a.ID))
	}
	if state := v.sim.Placement().State(); state != systems.PlacementIdle {
		fmt.Fprintf(&b, "  placing %s", v.sim.Placement().Archetype().DisplayName)
	}
	ebitenutil.DebugPrintAt(screen, b.String(), 8, 8)

	if v.outcome != "" {
		ebitenutil.DebugPrintAt(screen, v.outcome, v.cam.width/2-40, marginTop/2+8)
	}
}

// tintColor RGBA（0~1）→ color.RGBA
func tintColor(t [4]float64) color.RGBA {
	return color.RGBA{
		R: uint8(t[0] * t[3] * 255),
		G: uint8(t[1] * t[3] * 255),
		B: uint8(t[2] * t[3] * 255),
		A: uint8(t[3] * 255),
	}
}
