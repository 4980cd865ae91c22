package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

type placementRig struct {
	*testWorld
	preview    *PlacementPreviewService
	controller *PlacementControllerSystem
	modes      []bool
	placed     []events.CharacterPlaced
}

func newPlacementRig(t *testing.T) *placementRig {
	t.Helper()
	w := newTestWorld(t, 4, 8)
	r := &placementRig{testWorld: w}
	r.preview = NewPlacementPreviewService(w.projector, w.validator)
	r.controller = NewPlacementControllerSystem(w.bus, r.preview, w.validator, w.factory)
	events.Subscribe(w.bus, func(ev events.PlacementModeChanged) { r.modes = append(r.modes, ev.Active) })
	events.Subscribe(w.bus, func(ev events.CharacterPlaced) { r.placed = append(r.placed, ev) })
	return r
}

func (r *placementRig) hover(c grid.Cell) {
	events.Publish(r.bus, events.HoverCellChanged{Cell: c, HasCell: true, World: r.projector.CellToWorldCenter(c)})
}

func TestPlacementValidator(t *testing.T) {
	w := newTestWorld(t, 4, 8)
	w.spawn(t, wall(), grid.NewCell(0, 0))

	tests := []struct {
		name string
		cell grid.Cell
		want bool
	}{
		{"空闲的下半区", grid.NewCell(1, 3), true},
		{"已被占用", grid.NewCell(0, 0), false},
		{"上半区", grid.NewCell(2, 3), false},
		{"越界", grid.NewCell(-1, 3), false},
		{"列越界", grid.NewCell(0, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.validator.IsValid(tt.cell))
		})
	}
}

// TestPlacementValidator_DefenderHeldAgainstEnemy 敌人被挡在防御单位前时，该格仍不可放置
func TestPlacementValidator_DefenderHeldAgainstEnemy(t *testing.T) {
	w := newTestWorld(t, 4, 1)
	blocker := w.spawn(t, wall(), grid.NewCell(1, 0))
	enemy := w.spawn(t, grunt(100, 1), grid.NewCell(3, 0))

	for i := 0; i < 60; i++ {
		w.scheduler.Update(0.1)
	}

	assert.Equal(t, grid.NewCell(2, 0), enemy.Cell())
	got, ok := w.repo.TryGetByCell(grid.NewCell(1, 0))
	require.True(t, ok)
	assert.Same(t, blocker, got)
	assert.False(t, w.validator.IsValid(grid.NewCell(1, 0)))
}

// TestPlacementController_PlaceThenRejectDuplicate 4x8 棋盘上在 (1,3) 放置成功，再次放置同一格被拒绝
func TestPlacementController_PlaceThenRejectDuplicate(t *testing.T) {
	r := newPlacementRig(t)
	a := wall()

	events.Publish(r.bus, events.CharacterSelected{Archetype: a})
	assert.Equal(t, PlacementPreviewing, r.controller.State())
	assert.Equal(t, []bool{true}, r.modes)

	r.hover(grid.NewCell(1, 3))
	ghost := r.preview.Ghost()
	assert.True(t, ghost.Visible)
	assert.True(t, ghost.Valid)
	assert.Equal(t, GhostValidTint, ghost.Tint)

	require.True(t, r.controller.Confirm())
	assert.Equal(t, PlacementIdle, r.controller.State())
	assert.Equal(t, []bool{true, false}, r.modes)
	assert.False(t, r.preview.Ghost().Visible)
	require.Len(t, r.placed, 1)
	assert.Equal(t, grid.NewCell(1, 3), r.placed[0].Cell)

	e, ok := r.repo.TryGetByCell(grid.NewCell(1, 3))
	require.True(t, ok)
	assert.Equal(t, r.placed[0].EntityID, e.ID)

	events.Publish(r.bus, events.CharacterSelected{Archetype: a})
	r.hover(grid.NewCell(1, 3))
	assert.False(t, r.preview.Ghost().Valid)
	assert.Equal(t, GhostInvalidTint, r.preview.Ghost().Tint)

	assert.False(t, r.controller.Confirm())
	assert.Equal(t, PlacementIdle, r.controller.State())
	assert.Len(t, r.placed, 1)
	assert.Equal(t, 1, r.repo.Len())

	still, ok := r.repo.TryGetByCell(grid.NewCell(1, 3))
	require.True(t, ok)
	assert.Same(t, e, still, "原有实体不受影响")
}

func TestPlacementController_Cancel(t *testing.T) {
	r := newPlacementRig(t)

	r.controller.Cancel()
	assert.Empty(t, r.modes, "idle 下取消无效果")

	events.Publish(r.bus, events.CharacterSelected{Archetype: archer(false, 0)})
	r.hover(grid.NewCell(0, 0))
	r.controller.Cancel()

	assert.Equal(t, PlacementIdle, r.controller.State())
	assert.Nil(t, r.controller.Archetype())
	assert.False(t, r.preview.Active())
	assert.Equal(t, []bool{true, false}, r.modes)
	assert.Equal(t, 0, r.repo.Len())
}

func TestPlacementController_InvalidConfirmExits(t *testing.T) {
	r := newPlacementRig(t)

	events.Publish(r.bus, events.CharacterSelected{Archetype: archer(false, 0)})
	r.hover(grid.NewCell(3, 3))
	assert.True(t, r.preview.Ghost().Visible)
	assert.False(t, r.preview.Ghost().Valid)

	assert.False(t, r.controller.Confirm())
	assert.Equal(t, PlacementIdle, r.controller.State())
	assert.Empty(t, r.placed)
}

func TestPlacementController_ConfirmOffBoard(t *testing.T) {
	r := newPlacementRig(t)

	events.Publish(r.bus, events.CharacterSelected{Archetype: archer(false, 0)})
	events.Publish(r.bus, events.HoverCellChanged{HasCell: false})
	assert.False(t, r.preview.Ghost().Visible)

	assert.False(t, r.controller.Confirm())
	assert.Equal(t, 0, r.repo.Len())
}

func TestPlacementController_ConfirmWhenIdle(t *testing.T) {
	r := newPlacementRig(t)
	r.hover(grid.NewCell(0, 0))
	assert.False(t, r.controller.Confirm())
	assert.Empty(t, r.modes)
}

// TestPlacementController_SwitchArchetype 预览中切换原型只替换幽灵
func TestPlacementController_SwitchArchetype(t *testing.T) {
	r := newPlacementRig(t)
	first, second := archer(false, 0), wall()

	r.hover(grid.NewCell(0, 1))
	events.Publish(r.bus, events.CharacterSelected{Archetype: first})
	assert.True(t, r.preview.Ghost().Visible, "选择前的悬停单元格立即生效")

	events.Publish(r.bus, events.CharacterSelected{Archetype: second})
	assert.Equal(t, []bool{true}, r.modes)
	assert.Same(t, second, r.controller.Archetype())
	assert.Same(t, second, r.preview.Ghost().Archetype)

	require.True(t, r.controller.Confirm())
	e, ok := r.repo.TryGetByCell(grid.NewCell(0, 1))
	require.True(t, ok)
	assert.Equal(t, "wall", e.Archetype.ID)
}

func TestPlacementPreview_GhostPosition(t *testing.T) {
	w := newTestWorld(t, 4, 8)
	preview := NewPlacementPreviewService(w.projector, w.validator)

	preview.UpdateTo(grid.NewCell(0, 0), true)
	assert.False(t, preview.Ghost().Visible, "未开始预览时忽略更新")

	preview.Begin(wall())
	preview.UpdateFromPointer(topDownRays{}.PointerToRay(2.5, 0.5))

	ghost := preview.Ghost()
	assert.True(t, ghost.Visible)
	assert.Equal(t, grid.NewCell(0, 2), ghost.Cell)
	assert.True(t, ghost.Position.ApproxEqual(mgl64.Vec3{2.5, ghostLift, 0.5}))

	preview.UpdateFromPointer(topDownRays{}.PointerToRay(-3, 0.5))
	assert.False(t, preview.Ghost().Visible)

	preview.End()
	assert.False(t, preview.Active())
}
