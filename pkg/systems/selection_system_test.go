package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/game"
	"github.com/gonewx/tdcore/pkg/grid"
)

// 令牌摆在棋盘下方（z < 0），抬高 0.5
var testTokenLayout = TokenLayout{
	Start: mgl64.Vec3{1, 0.5, -1},
	Step:  mgl64.Vec3{1.5, 0, 0},
}

type selectionRig struct {
	*testWorld
	level     *game.LevelRuntime
	selection *CharacterSelectionSystem
	placed    []events.CharacterPlaced
}

func newSelectionRig(t *testing.T, archers, walls int) *selectionRig {
	t.Helper()
	w := newTestWorld(t, 4, 8)
	level := newLevel(t, &config.LevelConfig{
		ID: "selection",
		Defenses: []config.DefenseStock{
			{Archetype: "archer", Count: archers},
			{Archetype: "wall", Count: walls},
		},
	}, archer(false, 0), wall())

	r := &selectionRig{testWorld: w, level: level}
	spawner := NewSelectionSpawner(level, testTokenLayout)
	r.selection = NewCharacterSelectionSystem(w.bus, topDownRays{}, w.projector, w.validator, w.factory, spawner, level)
	events.Subscribe(w.bus, func(ev events.CharacterPlaced) { r.placed = append(r.placed, ev) })
	return r
}

// drag 从令牌位置拖到屏幕坐标 (x, y) 后松开
func (r *selectionRig) drag(t *testing.T, token *SelectableToken, x, y float64) bool {
	t.Helper()
	require.True(t, r.selection.PointerDown(token.Position.X(), token.Position.Z()))
	require.Same(t, token, r.selection.Dragging())
	r.selection.PointerMove(x, y)
	return r.selection.PointerUp(x, y)
}

func tokenFor(tokens []*SelectableToken, id string) *SelectableToken {
	for _, tok := range tokens {
		if tok.Archetype.ID == id {
			return tok
		}
	}
	return nil
}

func TestTokenLayout(t *testing.T) {
	step := TokenLayout{Start: mgl64.Vec3{0, 0, -1}, Step: mgl64.Vec3{2, 0, 0}}
	assert.Equal(t, mgl64.Vec3{4, 0, -1}, step.Position(2, 3))

	between := TokenLayout{Start: mgl64.Vec3{0, 0, 0}, End: mgl64.Vec3{4, 0, 0}, UseEnd: true}
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, between.Position(0, 1), "单个令牌居中")
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, between.Position(0, 3))
	assert.Equal(t, mgl64.Vec3{4, 0, 0}, between.Position(2, 3))
}

func TestSelectionSpawner_ConsumesStock(t *testing.T) {
	level := newLevel(t, &config.LevelConfig{
		ID: "stock",
		Defenses: []config.DefenseStock{
			{Archetype: "archer", Count: 2},
			{Archetype: "wall", Count: 0},
		},
	}, archer(false, 0), wall())

	spawner := NewSelectionSpawner(level, testTokenLayout)
	tokens := spawner.Spawn()
	require.Len(t, tokens, 1, "无库存的原型不摆令牌")
	assert.Equal(t, "archer", tokens[0].Archetype.ID)
	assert.Equal(t, 1, level.Remaining("archer"))

	assert.NotNil(t, spawner.SpawnAt(tokens[0].Archetype, tokens[0].Slot))
	assert.Nil(t, spawner.SpawnAt(tokens[0].Archetype, tokens[0].Slot))
	assert.Equal(t, 0, level.Remaining("archer"))
}

func TestSelection_InitialTokens(t *testing.T) {
	r := newSelectionRig(t, 2, 1)

	tokens := r.selection.Tokens()
	require.Len(t, tokens, 2)
	assert.Equal(t, testTokenLayout.Position(0, 2), tokens[0].Position)
	assert.Equal(t, testTokenLayout.Position(1, 2), tokens[1].Position)
	assert.Equal(t, 1, r.level.Remaining("archer"))
	assert.Equal(t, 0, r.level.Remaining("wall"))
}

// TestSelection_PicksNearestToken 重叠时拾取离射线起点最近的令牌
func TestSelection_PicksNearestToken(t *testing.T) {
	r := newSelectionRig(t, 1, 1)
	tokens := r.selection.Tokens()
	require.Len(t, tokens, 2)

	tokens[1].Position = tokens[0].Position.Add(mgl64.Vec3{0, 1, 0})
	require.True(t, r.selection.PointerDown(tokens[0].Position.X(), tokens[0].Position.Z()))
	assert.Same(t, tokens[1], r.selection.Dragging())
}

func TestSelection_PointerDownMiss(t *testing.T) {
	r := newSelectionRig(t, 1, 1)
	assert.False(t, r.selection.PointerDown(7.5, 3.5))
	assert.Nil(t, r.selection.Dragging())
	assert.False(t, r.selection.PointerUp(7.5, 3.5))
}

func TestSelection_DragFollowsPointer(t *testing.T) {
	r := newSelectionRig(t, 1, 1)
	token := tokenFor(r.selection.Tokens(), "archer")

	require.True(t, r.selection.PointerDown(token.Position.X(), token.Position.Z()))
	r.selection.PointerMove(5, 2)
	assert.True(t, token.Position.ApproxEqual(mgl64.Vec3{5, tokenDragLift, 2}))
}

// TestSelection_ValidDropRefills 合法放置：生成实体，库存有剩余时在原位补令牌
func TestSelection_ValidDropRefills(t *testing.T) {
	r := newSelectionRig(t, 2, 1)
	token := tokenFor(r.selection.Tokens(), "archer")
	slot := token.Slot

	require.True(t, r.drag(t, token, 3.5, 1.5))

	e, ok := r.repo.TryGetByCell(grid.NewCell(1, 3))
	require.True(t, ok)
	assert.Equal(t, "archer", e.Archetype.ID)

	require.Len(t, r.placed, 1)
	assert.Equal(t, e.ID, r.placed[0].EntityID)
	assert.Equal(t, grid.NewCell(1, 3), r.placed[0].Cell)

	tokens := r.selection.Tokens()
	assert.Len(t, tokens, 2)
	refill := tokenFor(tokens, "archer")
	require.NotNil(t, refill)
	assert.NotSame(t, token, refill)
	assert.Equal(t, slot, refill.Position)
	assert.Equal(t, 0, r.level.Remaining("archer"))
}

// TestSelection_InvalidDropResets 非法放置：令牌回到原位，不消耗库存
func TestSelection_InvalidDropResets(t *testing.T) {
	r := newSelectionRig(t, 2, 1)
	w := tokenFor(r.selection.Tokens(), "wall")
	r.spawn(t, wall(), grid.NewCell(1, 3))

	cases := []struct {
		name string
		x, y float64
	}{
		{"已占用", 3.5, 1.5},
		{"上半区", 3.5, 2.5},
		{"棋盘外", -4, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, r.drag(t, w, tc.x, tc.y))
			assert.Equal(t, w.Slot, w.Position)
			assert.Nil(t, r.selection.Dragging())
		})
	}

	assert.Empty(t, r.placed)
	assert.Equal(t, 1, r.level.Remaining("archer"))
	assert.Len(t, r.selection.Tokens(), 2)
}

// TestSelection_StockExhaustion 最后一个库存放置后令牌消失
func TestSelection_StockExhaustion(t *testing.T) {
	r := newSelectionRig(t, 1, 1)
	token := tokenFor(r.selection.Tokens(), "wall")

	require.True(t, r.drag(t, token, 0.5, 0.5))
	assert.Nil(t, tokenFor(r.selection.Tokens(), "wall"))
	assert.Len(t, r.selection.Tokens(), 1)
	assert.Equal(t, 0, r.level.Remaining("wall"))
}

// TestSelection_DropUsesHoverCell 松开时优先使用最近一次的悬停单元格
func TestSelection_DropUsesHoverCell(t *testing.T) {
	r := newSelectionRig(t, 1, 1)
	token := tokenFor(r.selection.Tokens(), "archer")

	events.Publish(r.bus, events.HoverCellChanged{Cell: grid.NewCell(0, 6), HasCell: true})
	require.True(t, r.drag(t, token, 3.5, 1.5))

	_, ok := r.repo.TryGetByCell(grid.NewCell(0, 6))
	assert.True(t, ok)
	assert.False(t, r.repo.IsOccupied(grid.NewCell(1, 3)))
}
