package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/game"
	"github.com/gonewx/tdcore/pkg/grid"
)

// SelectableToken 可拖拽的防御单位令牌
type SelectableToken struct {
	Archetype   *config.Archetype
	Slot        mgl64.Vec3 // 初始位置，放置失败时回到这里
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// TryRaycastBounds 射线与令牌包围盒求交，返回命中参数
func (t *SelectableToken) TryRaycastBounds(ray grid.Ray) (float64, bool) {
	return grid.NewAABB(t.Position, t.HalfExtents).IntersectRay(ray)
}

// ResetPosition 回到初始位置
func (t *SelectableToken) ResetPosition() {
	t.Position = t.Slot
}

// TokenLayout 令牌排布方式
// UseEnd 为 true 时在 Start 与 End 之间均匀插值（单个令牌居中），
// 否则从 Start 开始按 Step 等距排列
type TokenLayout struct {
	Start  mgl64.Vec3
	End    mgl64.Vec3
	UseEnd bool
	Step   mgl64.Vec3
}

// Position 返回 n 个令牌中第 i 个的位置
func (l TokenLayout) Position(i, n int) mgl64.Vec3 {
	if !l.UseEnd {
		return l.Start.Add(l.Step.Mul(float64(i)))
	}
	t := 0.5
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	return l.Start.Add(l.End.Sub(l.Start).Mul(t))
}

// SelectionSpawner 按关卡名单摆放令牌
// 每摆出一个令牌就从关卡库存中取走一个
type SelectionSpawner struct {
	level  *game.LevelRuntime
	layout TokenLayout
}

// NewSelectionSpawner 创建令牌摆放器
func NewSelectionSpawner(level *game.LevelRuntime, layout TokenLayout) *SelectionSpawner {
	return &SelectionSpawner{level: level, layout: layout}
}

// Spawn 为每个仍有库存的防御原型摆放一个令牌
func (s *SelectionSpawner) Spawn() []*SelectableToken {
	var stocked []*config.Archetype
	for _, a := range s.level.Defenses() {
		if s.level.Remaining(a.ID) > 0 {
			stocked = append(stocked, a)
		}
	}

	tokens := make([]*SelectableToken, 0, len(stocked))
	for i, a := range stocked {
		if t := s.SpawnAt(a, s.layout.Position(i, len(stocked))); t != nil {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// SpawnAt 在指定位置摆放一个令牌，库存不足时返回 nil
func (s *SelectionSpawner) SpawnAt(a *config.Archetype, pos mgl64.Vec3) *SelectableToken {
	if !s.level.TryConsume(a.ID) {
		return nil
	}
	return &SelectableToken{
		Archetype:   a,
		Slot:        pos,
		Position:    pos,
		HalfExtents: mgl64.Vec3{a.Bounds[0], a.Bounds[1], a.Bounds[2]},
	}
}
