package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

// hoverMoveEpsilonSq 命中点移动超过该距离（平方）才重新发布悬停事件
const hoverMoveEpsilonSq = 1e-4

// Pointer 指针位置来源（输入层实现）
// ok 为 false 表示当前没有可用的指针
type Pointer interface {
	PointerPosition() (x, y float64, ok bool)
}

// PointerHoverSystem 把指针位置转换为棋盘悬停单元格
// 单元格变化、命中点明显移动或离开棋盘时发布 HoverCellChanged
type PointerHoverSystem struct {
	bus       *events.Bus
	rays      grid.RayProvider
	pointer   Pointer
	projector *grid.GridProjector

	cell    grid.Cell
	world   mgl64.Vec3
	hasCell bool
}

// NewPointerHoverSystem 创建悬停系统
func NewPointerHoverSystem(bus *events.Bus, rays grid.RayProvider, pointer Pointer, projector *grid.GridProjector) *PointerHoverSystem {
	return &PointerHoverSystem{bus: bus, rays: rays, pointer: pointer, projector: projector}
}

// Update 读取指针并发布悬停变化
func (s *PointerHoverSystem) Update(float64) {
	if s.rays == nil || s.pointer == nil {
		return
	}
	x, y, ok := s.pointer.PointerPosition()
	if !ok {
		s.leave()
		return
	}
	s.Hover(s.rays.PointerToRay(x, y))
}

// Hover 用一条世界射线更新悬停状态
func (s *PointerHoverSystem) Hover(ray grid.Ray) {
	cell, world, onBoard, hit := s.projector.TryRayToCell(ray)
	if !hit || !onBoard {
		s.leave()
		return
	}
	if s.hasCell && cell == s.cell && world.Sub(s.world).LenSqr() <= hoverMoveEpsilonSq {
		return
	}
	s.cell = cell
	s.world = world
	s.hasCell = true
	events.Publish(s.bus, events.HoverCellChanged{Cell: cell, HasCell: true, World: world})
}

// Current 当前悬停的单元格
func (s *PointerHoverSystem) Current() (grid.Cell, bool) {
	return s.cell, s.hasCell
}

func (s *PointerHoverSystem) leave() {
	if !s.hasCell {
		return
	}
	s.hasCell = false
	events.Publish(s.bus, events.HoverCellChanged{HasCell: false})
}
