package grid

import "github.com/go-gl/mathgl/mgl64"

// GridProjector 在世界坐标与单元格之间换算
type GridProjector struct {
	grid    *BoardGrid
	surface *BoardSurface
}

// NewGridProjector 创建投影器
func NewGridProjector(g *BoardGrid, s *BoardSurface) *GridProjector {
	if s == nil {
		s = NewIdentitySurface()
	}
	return &GridProjector{grid: g, surface: s}
}

// Grid 返回所投影的网格
func (p *GridProjector) Grid() *BoardGrid { return p.grid }

// Surface 返回棋盘表面
func (p *GridProjector) Surface() *BoardSurface { return p.surface }

// TryWorldToCell 世界坐标 → 单元格，落在棋盘外返回 false
func (p *GridProjector) TryWorldToCell(world mgl64.Vec3) (Cell, bool) {
	local := p.surface.WorldToLocal(world).Sub(p.surface.LocalOrigin)
	return p.grid.TryLocalToCell(local)
}

// CellToWorldCenter 单元格中心的世界坐标
func (p *GridProjector) CellToWorldCenter(c Cell) mgl64.Vec3 {
	local := p.surface.LocalOrigin.Add(p.grid.CellToLocalCenter(c))
	return p.surface.LocalToWorld(local)
}

// TryRayToCell 射线与棋盘平面求交后换算为单元格
// 返回命中点世界坐标；射线未击中平面时 hit=false
func (p *GridProjector) TryRayToCell(ray Ray) (cell Cell, world mgl64.Vec3, onBoard bool, hit bool) {
	world, hit = RayPlane(ray, p.surface.WorldPlanePoint(), p.surface.WorldPlaneNormal())
	if !hit {
		return Cell{}, mgl64.Vec3{}, false, false
	}
	cell, onBoard = p.TryWorldToCell(world)
	return cell, world, onBoard, true
}
