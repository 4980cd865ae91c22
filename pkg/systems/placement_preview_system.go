package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/grid"
)

// 预览色调（RGBA，0~1）
var (
	GhostValidTint   = [4]float64{0.35, 1, 0.35, 0.55}
	GhostInvalidTint = [4]float64{1, 0.35, 0.35, 0.55}
)

// ghostLift 预览沿棋盘法线抬起的高度，避免与棋盘表面重叠
const ghostLift = 0.01

// Ghost 放置预览的可渲染状态
type Ghost struct {
	Visible   bool
	Archetype *config.Archetype
	Cell      grid.Cell
	OnCell    bool
	Position  mgl64.Vec3
	Valid     bool
	Tint      [4]float64
}

// PlacementPreviewService 单个放置预览（半透明幽灵）
// 只反映悬停单元格是否可放置，不预留任何单元格
type PlacementPreviewService struct {
	projector *grid.GridProjector
	validator *PlacementValidator

	ghost Ghost
}

// NewPlacementPreviewService 创建预览服务
func NewPlacementPreviewService(projector *grid.GridProjector, validator *PlacementValidator) *PlacementPreviewService {
	return &PlacementPreviewService{projector: projector, validator: validator}
}

// Begin 开始预览某个原型
func (s *PlacementPreviewService) Begin(a *config.Archetype) {
	s.ghost = Ghost{Archetype: a, Tint: GhostInvalidTint}
}

// End 结束预览并隐藏幽灵
func (s *PlacementPreviewService) End() {
	s.ghost = Ghost{}
}

// Active 是否处于预览中
func (s *PlacementPreviewService) Active() bool {
	return s.ghost.Archetype != nil
}

// UpdateTo 把幽灵移动到单元格中心并按合法性着色
// onBoard 为 false 时隐藏幽灵
func (s *PlacementPreviewService) UpdateTo(c grid.Cell, onBoard bool) {
	if !s.Active() {
		return
	}
	if !onBoard {
		s.ghost.Visible = false
		s.ghost.OnCell = false
		s.ghost.Valid = false
		s.ghost.Tint = GhostInvalidTint
		return
	}

	normal := s.projector.Surface().WorldPlaneNormal()
	s.ghost.Visible = true
	s.ghost.Cell = c
	s.ghost.OnCell = true
	s.ghost.Position = s.projector.CellToWorldCenter(c).Add(normal.Mul(ghostLift))
	s.ghost.Valid = s.validator.IsValid(c)
	if s.ghost.Valid {
		s.ghost.Tint = GhostValidTint
	} else {
		s.ghost.Tint = GhostInvalidTint
	}
}

// UpdateFromPointer 由指针射线更新幽灵
func (s *PlacementPreviewService) UpdateFromPointer(ray grid.Ray) {
	cell, _, onBoard, hit := s.projector.TryRayToCell(ray)
	s.UpdateTo(cell, hit && onBoard)
}

// Ghost 返回当前预览状态
func (s *PlacementPreviewService) Ghost() Ghost { return s.ghost }
