package systems

import (
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/grid"
)

// PlacementValidator 防御单位放置合法性检查
// 合法 = 在棋盘内 ∧ 位于可放置的下半区 ∧ 空间索引中无实体
type PlacementValidator struct {
	grid *grid.BoardGrid
	repo *ecs.Repository
}

// NewPlacementValidator 创建放置检查器
func NewPlacementValidator(g *grid.BoardGrid, repo *ecs.Repository) *PlacementValidator {
	return &PlacementValidator{grid: g, repo: repo}
}

// IsValid 检查单元格能否放置防御单位
func (v *PlacementValidator) IsValid(c grid.Cell) bool {
	return v.grid.InBounds(c) &&
		c.Row < v.grid.PlaceableRowCount() &&
		!v.repo.IsOccupied(c)
}
