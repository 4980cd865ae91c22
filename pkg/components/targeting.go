package components

import (
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/grid"
)

// TargetingService 基于网格的索敌
// 只读访问空间索引，结果完全由棋盘状态决定
type TargetingService struct {
	grid *grid.BoardGrid
	repo *ecs.Repository
}

// NewTargetingService 创建索敌服务
func NewTargetingService(g *grid.BoardGrid, repo *ecs.Repository) *TargetingService {
	return &TargetingService{grid: g, repo: repo}
}

// ForwardStep 返回阵营的前进方向（行增量）
// 防御方朝敌人来的方向（行号增大），敌人朝基地（行号减小）
func ForwardStep(role ecs.Role) int {
	if role == ecs.RoleEnemy {
		return -1
	}
	return 1
}

// FindForward 沿所在列向前逐格搜索，返回射程内第一个异阵营实体
func (s *TargetingService) FindForward(self *ecs.Entity, rangeBlocks int) (*ecs.Entity, bool) {
	if self == nil || rangeBlocks <= 0 {
		return nil, false
	}
	return s.scanColumn(self.Cell(), ForwardStep(self.Role), rangeBlocks, self.Role)
}

// FindNextInLane 从 origin 的下一格开始沿 step 方向搜索第一个不属于 ownRole 的实体
// 供穿透弹体在命中后寻找下一个目标
func (s *TargetingService) FindNextInLane(origin grid.Cell, step, maxSteps int, ownRole ecs.Role) (*ecs.Entity, bool) {
	return s.scanColumn(origin, step, maxSteps, ownRole)
}

func (s *TargetingService) scanColumn(origin grid.Cell, step, maxSteps int, ownRole ecs.Role) (*ecs.Entity, bool) {
	for i := 1; i <= maxSteps; i++ {
		c := grid.NewCell(origin.Row+step*i, origin.Col)
		if !s.grid.InBounds(c) {
			break
		}
		if e, ok := s.repo.TryGetByCell(c); ok && e.Role != ownRole {
			return e, true
		}
	}
	return nil, false
}

// FindOmni 在以自身为中心、边长 2*range+1 的方形区域内（钳制到棋盘）
// 选择曼哈顿距离不超过射程的最近异阵营实体；距离相同时按行优先扫描顺序取先遇到的
func (s *TargetingService) FindOmni(self *ecs.Entity, rangeBlocks int) (*ecs.Entity, bool) {
	if self == nil || rangeBlocks <= 0 {
		return nil, false
	}
	origin := self.Cell()
	minRow := max(0, origin.Row-rangeBlocks)
	maxRow := min(s.grid.Rows()-1, origin.Row+rangeBlocks)
	minCol := max(0, origin.Col-rangeBlocks)
	maxCol := min(s.grid.Cols()-1, origin.Col+rangeBlocks)

	var best *ecs.Entity
	bestDist := rangeBlocks + 1
	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			cell := grid.NewCell(r, c)
			e, ok := s.repo.TryGetByCell(cell)
			if !ok || e.Role == self.Role {
				continue
			}
			if d := origin.Manhattan(cell); d < bestDist {
				best, bestDist = e, d
			}
		}
	}
	return best, best != nil
}
