package grid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoardGrid 棋盘网格
//
// 职责：
//   - 单元格与棋盘局部坐标之间的换算（局部坐标的 XZ 平面即棋盘平面）
//   - 划定防御单位可放置区域（靠近基地的下半部分行）
//   - 维护一份粗粒度的占用位图
//
// 注意：占用位图只是旧的预留通道，放置合法性以 ecs.Repository 为准。
type BoardGrid struct {
	size     GridSize
	cellSize float64
	occupied [][]bool // [row][col]
}

// NewBoardGrid 创建棋盘网格
// 参数:
//   - rows, cols: 行数和列数，必须为正
//   - cellSize: 单元格边长（世界单位），必须为正
//
// 返回:
//   - *BoardGrid: 网格实例
//   - error: 尺寸非法时返回（属于配置错误，调用方应终止初始化）
func NewBoardGrid(rows, cols int, cellSize float64) (*BoardGrid, error) {
	size, err := NewGridSize(rows, cols)
	if err != nil {
		return nil, err
	}
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}

	occupied := make([][]bool, rows)
	for r := range occupied {
		occupied[r] = make([]bool, cols)
	}

	return &BoardGrid{
		size:     size,
		cellSize: cellSize,
		occupied: occupied,
	}, nil
}

// Size 返回棋盘尺寸
func (g *BoardGrid) Size() GridSize { return g.size }

// Rows 返回行数
func (g *BoardGrid) Rows() int { return g.size.Rows }

// Cols 返回列数
func (g *BoardGrid) Cols() int { return g.size.Cols }

// CellSize 返回单元格边长
func (g *BoardGrid) CellSize() float64 { return g.cellSize }

// InBounds 检查单元格是否在棋盘范围内
func (g *BoardGrid) InBounds(c Cell) bool {
	return g.size.Contains(c)
}

// PlaceableRowCount 返回可放置防御单位的行数（下半部分）
func (g *BoardGrid) PlaceableRowCount() int {
	return g.size.Rows / 2
}

// IsOccupied 查询占用位图
// 越界单元格返回 false
func (g *BoardGrid) IsOccupied(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.occupied[c.Row][c.Col]
}

// TryOccupy 尝试占用单元格
// 越界或已被占用时返回 false
func (g *BoardGrid) TryOccupy(c Cell) bool {
	if !g.InBounds(c) || g.occupied[c.Row][c.Col] {
		return false
	}
	g.occupied[c.Row][c.Col] = true
	return true
}

// Free 释放单元格，越界时忽略
func (g *BoardGrid) Free(c Cell) {
	if !g.InBounds(c) {
		return
	}
	g.occupied[c.Row][c.Col] = false
}

// IsDefensePlacementAllowed 位图视角下的放置检查：
// 在范围内、位于可放置区域、且位图未占用
func (g *BoardGrid) IsDefensePlacementAllowed(c Cell) bool {
	return g.InBounds(c) && c.Row < g.PlaceableRowCount() && !g.occupied[c.Row][c.Col]
}

// CellToLocalCenter 返回单元格中心的局部坐标（Y 恒为 0）
// 不做越界检查，调用方负责传入合法单元格
func (g *BoardGrid) CellToLocalCenter(c Cell) mgl64.Vec3 {
	return mgl64.Vec3{
		(float64(c.Col) + 0.5) * g.cellSize,
		0,
		(float64(c.Row) + 0.5) * g.cellSize,
	}
}

// TryLocalToCell 将局部坐标换算为单元格
// 落在棋盘外时返回 false
func (g *BoardGrid) TryLocalToCell(local mgl64.Vec3) (Cell, bool) {
	col := int(math.Floor(local.X() / g.cellSize))
	row := int(math.Floor(local.Z() / g.cellSize))
	c := Cell{Row: row, Col: col}
	if !g.InBounds(c) {
		return Cell{}, false
	}
	return c, true
}
