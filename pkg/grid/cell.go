package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGridSize 行数或列数不为正
	ErrInvalidGridSize = errors.New("grid rows and cols must be positive")
	// ErrInvalidCellSize 单元格尺寸不为正
	ErrInvalidCellSize = errors.New("grid cell size must be positive")
)

// Cell 棋盘上的离散坐标
// Row 从底部（玩家基地一侧）开始计数，Col 从左侧开始
type Cell struct {
	Row int
	Col int
}

// NewCell 创建单元格坐标
func NewCell(row, col int) Cell {
	return Cell{Row: row, Col: col}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Manhattan 返回两个单元格之间的曼哈顿距离
func (c Cell) Manhattan(other Cell) int {
	return absInt(c.Row-other.Row) + absInt(c.Col-other.Col)
}

// GridSize 棋盘尺寸（行 × 列）
type GridSize struct {
	Rows int
	Cols int
}

// NewGridSize 创建棋盘尺寸
// 行数或列数不为正时返回 ErrInvalidGridSize
func NewGridSize(rows, cols int) (GridSize, error) {
	if rows <= 0 || cols <= 0 {
		return GridSize{}, fmt.Errorf("%w: rows=%d cols=%d", ErrInvalidGridSize, rows, cols)
	}
	return GridSize{Rows: rows, Cols: cols}, nil
}

// Contains 检查单元格是否在尺寸范围内
func (s GridSize) Contains(c Cell) bool {
	return c.Row >= 0 && c.Row < s.Rows && c.Col >= 0 && c.Col < s.Cols
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
