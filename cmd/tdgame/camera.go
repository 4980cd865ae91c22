package main

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/tdcore/pkg/grid"
)

const (
	pixelsPerCell = 72
	marginX       = 40
	marginTop     = 56
	tokenStrip    = 2 // 棋盘下方令牌区的高度（格）
)

// camera 俯视正交相机
// 棋盘局部 X 向右，局部 Z（行号增大）向屏幕上方，行 0 贴近屏幕底部
type camera struct {
	originX float64 // 局部 x=0 的屏幕横坐标
	originY float64 // 局部 z=0 的屏幕纵坐标
	scale   float64 // 每世界单位的像素数

	width, height int
}

func newCamera(rows, cols int, cellSize float64) *camera {
	boardH := rows * pixelsPerCell
	return &camera{
		originX: marginX,
		originY: float64(marginTop + boardH),
		scale:   pixelsPerCell / cellSize,
		width:   cols*pixelsPerCell + 2*marginX,
		height:  marginTop + boardH + tokenStrip*pixelsPerCell,
	}
}

// PointerToRay 屏幕坐标 → 自上而下的世界射线
func (c *camera) PointerToRay(x, y float64) grid.Ray {
	wx := (x - c.originX) / c.scale
	wz := (c.originY - y) / c.scale
	return grid.Ray{Origin: mgl64.Vec3{wx, 10, wz}, Dir: mgl64.Vec3{0, -1, 0}}
}

// toScreen 世界坐标 → 屏幕坐标（忽略高度）
func (c *camera) toScreen(v mgl64.Vec3) (float32, float32) {
	return float32(c.originX + v.X()*c.scale), float32(c.originY - v.Z()*c.scale)
}

// cellRect 单元格在屏幕上的矩形（左上角 + 宽高）
func (c *camera) cellRect(g *grid.BoardGrid, cell grid.Cell) (x, y, w, h float32) {
	size := g.CellSize() * c.scale
	x = float32(c.originX + float64(cell.Col)*size)
	y = float32(c.originY - float64(cell.Row+1)*size)
	return x, y, float32(size), float32(size)
}

// cursor 用鼠标位置作为指针，光标移出画面时视为没有指针
type cursor struct {
	cam *camera
}

func (c cursor) PointerPosition() (float64, float64, bool) {
	x, y := ebiten.CursorPosition()
	if x < 0 || y < 0 || x >= c.cam.width || y >= c.cam.height {
		return 0, 0, false
	}
	return float64(x), float64(y), true
}
