package grid

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BoardSurface 棋盘在世界空间中的摆放
// Transform 把棋盘局部坐标变换到世界坐标，LocalOrigin 是网格 (0,0) 角点在局部空间中的偏移。
// 棋盘平面为局部空间的 XZ 平面，法线为局部 +Y。
type BoardSurface struct {
	Transform   mgl64.Mat4
	LocalOrigin mgl64.Vec3

	inverse mgl64.Mat4
}

// NewBoardSurface 创建棋盘表面
// transform 必须可逆（不可逆时退化为单位矩阵）
func NewBoardSurface(transform mgl64.Mat4, localOrigin mgl64.Vec3) *BoardSurface {
	if transform.Det() == 0 {
		transform = mgl64.Ident4()
	}
	return &BoardSurface{
		Transform:   transform,
		LocalOrigin: localOrigin,
		inverse:     transform.Inv(),
	}
}

// NewIdentitySurface 世界坐标即局部坐标的棋盘表面
func NewIdentitySurface() *BoardSurface {
	return NewBoardSurface(mgl64.Ident4(), mgl64.Vec3{})
}

// LocalToWorld 局部坐标 → 世界坐标
func (s *BoardSurface) LocalToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(local, s.Transform)
}

// WorldToLocal 世界坐标 → 局部坐标
func (s *BoardSurface) WorldToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(world, s.inverse)
}

// WorldPlanePoint 棋盘平面上的一点（网格原点）
func (s *BoardSurface) WorldPlanePoint() mgl64.Vec3 {
	return s.LocalToWorld(s.LocalOrigin)
}

// WorldPlaneNormal 棋盘平面的世界法线（已归一化）
func (s *BoardSurface) WorldPlaneNormal() mgl64.Vec3 {
	n := mgl64.TransformNormal(mgl64.Vec3{0, 1, 0}, s.Transform)
	if n.LenSqr() == 0 {
		return mgl64.Vec3{0, 1, 0}
	}
	return n.Normalize()
}
