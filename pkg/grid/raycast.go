package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// rayParallelEpsilon 射线与平面近似平行的判定阈值
	rayParallelEpsilon = 1e-6
	// rayMinDistance 命中点必须位于射线起点前方的最小参数
	rayMinDistance = 1e-4
)

// Ray 射线（Dir 不要求归一化）
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At 返回射线参数 t 处的点
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// RayProvider 由输入层实现：把屏幕指针位置转换为世界射线
type RayProvider interface {
	PointerToRay(x, y float64) Ray
}

// RayPlane 射线与平面求交
// 平行或交点在射线后方时返回 false
func RayPlane(ray Ray, planePoint, planeNormal mgl64.Vec3) (mgl64.Vec3, bool) {
	denom := planeNormal.Dot(ray.Dir)
	if math.Abs(denom) < rayParallelEpsilon {
		return mgl64.Vec3{}, false
	}
	t := planePoint.Sub(ray.Origin).Dot(planeNormal) / denom
	if t < rayMinDistance {
		return mgl64.Vec3{}, false
	}
	return ray.At(t), true
}

// AABB 轴对齐包围盒
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB 由中心和半尺寸创建包围盒
func NewAABB(center, halfExtents mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// IntersectRay 射线与包围盒求交（slab 算法）
// 返回最近的非负命中参数；起点在盒内时 t=0
func (b AABB) IntersectRay(ray Ray) (float64, bool) {
	tMin := 0.0
	tMax := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o, d := ray.Origin[axis], ray.Dir[axis]
		lo, hi := b.Min[axis], b.Max[axis]
		if math.Abs(d) < rayParallelEpsilon {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}
