package ecs

import (
	"sort"

	"github.com/gonewx/tdcore/pkg/grid"
)

// Repository 实体空间索引
// 维护 ID → 实体 与 单元格 → ID 两张表，每个单元格最多对应一个实体。
// 不做任何合法性校验，放置规则由调用方负责。
type Repository struct {
	byID   map[EntityID]*Entity
	byCell map[grid.Cell]EntityID
}

// NewRepository 创建空索引
func NewRepository() *Repository {
	return &Repository{
		byID:   make(map[EntityID]*Entity),
		byCell: make(map[grid.Cell]EntityID),
	}
}

// Add 把实体登记到指定单元格，并同步实体的 Cell
// 同一单元格已有其他实体时，单元格表被覆盖
func (r *Repository) Add(e *Entity, c grid.Cell) {
	if e == nil {
		return
	}
	r.byID[e.ID] = e
	r.byCell[c] = e.ID
	e.SetCell(c)
}

// Remove 移除实体
// 只有当单元格表中记录的仍是该实体时才清除单元格条目
func (r *Repository) Remove(e *Entity) {
	if e == nil {
		return
	}
	delete(r.byID, e.ID)
	if id, ok := r.byCell[e.Cell()]; ok && id == e.ID {
		delete(r.byCell, e.Cell())
	}
}

// TryGetByCell 按单元格查找实体
func (r *Repository) TryGetByCell(c grid.Cell) (*Entity, bool) {
	id, ok := r.byCell[c]
	if !ok {
		return nil, false
	}
	e, ok := r.byID[id]
	return e, ok
}

// TryGetByID 按ID查找实体
func (r *Repository) TryGetByID(id EntityID) (*Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// IsOccupied 检查单元格是否已有实体
func (r *Repository) IsOccupied(c grid.Cell) bool {
	_, ok := r.byCell[c]
	return ok
}

// Len 返回已登记实体数
func (r *Repository) Len() int { return len(r.byID) }

// Entities 返回按ID排序的实体快照
func (r *Repository) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
