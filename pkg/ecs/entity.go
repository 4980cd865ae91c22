package ecs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/grid"
)

// EntityID 是实体的唯一标识符
// 0 保留为无效ID
type EntityID uint64

// InvalidEntityID 无效实体ID
const InvalidEntityID EntityID = 0

// Role 角色阵营
type Role int

const (
	// RoleDefense 防御方（玩家放置）
	RoleDefense Role = iota
	// RoleEnemy 敌方（从顶行生成向基地移动）
	RoleEnemy
)

func (r Role) String() string {
	switch r {
	case RoleDefense:
		return "defense"
	case RoleEnemy:
		return "enemy"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// View 实体的外部表现资源（渲染对象等）
// Valid 返回 false 表示资源已被外部销毁，调度器会在下一帧把实体视为已移除
type View interface {
	Valid() bool
}

// Entity 角色实体：身份 + 原型 + 阵营 + 所在单元格 + 有序的行为插件列表
type Entity struct {
	ID        EntityID
	Archetype *config.Archetype
	Role      Role
	View      View

	cell     grid.Cell
	position mgl64.Vec3
	plugins  []Plugin
}

// NewEntity 创建实体（尚未注册到调度器）
func NewEntity(id EntityID, archetype *config.Archetype, role Role, cell grid.Cell) *Entity {
	return &Entity{
		ID:        id,
		Archetype: archetype,
		Role:      role,
		cell:      cell,
	}
}

// Cell 返回实体当前所在单元格
func (e *Entity) Cell() grid.Cell { return e.cell }

// SetCell 更新所在单元格，只应由移动插件调用
func (e *Entity) SetCell(c grid.Cell) { e.cell = c }

// Position 返回实体的世界坐标
func (e *Entity) Position() mgl64.Vec3 { return e.position }

// SetPosition 设置实体的世界坐标
func (e *Entity) SetPosition(p mgl64.Vec3) { e.position = p }

// AddPlugin 追加行为插件，执行顺序即追加顺序
func (e *Entity) AddPlugin(p Plugin) {
	if p == nil {
		return
	}
	e.plugins = append(e.plugins, p)
}

// Plugins 返回插件列表（只读）
func (e *Entity) Plugins() []Plugin { return e.plugins }

// ViewValid 没有外部表现的实体视为始终有效
func (e *Entity) ViewValid() bool {
	return e.View == nil || e.View.Valid()
}

func (e *Entity) String() string {
	arch := "?"
	if e.Archetype != nil {
		arch = e.Archetype.ID
	}
	return fmt.Sprintf("%s#%d[%s]@%s", arch, e.ID, e.Role, e.cell)
}

// FindPlugin 返回实体上第一个满足类型 T 的插件
func FindPlugin[T any](e *Entity) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	for _, p := range e.plugins {
		if t, ok := p.(T); ok {
			return t, true
		}
	}
	return zero, false
}
