package entities

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/components"
	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

// ViewPool 外部表现资源的分配器（渲染层实现）
// 模拟核心只在生成时 Acquire、在移除时 Release，不关心具体分配策略
type ViewPool interface {
	Acquire(e *ecs.Entity) ecs.View
	Release(v ecs.View)
}

// CharacterFactory 角色工厂
// 负责分配实体ID、按原型挂载默认插件、登记到空间索引并注册到调度器
type CharacterFactory struct {
	ids       *ecs.IDAllocator
	projector *grid.GridProjector
	repo      *ecs.Repository
	bus       *events.Bus
	scheduler *ecs.CharacterSystem
	targeting *components.TargetingService
	views     ViewPool
}

// NewCharacterFactory 创建角色工厂
// views 可为 nil（无头模式）
func NewCharacterFactory(
	projector *grid.GridProjector,
	repo *ecs.Repository,
	bus *events.Bus,
	scheduler *ecs.CharacterSystem,
	targeting *components.TargetingService,
	views ViewPool,
) *CharacterFactory {
	return &CharacterFactory{
		ids:       ecs.NewIDAllocator(),
		projector: projector,
		repo:      repo,
		bus:       bus,
		scheduler: scheduler,
		targeting: targeting,
		views:     views,
	}
}

// Spawn 在单元格上生成角色
// 阵营由原型决定；生成后实体已登记到空间索引并注册到调度器
//
// 参数:
//   - archetype: 角色原型
//   - cell: 目标单元格（必须在棋盘范围内）
//
// 返回:
//   - *ecs.Entity: 生成的实体
//   - error: 原型为空或单元格越界时返回
func (f *CharacterFactory) Spawn(archetype *config.Archetype, cell grid.Cell) (*ecs.Entity, error) {
	if archetype == nil {
		return nil, fmt.Errorf("archetype cannot be nil")
	}
	if !f.projector.Grid().InBounds(cell) {
		return nil, fmt.Errorf("cannot spawn %s at %s: out of bounds", archetype.ID, cell)
	}

	role := ecs.RoleDefense
	if archetype.Enemy {
		role = ecs.RoleEnemy
	}

	e := ecs.NewEntity(f.ids.Next(), archetype, role, cell)
	e.SetPosition(f.projector.CellToWorldCenter(cell))
	f.attachDefaultPlugins(e)

	if f.views != nil {
		e.View = f.views.Acquire(e)
	}

	f.repo.Add(e, cell)
	f.scheduler.Register(e)

	log.Debug().Msgf("[CharacterFactory] spawned %s", e)
	return e, nil
}

// ReleaseView 归还实体的外部表现资源
func (f *CharacterFactory) ReleaseView(e *ecs.Entity) {
	if e == nil || e.View == nil {
		return
	}
	if f.views != nil {
		f.views.Release(e.View)
	}
	e.View = nil
}

// attachDefaultPlugins 按原型挂载插件
//   - 所有角色：生命值
//   - 有移动速度的敌人：移动
//   - 配置了武器的角色：武器 + 远程攻击（武器先 Tick，冷却先于索敌结算）
func (f *CharacterFactory) attachDefaultPlugins(e *ecs.Entity) {
	a := e.Archetype
	e.AddPlugin(components.NewHealthPlugin(f.bus, a.BaseHealth))

	if e.Role == ecs.RoleEnemy && a.MoveSpeed > 0 {
		e.AddPlugin(components.NewMovementPlugin(f.projector, f.repo, f.bus, a.MoveSpeed))
	}

	if a.Weapon != nil {
		weapon := components.NewWeaponPlugin(f.bus, a.Weapon)
		ranged := components.NewRangedAttackPlugin(f.targeting)
		ranged.BindWeapon(weapon)
		e.AddPlugin(weapon)
		e.AddPlugin(ranged)
	}
}
