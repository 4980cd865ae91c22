package events

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/grid"
)

// HoverCellChanged 指针悬停的单元格或命中点变化
// HasCell 为 false 表示指针离开了棋盘
type HoverCellChanged struct {
	Cell    grid.Cell
	HasCell bool
	World   mgl64.Vec3
}

// CharacterSelected 玩家选择了一种防御单位，进入放置预览
type CharacterSelected struct {
	Archetype *config.Archetype
}

// PlacementModeChanged 放置模式开关
type PlacementModeChanged struct {
	Active bool
}

// CharacterPlaced 防御单位放置成功
type CharacterPlaced struct {
	Archetype *config.Archetype
	EntityID  ecs.EntityID
	Cell      grid.Cell
}

// CharacterDied 实体生命值归零（或被判定为移除，如敌人抵达基地）
type CharacterDied struct {
	Entity *ecs.Entity
}

// CharacterDespawned 实体已从调度器和空间索引中移除
type CharacterDespawned struct {
	EntityID ecs.EntityID
	Role     ecs.Role
}

// EnemySpawned 敌人生成
type EnemySpawned struct {
	EntityID ecs.EntityID
	Cell     grid.Cell
}

// EnemyReachedBase 敌人抵达基地
type EnemyReachedBase struct {
	Enemy *ecs.Entity
}

// BaseDamaged 基地受到伤害
// Enemy 是造成伤害的敌人
type BaseDamaged struct {
	Amount    int
	CurrentHP int
	Enemy     *ecs.Entity
}

// AttackPerformed 武器开火
type AttackPerformed struct {
	SourceID       ecs.EntityID
	TargetID       ecs.EntityID
	SourceRole     ecs.Role
	Muzzle         mgl64.Vec3
	TargetPoint    mgl64.Vec3
	Damage         int
	ProjectileMode bool
	Speed          float64
	PierceCount    int
	SplashRadius   float64
}

// ProjectileHit 弹体命中目标
type ProjectileHit struct {
	ProjectileID uint64
	SourceID     ecs.EntityID
	TargetID     ecs.EntityID
	Damage       int
	Point        mgl64.Vec3
}

// GameWon 所有计划中的敌人都已生成并被消灭
type GameWon struct{}

// GameLost 基地失守
type GameLost struct {
	Reason string
}
