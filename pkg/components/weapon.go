package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
)

// WeaponPlugin 武器插件：冷却计时 + 开火
// 即时命中模式下直接结算伤害；弹体模式下只发布 AttackPerformed，由弹体系统负责飞行和结算
type WeaponPlugin struct {
	bus    *events.Bus
	cfg    *config.WeaponConfig
	entity *ecs.Entity

	cooldown float64
}

// NewWeaponPlugin 创建武器插件
func NewWeaponPlugin(bus *events.Bus, cfg *config.WeaponConfig) *WeaponPlugin {
	return &WeaponPlugin{bus: bus, cfg: cfg}
}

func (w *WeaponPlugin) OnSpawn(e *ecs.Entity) {
	w.entity = e
	w.cooldown = 0
}

// Tick 递减冷却
func (w *WeaponPlugin) Tick(dt float64) {
	w.cooldown -= dt
}

func (w *WeaponPlugin) OnDespawn() {}

// IsReady 冷却完毕即可开火
func (w *WeaponPlugin) IsReady() bool { return w.cooldown <= 0 }

// Cooldown 剩余冷却时间（秒），可能为负
func (w *WeaponPlugin) Cooldown() float64 { return w.cooldown }

// RangeBlocks 射程（格）
func (w *WeaponPlugin) RangeBlocks() int { return w.cfg.RangeBlocks }

// Direction 索敌方式
func (w *WeaponPlugin) Direction() config.AttackDirection { return w.cfg.Direction }

// Config 武器配置
func (w *WeaponPlugin) Config() *config.WeaponConfig { return w.cfg }

// TryFireAt 尝试向目标开火
// 目标为空、冷却未完成或超出射程（曼哈顿距离）时返回 false
func (w *WeaponPlugin) TryFireAt(target *ecs.Entity) bool {
	if target == nil || w.entity == nil || !w.IsReady() {
		return false
	}
	if w.entity.Cell().Manhattan(target.Cell()) > w.cfg.RangeBlocks {
		return false
	}

	offset := w.cfg.MuzzleOffset
	muzzle := w.entity.Position().Add(mgl64.Vec3{offset[0], offset[1], offset[2]})
	proj := w.cfg.Projectile

	events.Publish(w.bus, events.AttackPerformed{
		SourceID:       w.entity.ID,
		TargetID:       target.ID,
		SourceRole:     w.entity.Role,
		Muzzle:         muzzle,
		TargetPoint:    target.Position(),
		Damage:         proj.Damage,
		ProjectileMode: w.cfg.ProjectileMode,
		Speed:          proj.Speed,
		PierceCount:    proj.PierceCount,
		SplashRadius:   proj.SplashRadius,
	})

	if !w.cfg.ProjectileMode {
		if h, ok := ecs.HealthOf(target); ok {
			h.ApplyDamage(proj.Damage)
		}
	}

	w.cooldown = w.cfg.Cooldown()
	return true
}
