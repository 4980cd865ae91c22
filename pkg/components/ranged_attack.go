package components

import (
	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
)

// RangedAttackPlugin 每帧索敌并驱动武器开火
// 必须在构造后通过 BindWeapon 绑定同一实体上的武器
type RangedAttackPlugin struct {
	targeting *TargetingService
	weapon    *WeaponPlugin
	entity    *ecs.Entity
}

// NewRangedAttackPlugin 创建远程攻击插件
func NewRangedAttackPlugin(targeting *TargetingService) *RangedAttackPlugin {
	return &RangedAttackPlugin{targeting: targeting}
}

// BindWeapon 绑定武器
func (r *RangedAttackPlugin) BindWeapon(w *WeaponPlugin) {
	r.weapon = w
}

func (r *RangedAttackPlugin) OnSpawn(e *ecs.Entity) {
	r.entity = e
}

// Tick 武器就绪时索敌，找到目标才开火
func (r *RangedAttackPlugin) Tick(float64) {
	if r.weapon == nil || r.entity == nil || !r.weapon.IsReady() {
		return
	}
	if target, ok := r.Acquire(); ok {
		r.weapon.TryFireAt(target)
	}
}

func (r *RangedAttackPlugin) OnDespawn() {}

// Acquire 按武器配置的方向和射程索敌
func (r *RangedAttackPlugin) Acquire() (*ecs.Entity, bool) {
	if r.weapon == nil {
		return nil, false
	}
	switch r.weapon.Direction() {
	case config.DirectionOmni:
		return r.targeting.FindOmni(r.entity, r.weapon.RangeBlocks())
	default:
		return r.targeting.FindForward(r.entity, r.weapon.RangeBlocks())
	}
}
