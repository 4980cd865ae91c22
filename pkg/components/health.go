package components

import (
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
)

// HealthPlugin 生命值插件
// 伤害把当前生命值扣到 0 时发布一次 CharacterDied，之后不再响应伤害
type HealthPlugin struct {
	bus    *events.Bus
	entity *ecs.Entity

	current int
	max     int
	dead    bool
}

// NewHealthPlugin 创建生命值插件，最大生命值至少为 1
func NewHealthPlugin(bus *events.Bus, maxHealth int) *HealthPlugin {
	if maxHealth < 1 {
		maxHealth = 1
	}
	return &HealthPlugin{bus: bus, current: maxHealth, max: maxHealth}
}

func (h *HealthPlugin) OnSpawn(e *ecs.Entity) {
	h.entity = e
	h.current = h.max
	h.dead = false
}

func (h *HealthPlugin) Tick(float64) {}

func (h *HealthPlugin) OnDespawn() {}

// Current 当前生命值
func (h *HealthPlugin) Current() int { return h.current }

// Max 最大生命值
func (h *HealthPlugin) Max() int { return h.max }

// IsDead 是否已死亡
func (h *HealthPlugin) IsDead() bool { return h.dead }

// ApplyDamage 结算伤害
// 非正伤害、未生成或已死亡时忽略
func (h *HealthPlugin) ApplyDamage(amount int) {
	if amount <= 0 || h.entity == nil || h.dead {
		return
	}
	h.current -= amount
	if h.current > 0 {
		return
	}
	h.current = 0
	h.dead = true
	events.Publish(h.bus, events.CharacterDied{Entity: h.entity})
}
