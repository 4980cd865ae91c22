package ecs

// Plugin 实体的行为插件
// OnSpawn 在实体注册到调度器时调用一次，Tick 每帧调用，OnDespawn 在实体移除时调用一次。
type Plugin interface {
	OnSpawn(e *Entity)
	Tick(dt float64)
	OnDespawn()
}

// Health 生命值能力
// 武器和弹体通过这个接口结算伤害，不依赖具体插件类型
type Health interface {
	Plugin
	Current() int
	Max() int
	IsDead() bool
	ApplyDamage(amount int)
}

// HealthOf 返回实体的生命值能力
func HealthOf(e *Entity) (Health, bool) {
	return FindPlugin[Health](e)
}
