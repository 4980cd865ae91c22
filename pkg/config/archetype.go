package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Combat Configuration (战斗配置下限)
const (
	// MinFireRate 射速下限（次/秒），冷却时间 = 1 / max(MinFireRate, FireRate)
	MinFireRate = 0.05

	// MinProjectileSpeed 弹体速度下限（世界单位/秒）
	MinProjectileSpeed = 0.1

	// MinBaseHealth 角色生命值下限
	MinBaseHealth = 1

	// MinProjectileDamage 单次伤害下限
	MinProjectileDamage = 1
)

// AttackDirection 索敌方式
type AttackDirection int

const (
	// DirectionForward 沿所在列向敌方一侧直线索敌
	DirectionForward AttackDirection = iota
	// DirectionOmni 在射程方形范围内选择曼哈顿距离最近的目标
	DirectionOmni
)

func (d AttackDirection) String() string {
	switch d {
	case DirectionOmni:
		return "omni"
	default:
		return "forward"
	}
}

// UnmarshalYAML 支持 "forward" / "omni" 两种写法
func (d *AttackDirection) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward":
		*d = DirectionForward
	case "omni", "omnidirectional":
		*d = DirectionOmni
	default:
		return fmt.Errorf("direction must be one of: forward, omni, got %q", s)
	}
	return nil
}

// MarshalYAML 输出可读的方向名称
func (d AttackDirection) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// ProjectileConfig 弹体参数
type ProjectileConfig struct {
	Damage       int     `yaml:"damage"`       // 命中伤害
	Speed        float64 `yaml:"speed"`        // 飞行速度（世界单位/秒）
	PierceCount  int     `yaml:"pierceCount"`  // 额外可穿透目标数，0 表示命中即消失
	SplashRadius float64 `yaml:"splashRadius"` // 溅射半径，目前只记录不结算
}

// WeaponConfig 武器参数
type WeaponConfig struct {
	FireRate       float64          `yaml:"fireRate"`       // 射速（次/秒）
	RangeBlocks    int              `yaml:"rangeBlocks"`    // 射程（格，曼哈顿距离）
	Direction      AttackDirection  `yaml:"direction"`      // 索敌方式
	ProjectileMode bool             `yaml:"projectileMode"` // true: 发射弹体; false: 即时命中
	MuzzleOffset   [3]float64       `yaml:"muzzleOffset"`   // 枪口相对角色位置的偏移
	Projectile     ProjectileConfig `yaml:"projectile"`
}

// Cooldown 返回两次开火之间的间隔（秒）
func (w *WeaponConfig) Cooldown() float64 {
	rate := w.FireRate
	if rate < MinFireRate {
		rate = MinFireRate
	}
	return 1 / rate
}

// Archetype 角色原型（静态配置）
type Archetype struct {
	ID          string        `yaml:"id"`
	DisplayName string        `yaml:"displayName"`
	Enemy       bool          `yaml:"enemy"`
	BaseHealth  int           `yaml:"baseHealth"`
	MoveSpeed   float64       `yaml:"moveSpeed"` // 格/秒，0 表示静止
	Bounds      [3]float64    `yaml:"bounds"`    // 选择令牌的半尺寸
	Weapon      *WeaponConfig `yaml:"weapon,omitempty"`
}

// applyArchetypeDefaults 填充缺省值并把数值钳制到合法范围
func applyArchetypeDefaults(a *Archetype) {
	if a.DisplayName == "" {
		a.DisplayName = a.ID
	}
	if a.BaseHealth < MinBaseHealth {
		a.BaseHealth = MinBaseHealth
	}
	if a.MoveSpeed < 0 {
		a.MoveSpeed = 0
	}
	if a.Bounds == [3]float64{} {
		a.Bounds = [3]float64{0.3, 0.3, 0.3}
	}

	if a.Weapon == nil {
		return
	}
	w := a.Weapon
	if w.FireRate == 0 {
		w.FireRate = 1
	}
	if w.FireRate < MinFireRate {
		w.FireRate = MinFireRate
	}
	if w.RangeBlocks < 0 {
		w.RangeBlocks = 0
	}
	if w.Projectile.Damage < MinProjectileDamage {
		w.Projectile.Damage = MinProjectileDamage
	}
	if w.Projectile.Speed == 0 {
		w.Projectile.Speed = 8
	}
	if w.Projectile.Speed < MinProjectileSpeed {
		w.Projectile.Speed = MinProjectileSpeed
	}
	if w.Projectile.PierceCount < 0 {
		w.Projectile.PierceCount = 0
	}
	if w.Projectile.SplashRadius < 0 {
		w.Projectile.SplashRadius = 0
	}
}
