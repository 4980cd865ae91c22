package game

import (
	"fmt"

	"github.com/gonewx/tdcore/pkg/config"
)

// LevelRuntime 关卡运行时数据
// 由 LevelConfig 和原型目录解析而来：防御单位名单及剩余库存、敌人波次
type LevelRuntime struct {
	ID         string
	Name       string
	BaseHealth int

	defenses  []*config.Archetype
	remaining map[string]int
	waves     []Wave
}

// Wave 解析后的敌人波次
type Wave struct {
	Archetype     *config.Archetype
	Count         int
	SpawnInterval float64
	StartDelay    float64
}

// NewLevelRuntime 解析关卡配置
// 关卡引用了目录中不存在或阵营不符的原型时返回错误
func NewLevelRuntime(cfg *config.LevelConfig, catalog *config.Catalog) (*LevelRuntime, error) {
	if cfg == nil || catalog == nil {
		return nil, fmt.Errorf("level config and catalog are required")
	}
	if err := cfg.ValidateAgainst(catalog); err != nil {
		return nil, err
	}

	lr := &LevelRuntime{
		ID:         cfg.ID,
		Name:       cfg.Name,
		BaseHealth: cfg.BaseHealth,
		remaining:  make(map[string]int),
	}

	for _, d := range cfg.Defenses {
		a, _ := catalog.Get(d.Archetype)
		if _, seen := lr.remaining[a.ID]; !seen {
			lr.defenses = append(lr.defenses, a)
		}
		lr.remaining[a.ID] += d.Count
	}

	for _, w := range cfg.Waves {
		a, _ := catalog.Get(w.Archetype)
		lr.waves = append(lr.waves, Wave{
			Archetype:     a,
			Count:         w.Count,
			SpawnInterval: w.SpawnInterval,
			StartDelay:    w.StartDelay,
		})
	}

	return lr, nil
}

// Defenses 返回防御单位名单（按配置顺序，去重）
func (lr *LevelRuntime) Defenses() []*config.Archetype {
	return lr.defenses
}

// Waves 返回敌人波次
func (lr *LevelRuntime) Waves() []Wave {
	return lr.waves
}

// PlannedEnemies 返回计划生成的敌人总数
func (lr *LevelRuntime) PlannedEnemies() int {
	total := 0
	for _, w := range lr.waves {
		total += w.Count
	}
	return total
}

// Remaining 返回原型的剩余库存
func (lr *LevelRuntime) Remaining(archetypeID string) int {
	return lr.remaining[archetypeID]
}

// TryConsume 消耗一个库存，库存不足时返回 false
func (lr *LevelRuntime) TryConsume(archetypeID string) bool {
	if lr.remaining[archetypeID] <= 0 {
		return false
	}
	lr.remaining[archetypeID]--
	return true
}
