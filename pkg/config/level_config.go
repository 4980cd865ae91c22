package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MinSpawnInterval 同一波次两次生成之间的最小间隔（秒）
const MinSpawnInterval = 0.05

// LevelConfig 关卡配置数据结构
// 对应 data/levels/*.yaml
type LevelConfig struct {
	ID          string         `yaml:"id"`          // 关卡ID，如 "1-1"
	Name        string         `yaml:"name"`        // 关卡名称
	Description string         `yaml:"description"` // 关卡描述（可选）

	// BaseHealth 基地生命值
	// 0 表示不追踪基地生命值：第一个到达基地的敌人即判负
	BaseHealth int `yaml:"baseHealth"`

	Defenses []DefenseStock `yaml:"defenses"` // 可放置的防御单位及库存
	Waves    []WaveConfig   `yaml:"waves"`    // 敌人波次
}

// DefenseStock 防御单位库存条目
type DefenseStock struct {
	Archetype string `yaml:"archetype"` // 原型ID
	Count     int    `yaml:"count"`     // 本关可放置的总数量
}

// WaveConfig 单个敌人波次
type WaveConfig struct {
	Archetype     string  `yaml:"archetype"`     // 敌人原型ID
	Count         int     `yaml:"count"`         // 生成数量
	SpawnInterval float64 `yaml:"spawnInterval"` // 生成间隔（秒）
	StartDelay    float64 `yaml:"startDelay"`    // 关卡开始到本波首次生成的延迟（秒）
}

// PlannedEnemies 返回本关计划生成的敌人总数
func (c *LevelConfig) PlannedEnemies() int {
	total := 0
	for _, w := range c.Waves {
		total += w.Count
	}
	return total
}

// LoadLevelConfig 从YAML文件加载关卡配置
// 参数:
//   - filepath: YAML文件路径
//
// 返回:
//   - *LevelConfig: 解析后的关卡配置
//   - error: 文件不存在、格式错误或缺少必填字段时返回
func LoadLevelConfig(filepath string) (*LevelConfig, error) {
	// 读取文件内容
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}

	levelConfig, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid level config in %s: %w", filepath, err)
	}
	return levelConfig, nil
}

// ParseLevelConfig 解析YAML格式的关卡配置
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}

	// 应用默认值
	applyDefaults(&levelConfig)

	// 验证必填字段
	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, err
	}

	return &levelConfig, nil
}

// applyDefaults 为可选字段填充默认值
func applyDefaults(config *LevelConfig) {
	if config.Name == "" {
		config.Name = config.ID
	}
	if config.BaseHealth < 0 {
		config.BaseHealth = 0
	}
	for i := range config.Waves {
		w := &config.Waves[i]
		if w.SpawnInterval < MinSpawnInterval {
			w.SpawnInterval = MinSpawnInterval
		}
		if w.StartDelay < 0 {
			w.StartDelay = 0
		}
	}
}

// validateLevelConfig 验证关卡配置的必填字段和取值范围
func validateLevelConfig(config *LevelConfig) error {
	if config.ID == "" {
		return fmt.Errorf("level ID is required")
	}

	for i, d := range config.Defenses {
		if d.Archetype == "" {
			return fmt.Errorf("defenses[%d]: archetype is required", i)
		}
		if d.Count < 0 {
			return fmt.Errorf("defenses[%d]: count cannot be negative, got %d", i, d.Count)
		}
	}

	for i, w := range config.Waves {
		if w.Archetype == "" {
			return fmt.Errorf("wave %d: archetype is required", i)
		}
		if w.Count < 1 {
			return fmt.Errorf("wave %d: count must be at least 1, got %d", i, w.Count)
		}
	}

	return nil
}

// ValidateAgainst 检查关卡引用的原型是否存在于目录中、且阵营正确
func (c *LevelConfig) ValidateAgainst(catalog *Catalog) error {
	for i, d := range c.Defenses {
		a, err := catalog.Lookup(d.Archetype)
		if err != nil {
			return fmt.Errorf("level %s defenses[%d]: %w", c.ID, i, err)
		}
		if a.Enemy {
			return fmt.Errorf("level %s defenses[%d]: archetype %q is an enemy", c.ID, i, a.ID)
		}
	}
	for i, w := range c.Waves {
		a, err := catalog.Lookup(w.Archetype)
		if err != nil {
			return fmt.Errorf("level %s wave %d: %w", c.ID, i, err)
		}
		if !a.Enemy {
			return fmt.Errorf("level %s wave %d: archetype %q is not an enemy", c.ID, i, a.ID)
		}
	}
	return nil
}
