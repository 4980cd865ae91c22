package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings 运行时设置（棋盘尺寸、时间步长、数据文件路径等）
type Settings struct {
	Board BoardSettings `mapstructure:"board"`
	Sim   SimSettings   `mapstructure:"sim"`
	Data  DataSettings  `mapstructure:"data"`

	LogLevel string `mapstructure:"logLevel"`
}

// BoardSettings 棋盘尺寸
type BoardSettings struct {
	Rows     int     `mapstructure:"rows"`
	Cols     int     `mapstructure:"cols"`
	CellSize float64 `mapstructure:"cellSize"`
}

// SimSettings 模拟参数
type SimSettings struct {
	TickRate   int     `mapstructure:"tickRate"`   // 每秒 tick 数
	MaxSeconds float64 `mapstructure:"maxSeconds"` // 无头运行的最长模拟时间
	Seed       int64   `mapstructure:"seed"`       // 敌人生成列的随机种子
}

// DataSettings 数据文件路径
type DataSettings struct {
	Catalog string `mapstructure:"catalog"`
	Level   string `mapstructure:"level"`
}

// TickSeconds 返回固定时间步长（秒）
func (s SimSettings) TickSeconds() float64 {
	if s.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / float64(s.TickRate)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")

	v.SetDefault("board.rows", 4)
	v.SetDefault("board.cols", 8)
	v.SetDefault("board.cellSize", 1.0)

	v.SetDefault("sim.tickRate", 60)
	v.SetDefault("sim.maxSeconds", 300.0)
	v.SetDefault("sim.seed", 1)

	v.SetDefault("data.catalog", "data/archetypes.yaml")
	v.SetDefault("data.level", "data/levels/level-1.yaml")
}

// LoadSettings 读取运行时设置
// configDir 中的 tdcore.yaml（可选）覆盖默认值，环境变量 TD_* 再覆盖文件
// （如 TD_BOARD_ROWS、TD_LOGLEVEL）。
func LoadSettings(configDir string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("tdcore")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.SetEnvPrefix("TD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if s.Board.Rows <= 0 || s.Board.Cols <= 0 {
		return nil, fmt.Errorf("board size must be positive, got %dx%d", s.Board.Rows, s.Board.Cols)
	}
	if s.Board.CellSize <= 0 {
		return nil, fmt.Errorf("board cellSize must be positive, got %v", s.Board.CellSize)
	}
	return &s, nil
}
