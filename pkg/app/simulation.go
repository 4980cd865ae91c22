// Package app 组装模拟核心
//
// Simulation 持有网格、空间索引、调度器、事件总线和所有系统，
// 无头运行器（cmd/tdsim）和调试窗口（cmd/tdgame）共用同一套装配逻辑。
package app

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/gonewx/tdcore/pkg/components"
	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/entities"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/game"
	"github.com/gonewx/tdcore/pkg/grid"
	"github.com/gonewx/tdcore/pkg/systems"
)

// Options 模拟的装配参数
type Options struct {
	Rows     int
	Cols     int
	CellSize float64

	// Surface 棋盘在世界中的位姿，nil 表示世界坐标即局部坐标
	Surface *grid.BoardSurface

	Catalog *config.Catalog
	Level   *config.LevelConfig

	// Seed 敌人生成列的随机种子
	Seed int64

	// 以下为可选的外部接口，无头模式下全部为 nil
	Rays    grid.RayProvider
	Pointer systems.Pointer
	Views   entities.ViewPool

	// TokenLayout 令牌排布，仅在 Rays 不为 nil 时使用
	TokenLayout *systems.TokenLayout

	// MeterProvider 事件计数器的输出，nil 时使用全局 provider
	MeterProvider metric.MeterProvider
}

// OptionsFromSettings 用运行时设置填充棋盘尺寸和随机种子
func OptionsFromSettings(s *config.Settings, catalog *config.Catalog, level *config.LevelConfig) Options {
	return Options{
		Rows:     s.Board.Rows,
		Cols:     s.Board.Cols,
		CellSize: s.Board.CellSize,
		Catalog:  catalog,
		Level:    level,
		Seed:     s.Sim.Seed,
	}
}

// Simulation 模拟核心的组合根
type Simulation struct {
	grid      *grid.BoardGrid
	projector *grid.GridProjector
	repo      *ecs.Repository
	scheduler *ecs.CharacterSystem
	bus       *events.Bus
	targeting *components.TargetingService
	factory   *entities.CharacterFactory
	validator *systems.PlacementValidator

	catalog *config.Catalog
	level   *game.LevelRuntime

	lifetime    *systems.LifetimeSystem
	baseHealth  *systems.BaseHealthSystem
	gameState   *systems.GameStateSystem
	spawner     *systems.EnemySpawnSystem
	projectiles *systems.ProjectileSystem
	preview     *systems.PlacementPreviewService
	placement   *systems.PlacementControllerSystem
	hover       *systems.PointerHoverSystem
	selection   *systems.CharacterSelectionSystem
	metrics     *systems.MetricsSystem

	runner  *systems.SystemRunner
	elapsed float64
}

// NewSimulation 按选项装配模拟
func NewSimulation(opts Options) (*Simulation, error) {
	if opts.Catalog == nil || opts.Level == nil {
		return nil, fmt.Errorf("catalog and level are required")
	}

	g, err := grid.NewBoardGrid(opts.Rows, opts.Cols, opts.CellSize)
	if err != nil {
		log.Error().Err(err).Msg("[Simulation] invalid board")
		return nil, fmt.Errorf("creating board: %w", err)
	}

	level, err := game.NewLevelRuntime(opts.Level, opts.Catalog)
	if err != nil {
		log.Error().Err(err).Str("level", opts.Level.ID).Msg("[Simulation] invalid level")
		return nil, fmt.Errorf("loading level %s: %w", opts.Level.ID, err)
	}

	s := &Simulation{
		grid:      g,
		projector: grid.NewGridProjector(g, opts.Surface),
		repo:      ecs.NewRepository(),
		scheduler: ecs.NewCharacterSystem(),
		bus:       events.NewBus(),
		catalog:   opts.Catalog,
		level:     level,
	}
	s.targeting = components.NewTargetingService(g, s.repo)
	s.factory = entities.NewCharacterFactory(s.projector, s.repo, s.bus, s.scheduler, s.targeting, opts.Views)
	s.validator = systems.NewPlacementValidator(g, s.repo)

	// 胜负判定依赖的系统先订阅
	s.lifetime = systems.NewLifetimeSystem(s.bus, s.scheduler, s.repo, s.factory)
	baseTracked := level.BaseHealth > 0
	if baseTracked {
		s.baseHealth = systems.NewBaseHealthSystem(s.bus, level.BaseHealth)
	}
	s.gameState = systems.NewGameStateSystem(s.bus, level.PlannedEnemies(), baseTracked)

	s.metrics, err = systems.NewMetricsSystem(s.bus, opts.MeterProvider)
	if err != nil {
		log.Error().Err(err).Msg("[Simulation] metrics setup failed")
		return nil, err
	}

	s.spawner = systems.NewEnemySpawnSystem(s.bus, s.factory, s.repo, g, level, rand.New(rand.NewSource(opts.Seed)))
	s.projectiles = systems.NewProjectileSystem(s.bus, s.repo, s.projector, s.targeting)
	s.preview = systems.NewPlacementPreviewService(s.projector, s.validator)
	s.placement = systems.NewPlacementControllerSystem(s.bus, s.preview, s.validator, s.factory)

	s.runner = systems.NewSystemRunner()
	if opts.Rays != nil {
		if opts.Pointer != nil {
			s.hover = systems.NewPointerHoverSystem(s.bus, opts.Rays, opts.Pointer, s.projector)
			s.runner.Register(s.hover)
		}
		layout := defaultTokenLayout(g)
		if opts.TokenLayout != nil {
			layout = *opts.TokenLayout
		}
		spawner := systems.NewSelectionSpawner(level, layout)
		s.selection = systems.NewCharacterSelectionSystem(s.bus, opts.Rays, s.projector, s.validator, s.factory, spawner, level)
	}
	s.runner.Register(s.spawner)
	s.runner.Register(s.scheduler)
	s.runner.Register(s.projectiles)

	log.Info().
		Str("level", level.ID).
		Int("rows", g.Rows()).
		Int("cols", g.Cols()).
		Int("enemies", level.PlannedEnemies()).
		Bool("baseTracked", baseTracked).
		Msg("[Simulation] ready")

	s.gameState.CheckInitial()
	return s, nil
}

// defaultTokenLayout 令牌沿棋盘近端（行 0 之前）横向排开
func defaultTokenLayout(g *grid.BoardGrid) systems.TokenLayout {
	size := g.CellSize()
	return systems.TokenLayout{
		Start:  mgl64.Vec3{0.5 * size, 0.5 * size, -1 * size},
		End:    mgl64.Vec3{(float64(g.Cols()) - 0.5) * size, 0.5 * size, -1 * size},
		UseEnd: true,
	}
}

// Step 推进一个固定时间步
// 顺序：悬停 → 敌人生成 → 角色调度（插件 + 延迟移除）→ 弹体
// 对局结束后不再推进
func (s *Simulation) Step(dt float64) {
	if dt <= 0 || s.gameState.State().Ended() {
		return
	}
	s.runner.Update(dt)
	s.elapsed += dt
}

// Run 以固定步长推进直到对局结束或达到 maxSeconds，返回最终状态
func (s *Simulation) Run(dt, maxSeconds float64) game.State {
	for !s.State().Ended() && s.elapsed < maxSeconds {
		s.Step(dt)
	}
	return s.State()
}

// Select 进入点选放置模式
func (s *Simulation) Select(archetypeID string) bool {
	a, ok := s.catalog.Get(archetypeID)
	if !ok || a.Enemy || s.level.Remaining(a.ID) <= 0 {
		return false
	}
	events.Publish(s.bus, events.CharacterSelected{Archetype: a})
	return true
}

// ConfirmPlacement 在当前悬停单元格确认点选放置，成功时消耗一个库存
func (s *Simulation) ConfirmPlacement() bool {
	a := s.placement.Archetype()
	if a == nil {
		return false
	}
	if s.level.Remaining(a.ID) <= 0 {
		s.placement.Cancel()
		return false
	}
	if !s.placement.Confirm() {
		return false
	}
	s.level.TryConsume(a.ID)
	return true
}

// Place 直接在单元格放置防御单位（无头运行和脚本使用）
// 走完整的点选流程：选择 → 悬停 → 确认
func (s *Simulation) Place(archetypeID string, c grid.Cell) bool {
	if !s.Select(archetypeID) {
		return false
	}
	events.Publish(s.bus, events.HoverCellChanged{
		Cell:    c,
		HasCell: s.grid.InBounds(c),
		World:   s.projector.CellToWorldCenter(c),
	})
	return s.ConfirmPlacement()
}

// Bus 事件总线
func (s *Simulation) Bus() *events.Bus { return s.bus }

// Grid 棋盘网格
func (s *Simulation) Grid() *grid.BoardGrid { return s.grid }

// Projector 网格投影器
func (s *Simulation) Projector() *grid.GridProjector { return s.projector }

// Repository 空间索引
func (s *Simulation) Repository() *ecs.Repository { return s.repo }

// Level 关卡运行时
func (s *Simulation) Level() *game.LevelRuntime { return s.level }

// Placement 点选放置控制器
func (s *Simulation) Placement() *systems.PlacementControllerSystem { return s.placement }

// Selection 拖拽选择系统，无射线来源时为 nil
func (s *Simulation) Selection() *systems.CharacterSelectionSystem { return s.selection }

// Stock 防御原型的剩余库存
func (s *Simulation) Stock(archetypeID string) int { return s.level.Remaining(archetypeID) }

// BaseHP 基地生命值，关卡未启用基地生命值时 ok 为 false
func (s *Simulation) BaseHP() (current, maxHP int, ok bool) {
	if s.baseHealth == nil {
		return 0, 0, false
	}
	return s.baseHealth.CurrentHP(), s.baseHealth.MaxHP(), true
}

// State 对局状态
func (s *Simulation) State() game.State { return s.gameState.State() }

// Elapsed 已模拟的时间（秒）
func (s *Simulation) Elapsed() float64 { return s.elapsed }

// EnemiesSpawned 已生成 / 计划生成的敌人数
func (s *Simulation) EnemiesSpawned() (spawned, planned int) {
	return s.spawner.Spawned(), s.spawner.Planned()
}

// Entities 棋盘上的全部实体（按ID排序）
func (s *Simulation) Entities() []*ecs.Entity { return s.repo.Entities() }

// Projectiles 飞行中的弹体快照
func (s *Simulation) Projectiles() []systems.Projectile { return s.projectiles.Live() }

// Ghost 放置预览状态
func (s *Simulation) Ghost() systems.Ghost { return s.preview.Ghost() }

// Tokens 当前摆出的令牌，无头模式下为空
func (s *Simulation) Tokens() []*systems.SelectableToken {
	if s.selection == nil {
		return nil
	}
	return s.selection.Tokens()
}
