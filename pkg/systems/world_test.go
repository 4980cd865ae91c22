package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/tdcore/pkg/components"
	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/entities"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/game"
	"github.com/gonewx/tdcore/pkg/grid"
)

// topDownRays 俯视正交相机：屏幕 (x, y) 对应棋盘局部 (x, z)
type topDownRays struct{}

func (topDownRays) PointerToRay(x, y float64) grid.Ray {
	return grid.Ray{Origin: mgl64.Vec3{x, 10, y}, Dir: mgl64.Vec3{0, -1, 0}}
}

// fixedPointer 固定位置的指针
type fixedPointer struct {
	x, y float64
	ok   bool
}

func (p *fixedPointer) PointerPosition() (float64, float64, bool) { return p.x, p.y, p.ok }

// testWorld 单元测试用的完整模拟环境
type testWorld struct {
	grid      *grid.BoardGrid
	projector *grid.GridProjector
	repo      *ecs.Repository
	bus       *events.Bus
	scheduler *ecs.CharacterSystem
	targeting *components.TargetingService
	factory   *entities.CharacterFactory
	validator *PlacementValidator
	lifetime  *LifetimeSystem
}

func newTestWorld(t *testing.T, rows, cols int) *testWorld {
	t.Helper()
	g, err := grid.NewBoardGrid(rows, cols, 1)
	require.NoError(t, err)

	w := &testWorld{
		grid:      g,
		projector: grid.NewGridProjector(g, nil),
		repo:      ecs.NewRepository(),
		bus:       events.NewBus(),
		scheduler: ecs.NewCharacterSystem(),
	}
	w.targeting = components.NewTargetingService(g, w.repo)
	w.factory = entities.NewCharacterFactory(w.projector, w.repo, w.bus, w.scheduler, w.targeting, nil)
	w.validator = NewPlacementValidator(g, w.repo)
	w.lifetime = NewLifetimeSystem(w.bus, w.scheduler, w.repo, w.factory)
	return w
}

func (w *testWorld) spawn(t *testing.T, a *config.Archetype, cell grid.Cell) *ecs.Entity {
	t.Helper()
	e, err := w.factory.Spawn(a, cell)
	require.NoError(t, err)
	return e
}

func archer(projectile bool, pierce int) *config.Archetype {
	return &config.Archetype{
		ID:         "archer",
		BaseHealth: 3,
		Bounds:     [3]float64{0.3, 0.3, 0.3},
		Weapon: &config.WeaponConfig{
			FireRate:       1,
			RangeBlocks:    4,
			Direction:      config.DirectionForward,
			ProjectileMode: projectile,
			Projectile:     config.ProjectileConfig{Damage: 1, Speed: 8, PierceCount: pierce},
		},
	}
}

func grunt(hp int, speed float64) *config.Archetype {
	return &config.Archetype{ID: "grunt", Enemy: true, BaseHealth: hp, MoveSpeed: speed}
}

func wall() *config.Archetype {
	return &config.Archetype{ID: "wall", BaseHealth: 10, Bounds: [3]float64{0.3, 0.3, 0.3}}
}

// newLevel 用给定原型构建关卡运行时
func newLevel(t *testing.T, cfg *config.LevelConfig, archetypes ...*config.Archetype) *game.LevelRuntime {
	t.Helper()
	catalog, err := config.NewCatalog(archetypes...)
	require.NoError(t, err)
	level, err := game.NewLevelRuntime(cfg, catalog)
	require.NoError(t, err)
	return level
}
