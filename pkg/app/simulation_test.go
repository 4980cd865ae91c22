package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/game"
	"github.com/gonewx/tdcore/pkg/grid"
)

const testCatalog = `
archetypes:
  - id: archer
    baseHealth: 3
    weapon:
      fireRate: 2
      rangeBlocks: 4
      projectile:
        damage: 1
  - id: sniper
    baseHealth: 3
    weapon:
      fireRate: 1
      rangeBlocks: 4
      projectileMode: true
      projectile:
        damage: 2
        speed: 6
  - id: grunt
    enemy: true
    baseHealth: 2
    moveSpeed: 0.5
  - id: runner
    enemy: true
    baseHealth: 1
    moveSpeed: 2
`

func newTestSimulation(t *testing.T, rows, cols int, level string) *Simulation {
	t.Helper()
	catalog, err := config.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	lc, err := config.ParseLevelConfig([]byte(level))
	require.NoError(t, err)

	sim, err := NewSimulation(Options{
		Rows:     rows,
		Cols:     cols,
		CellSize: 1,
		Catalog:  catalog,
		Level:    lc,
		Seed:     1,
	})
	require.NoError(t, err)
	return sim
}

// TestSimulation_DefendersWin 单列棋盘：弓手逐个消灭敌人
func TestSimulation_DefendersWin(t *testing.T) {
	sim := newTestSimulation(t, 4, 1, `
id: win
defenses:
  - archetype: archer
    count: 1
waves:
  - archetype: grunt
    count: 2
    spawnInterval: 3
`)

	var won, lost int
	events.Subscribe(sim.Bus(), func(events.GameWon) { won++ })
	events.Subscribe(sim.Bus(), func(events.GameLost) { lost++ })

	require.True(t, sim.Place("archer", grid.NewCell(0, 0)))
	assert.Equal(t, 0, sim.Stock("archer"))
	assert.False(t, sim.Place("archer", grid.NewCell(1, 0)), "库存用尽")

	state := sim.Run(0.05, 20)
	assert.Equal(t, game.StateWon, state)
	assert.Equal(t, 1, won)
	assert.Equal(t, 0, lost)

	spawned, planned := sim.EnemiesSpawned()
	assert.Equal(t, 2, spawned)
	assert.Equal(t, 2, planned)
	assert.Len(t, sim.Entities(), 1, "只剩弓手")

	elapsed := sim.Elapsed()
	sim.Step(0.05)
	assert.Equal(t, elapsed, sim.Elapsed(), "结束后不再推进")
}

// TestSimulation_FirstBreachLoses 不追踪基地生命值时第一个抵达基地的敌人判负
func TestSimulation_FirstBreachLoses(t *testing.T) {
	sim := newTestSimulation(t, 4, 2, `
id: breach
waves:
  - archetype: runner
    count: 2
    spawnInterval: 0.05
`)

	var lost []events.GameLost
	events.Subscribe(sim.Bus(), func(ev events.GameLost) { lost = append(lost, ev) })

	_, _, tracked := sim.BaseHP()
	assert.False(t, tracked)

	state := sim.Run(0.05, 10)
	assert.Equal(t, game.StateLost, state)
	require.Len(t, lost, 1)
	assert.Less(t, sim.Elapsed(), 3.0)
}

// TestSimulation_BaseHealth 基地生命值未耗尽时，敌人全部处理完毕即胜利
func TestSimulation_BaseHealth(t *testing.T) {
	sim := newTestSimulation(t, 4, 2, `
id: base
baseHealth: 3
waves:
  - archetype: runner
    count: 2
    spawnInterval: 0.5
`)

	current, maxHP, tracked := sim.BaseHP()
	require.True(t, tracked)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, maxHP)

	state := sim.Run(0.05, 10)
	assert.Equal(t, game.StateWon, state)
	current, _, _ = sim.BaseHP()
	assert.Equal(t, 1, current)
	assert.Empty(t, sim.Entities())
}

func TestSimulation_BaseDestroyed(t *testing.T) {
	sim := newTestSimulation(t, 4, 3, `
id: destroyed
baseHealth: 2
waves:
  - archetype: runner
    count: 3
    spawnInterval: 0.05
`)
	assert.Equal(t, game.StateLost, sim.Run(0.05, 10))
	current, _, _ := sim.BaseHP()
	assert.Equal(t, 0, current)
}

func TestSimulation_ProjectilesInFlight(t *testing.T) {
	sim := newTestSimulation(t, 4, 1, `
id: projectiles
defenses:
  - archetype: sniper
    count: 1
waves:
  - archetype: grunt
    count: 1
`)
	require.True(t, sim.Place("sniper", grid.NewCell(0, 0)))

	sim.Step(0.05)
	require.Len(t, sim.Projectiles(), 1)

	assert.Equal(t, game.StateWon, sim.Run(0.05, 10))
	assert.Empty(t, sim.Projectiles())
}

func TestSimulation_PlacementRules(t *testing.T) {
	sim := newTestSimulation(t, 4, 8, `
id: rules
defenses:
  - archetype: archer
    count: 3
waves:
  - archetype: grunt
    count: 1
    startDelay: 100
`)

	assert.False(t, sim.Place("grunt", grid.NewCell(0, 0)), "敌人原型不能放置")
	assert.False(t, sim.Place("missing", grid.NewCell(0, 0)))
	assert.False(t, sim.Place("archer", grid.NewCell(2, 0)), "上半区")
	assert.False(t, sim.Place("archer", grid.NewCell(0, 8)), "越界")
	assert.Equal(t, 3, sim.Stock("archer"))

	require.True(t, sim.Place("archer", grid.NewCell(1, 3)))
	assert.False(t, sim.Place("archer", grid.NewCell(1, 3)), "重复放置")
	assert.Equal(t, 2, sim.Stock("archer"))
	assert.Equal(t, "idle", sim.Placement().State())
	assert.Nil(t, sim.Tokens())
	assert.Nil(t, sim.Selection())
}

func TestNewSimulation_Errors(t *testing.T) {
	catalog, err := config.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	_, err = NewSimulation(Options{Rows: 4, Cols: 8, CellSize: 1, Catalog: catalog})
	assert.Error(t, err)

	lc := &config.LevelConfig{ID: "bad", Waves: []config.WaveConfig{{Archetype: "ghost", Count: 1}}}
	_, err = NewSimulation(Options{Rows: 4, Cols: 8, CellSize: 1, Catalog: catalog, Level: lc})
	assert.ErrorIs(t, err, config.ErrUnknownArchetype)

	lc = &config.LevelConfig{ID: "ok"}
	_, err = NewSimulation(Options{Rows: 0, Cols: 8, CellSize: 1, Catalog: catalog, Level: lc})
	assert.ErrorIs(t, err, grid.ErrInvalidGridSize)
}

func TestSimulation_EmptyLevelWinsImmediately(t *testing.T) {
	sim := newTestSimulation(t, 4, 8, "id: empty\n")
	assert.Equal(t, game.StateWon, sim.State())
}
