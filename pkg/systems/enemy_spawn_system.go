package systems

import (
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/entities"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/game"
	"github.com/gonewx/tdcore/pkg/grid"
)

// waveState 单个波次的倒计时状态
type waveState struct {
	wave      game.Wave
	remaining int
	countdown float64
}

// EnemySpawnSystem 敌人生成系统
//
// 职责：
//   - 每个波次独立倒计时：先等待 StartDelay，之后每隔 SpawnInterval 生成一个敌人
//   - 在顶行随机选择一个空闲列生成；顶行全满时下一帧重试
//   - 生成后发布 EnemySpawned
//
// 随机数源由调用方注入，同一种子下生成序列可复现。
type EnemySpawnSystem struct {
	bus     *events.Bus
	factory *entities.CharacterFactory
	repo    *ecs.Repository
	grid    *grid.BoardGrid
	rng     *rand.Rand

	waves   []*waveState
	planned int
	spawned int
}

// NewEnemySpawnSystem 创建敌人生成系统
func NewEnemySpawnSystem(
	bus *events.Bus,
	factory *entities.CharacterFactory,
	repo *ecs.Repository,
	g *grid.BoardGrid,
	level *game.LevelRuntime,
	rng *rand.Rand,
) *EnemySpawnSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	s := &EnemySpawnSystem{
		bus:     bus,
		factory: factory,
		repo:    repo,
		grid:    g,
		rng:     rng,
	}
	for _, w := range level.Waves() {
		s.waves = append(s.waves, &waveState{
			wave:      w,
			remaining: w.Count,
			countdown: w.StartDelay,
		})
		s.planned += w.Count
	}
	return s
}

// Update 推进所有波次的倒计时
func (s *EnemySpawnSystem) Update(dt float64) {
	for i, ws := range s.waves {
		if ws.remaining <= 0 {
			continue
		}
		ws.countdown -= dt
		for ws.countdown <= 0 && ws.remaining > 0 {
			if !s.spawnOne(ws.wave.Archetype) {
				// 顶行已满，下一帧重试
				ws.countdown = 0
				break
			}
			ws.remaining--
			ws.countdown += max(ws.wave.SpawnInterval, config.MinSpawnInterval)
			log.Debug().Int("wave", i).Int("remaining", ws.remaining).Msg("[EnemySpawnSystem] enemy spawned")
		}
	}
}

// Planned 计划生成的敌人总数
func (s *EnemySpawnSystem) Planned() int { return s.planned }

// Spawned 已生成的敌人数
func (s *EnemySpawnSystem) Spawned() int { return s.spawned }

// Done 所有波次是否已生成完毕
func (s *EnemySpawnSystem) Done() bool { return s.spawned >= s.planned }

func (s *EnemySpawnSystem) spawnOne(archetype *config.Archetype) bool {
	top := s.grid.Rows() - 1
	free := make([]int, 0, s.grid.Cols())
	for c := 0; c < s.grid.Cols(); c++ {
		if !s.repo.IsOccupied(grid.NewCell(top, c)) {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return false
	}

	cell := grid.NewCell(top, free[s.rng.Intn(len(free))])
	e, err := s.factory.Spawn(archetype, cell)
	if err != nil {
		log.Error().Err(err).Msg("[EnemySpawnSystem] failed to spawn enemy")
		return false
	}

	s.spawned++
	events.Publish(s.bus, events.EnemySpawned{EntityID: e.ID, Cell: cell})
	return true
}
