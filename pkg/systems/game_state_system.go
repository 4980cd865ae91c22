package systems

import (
	"github.com/rs/zerolog/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/game"
)

// GameStateSystem 胜负判定
//
// 职责：
//   - 统计已生成敌人数与存活敌人集合
//   - 胜利：计划中的敌人全部生成 ∧ 无存活敌人 ∧ 尚未失败
//   - 失败：不追踪基地生命值时，第一个抵达基地的敌人即判负；
//     追踪基地生命值时，BaseDamaged 报告生命值归零判负
//   - GameWon / GameLost 只由本系统发布，二者互斥且各至多一次
type GameStateSystem struct {
	bus         *events.Bus
	planned     int
	baseTracked bool

	spawned  int
	live     mapset.Set[ecs.EntityID]
	resolved mapset.Set[ecs.EntityID] // 在 EnemySpawned 之前就已死亡或抵达基地的敌人
	state    game.State
}

// NewGameStateSystem 创建胜负判定系统并订阅事件
// 参数:
//   - planned: 本关计划生成的敌人总数
//   - baseTracked: 是否启用基地生命值（与 BaseHealthSystem 配合）
func NewGameStateSystem(bus *events.Bus, planned int, baseTracked bool) *GameStateSystem {
	s := &GameStateSystem{
		bus:         bus,
		planned:     planned,
		baseTracked: baseTracked,
		live:        mapset.New[ecs.EntityID](),
		resolved:    mapset.New[ecs.EntityID](),
	}
	events.Subscribe(bus, s.onEnemySpawned)
	events.Subscribe(bus, s.onCharacterDied)
	if baseTracked {
		events.Subscribe(bus, s.onBaseDamaged)
	} else {
		events.Subscribe(bus, s.onEnemyReachedBase)
	}
	return s
}

// State 当前对局状态
func (s *GameStateSystem) State() game.State { return s.state }

// Spawned 已生成敌人数
func (s *GameStateSystem) Spawned() int { return s.spawned }

// Planned 计划敌人数
func (s *GameStateSystem) Planned() int { return s.planned }

// Live 存活敌人数
func (s *GameStateSystem) Live() int { return s.live.Size() }

// CheckInitial 计划敌人数为 0 的关卡开局即胜利
func (s *GameStateSystem) CheckInitial() {
	s.checkWin()
}

func (s *GameStateSystem) onEnemySpawned(ev events.EnemySpawned) {
	if s.state.Ended() {
		return
	}
	s.spawned++
	if s.resolved.Has(ev.EntityID) {
		s.resolved.Remove(ev.EntityID)
		s.checkWin()
		return
	}
	s.live.Put(ev.EntityID)
}

// resolve 把敌人从存活集合中移除
func (s *GameStateSystem) resolve(e *ecs.Entity) {
	if e == nil || e.Role != ecs.RoleEnemy {
		return
	}
	if s.live.Has(e.ID) {
		s.live.Remove(e.ID)
		return
	}
	s.resolved.Put(e.ID)
}

func (s *GameStateSystem) onCharacterDied(ev events.CharacterDied) {
	if s.state.Ended() || ev.Entity == nil || ev.Entity.Role != ecs.RoleEnemy {
		return
	}
	s.resolve(ev.Entity)
	s.checkWin()
}

func (s *GameStateSystem) onEnemyReachedBase(ev events.EnemyReachedBase) {
	if s.state.Ended() {
		return
	}
	s.resolve(ev.Enemy)
	s.lose("enemy reached base")
}

func (s *GameStateSystem) onBaseDamaged(ev events.BaseDamaged) {
	if s.state.Ended() {
		return
	}
	s.resolve(ev.Enemy)
	if ev.CurrentHP <= 0 {
		s.lose("base destroyed")
		return
	}
	s.checkWin()
}

func (s *GameStateSystem) checkWin() {
	if s.state.Ended() {
		return
	}
	if s.spawned < s.planned || s.live.Size() > 0 {
		return
	}
	s.state = game.StateWon
	log.Info().Int("spawned", s.spawned).Msg("[GameState] all enemies cleared, game won")
	events.Publish(s.bus, events.GameWon{})
}

func (s *GameStateSystem) lose(reason string) {
	s.state = game.StateLost
	log.Info().Str("reason", reason).Msg("[GameState] game lost")
	events.Publish(s.bus, events.GameLost{Reason: reason})
}
