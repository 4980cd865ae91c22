package systems

import (
	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/events"
)

// BaseHealthSystem 基地生命值
// 每个抵达基地的敌人扣 1 点，发布 BaseDamaged；胜负由 GameStateSystem 判定
type BaseHealthSystem struct {
	bus     *events.Bus
	max     int
	current int
}

// NewBaseHealthSystem 创建基地生命值系统，maxHP 至少为 1
func NewBaseHealthSystem(bus *events.Bus, maxHP int) *BaseHealthSystem {
	if maxHP < 1 {
		maxHP = 1
	}
	s := &BaseHealthSystem{bus: bus, max: maxHP, current: maxHP}
	events.Subscribe(bus, s.onEnemyReachedBase)
	return s
}

// MaxHP 最大生命值
func (s *BaseHealthSystem) MaxHP() int { return s.max }

// CurrentHP 当前生命值
func (s *BaseHealthSystem) CurrentHP() int { return s.current }

func (s *BaseHealthSystem) onEnemyReachedBase(ev events.EnemyReachedBase) {
	const damage = 1
	s.current -= damage
	if s.current < 0 {
		s.current = 0
	}

	var enemyID uint64
	if ev.Enemy != nil {
		enemyID = uint64(ev.Enemy.ID)
	}
	log.Info().Uint64("enemy", enemyID).Int("hp", s.current).Msg("[BaseHealthSystem] base damaged")

	events.Publish(s.bus, events.BaseDamaged{Amount: damage, CurrentHP: s.current, Enemy: ev.Enemy})
}
