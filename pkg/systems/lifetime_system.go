package systems

import (
	"github.com/rs/zerolog/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/entities"
	"github.com/gonewx/tdcore/pkg/events"
)

// LifetimeSystem 回收死亡或抵达基地的实体
// 从调度器注销、从空间索引移除、归还外部表现资源，然后发布 CharacterDespawned。
// 每个实体只回收一次。
type LifetimeSystem struct {
	bus       *events.Bus
	scheduler *ecs.CharacterSystem
	repo      *ecs.Repository
	factory   *entities.CharacterFactory

	reaped mapset.Set[ecs.EntityID]
}

// NewLifetimeSystem 创建一个新的生命周期系统并订阅相关事件
func NewLifetimeSystem(bus *events.Bus, scheduler *ecs.CharacterSystem, repo *ecs.Repository, factory *entities.CharacterFactory) *LifetimeSystem {
	s := &LifetimeSystem{
		bus:       bus,
		scheduler: scheduler,
		repo:      repo,
		factory:   factory,
		reaped:    mapset.New[ecs.EntityID](),
	}
	events.Subscribe(bus, func(ev events.CharacterDied) { s.reap(ev.Entity) })
	events.Subscribe(bus, func(ev events.EnemyReachedBase) { s.reap(ev.Enemy) })
	return s
}

// Reaped 返回已回收的实体数
func (s *LifetimeSystem) Reaped() int { return s.reaped.Size() }

func (s *LifetimeSystem) reap(e *ecs.Entity) {
	if e == nil || s.reaped.Has(e.ID) {
		return
	}
	s.reaped.Put(e.ID)

	s.scheduler.Unregister(e)
	s.repo.Remove(e)
	if s.factory != nil {
		s.factory.ReleaseView(e)
	}

	log.Debug().Msgf("[LifetimeSystem] despawned %s", e)
	events.Publish(s.bus, events.CharacterDespawned{EntityID: e.ID, Role: e.Role})
}
