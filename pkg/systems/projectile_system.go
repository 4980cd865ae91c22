package systems

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/components"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
	"github.com/gonewx/tdcore/pkg/utils"
)

// ProjectileHitEpsilon 弹体与目标距离小于该值即视为命中
const ProjectileHitEpsilon = 0.05

// Projectile 飞行中的弹体
type Projectile struct {
	ID         uint64
	SourceID   ecs.EntityID
	SourceRole ecs.Role
	TargetID   ecs.EntityID
	Position   mgl64.Vec3
	Damage     int
	Speed      float64
	Pierce     int
	Splash     float64

	lastKnown mgl64.Vec3
	// freeFlight 穿透后前方暂无目标，沿列飞向棋盘边缘
	freeFlight bool
}

// ProjectileSystem 弹体系统
//
// 职责：
//   - 订阅 AttackPerformed（仅弹体模式），从对象池取出弹体
//   - 每帧按ID查找目标的当前位置并匀速追踪；目标已移除时飞向最后已知位置
//   - 命中时结算伤害并发布 ProjectileHit；穿透次数用尽则回收，
//     否则穿透次数减一，沿同一列继续寻找下一个目标
//   - 穿透后前方没有目标时继续沿列飞行，途中每帧重新索敌，
//     飞出棋盘边缘仍未命中则回收
//
// 溅射半径随弹体携带但不结算。
type ProjectileSystem struct {
	bus       *events.Bus
	repo      *ecs.Repository
	projector *grid.GridProjector
	targeting *components.TargetingService
	pool      *utils.Pool[*Projectile]

	live   []*Projectile
	nextID uint64
}

// NewProjectileSystem 创建弹体系统并订阅开火事件
func NewProjectileSystem(bus *events.Bus, repo *ecs.Repository, projector *grid.GridProjector, targeting *components.TargetingService) *ProjectileSystem {
	s := &ProjectileSystem{
		bus:       bus,
		repo:      repo,
		projector: projector,
		targeting: targeting,
		pool: utils.NewPool(
			func() *Projectile { return &Projectile{} },
			func(p *Projectile) { *p = Projectile{} },
		),
	}
	events.Subscribe(bus, s.onAttackPerformed)
	return s
}

func (s *ProjectileSystem) onAttackPerformed(ev events.AttackPerformed) {
	if !ev.ProjectileMode {
		return
	}
	s.nextID++
	p := s.pool.Get()
	p.ID = s.nextID
	p.SourceID = ev.SourceID
	p.SourceRole = ev.SourceRole
	p.TargetID = ev.TargetID
	p.Position = ev.Muzzle
	p.lastKnown = ev.TargetPoint
	p.Damage = ev.Damage
	p.Speed = ev.Speed
	p.Pierce = max(0, ev.PierceCount)
	p.Splash = max(0, ev.SplashRadius)
	s.live = append(s.live, p)
}

// Update 推进所有弹体
func (s *ProjectileSystem) Update(dt float64) {
	current := s.live
	s.live = make([]*Projectile, 0, len(current))
	for _, p := range current {
		if s.step(p, dt) {
			s.live = append(s.live, p)
			continue
		}
		s.pool.Put(p)
	}
}

// step 推进单个弹体，返回 false 表示弹体应回收
func (s *ProjectileSystem) step(p *Projectile, dt float64) bool {
	if p.freeFlight {
		s.reacquire(p)
	}
	target, alive := s.repo.TryGetByID(p.TargetID)
	if alive {
		p.lastKnown = target.Position()
	}

	to := p.lastKnown.Sub(p.Position)
	dist := to.Len()
	travel := p.Speed * dt
	if dist > ProjectileHitEpsilon {
		if travel >= dist {
			p.Position = p.lastKnown
			dist = 0
		} else {
			p.Position = p.Position.Add(to.Mul(travel / dist))
			dist -= travel
		}
	}
	if dist > ProjectileHitEpsilon {
		return true
	}

	if !alive {
		// 目标在飞行途中被移除，或已飞到棋盘边缘，落空
		return false
	}
	return s.impact(p, target)
}

// impact 结算命中，返回 false 表示弹体应回收
func (s *ProjectileSystem) impact(p *Projectile, target *ecs.Entity) bool {
	hitCell := target.Cell()
	if h, ok := ecs.HealthOf(target); ok {
		h.ApplyDamage(p.Damage)
	}
	events.Publish(s.bus, events.ProjectileHit{
		ProjectileID: p.ID,
		SourceID:     p.SourceID,
		TargetID:     target.ID,
		Damage:       p.Damage,
		Point:        p.Position,
	})

	if p.Pierce <= 0 {
		return false
	}
	p.Pierce--

	step := components.ForwardStep(p.SourceRole)
	next, ok := s.targeting.FindNextInLane(hitCell, step, s.projector.Grid().Rows(), p.SourceRole)
	if !ok {
		log.Debug().Uint64("projectile", p.ID).Msg("[ProjectileSystem] no target ahead, flying to board edge")
		p.TargetID = ecs.InvalidEntityID
		p.lastKnown = s.laneEdge(hitCell.Col, step)
		p.freeFlight = true
		return true
	}
	p.TargetID = next.ID
	p.lastKnown = next.Position()
	return true
}

// reacquire 自由飞行时从弹体所在单元格向前搜索新目标
func (s *ProjectileSystem) reacquire(p *Projectile) {
	cell, onBoard := s.projector.TryWorldToCell(p.Position)
	if !onBoard {
		return
	}
	next, ok := s.targeting.FindNextInLane(cell, components.ForwardStep(p.SourceRole), s.projector.Grid().Rows(), p.SourceRole)
	if !ok {
		return
	}
	p.TargetID = next.ID
	p.lastKnown = next.Position()
	p.freeFlight = false
}

// laneEdge 列在前进方向上的棋盘边缘（最后一格与界外一格中心的中点）
func (s *ProjectileSystem) laneEdge(col, step int) mgl64.Vec3 {
	last := 0
	if step > 0 {
		last = s.projector.Grid().Rows() - 1
	}
	inside := s.projector.CellToWorldCenter(grid.NewCell(last, col))
	outside := s.projector.CellToWorldCenter(grid.NewCell(last+step, col))
	return inside.Add(outside).Mul(0.5)
}

// Live 返回飞行中弹体的快照
func (s *ProjectileSystem) Live() []Projectile {
	out := make([]Projectile, 0, len(s.live))
	for _, p := range s.live {
		out = append(out, *p)
	}
	return out
}

// Count 飞行中的弹体数
func (s *ProjectileSystem) Count() int { return len(s.live) }

// PoolIdle 对象池中空闲的弹体数
func (s *ProjectileSystem) PoolIdle() int { return s.pool.Idle() }
