package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

// MovementPlugin 沿所在列逐格向基地（row-1 方向）移动
//
// 每一段从当前单元格中心线性插值到下一行单元格中心，
// 段时长 = (距离 / 单元格尺寸) / 速度。到达后吸附到格心，
// 并在空间索引中重新登记（remove → 更新单元格 → add）。
// 下一格被其他实体占据时停在段末等待，之后每帧重试，直到该格空出。
// 下一行越过第 0 行时发布一次 EnemyReachedBase 并停止。
type MovementPlugin struct {
	projector *grid.GridProjector
	repo      *ecs.Repository
	bus       *events.Bus

	blocksPerSecond float64

	entity      *ecs.Entity
	from        mgl64.Vec3
	to          mgl64.Vec3
	nextCell    grid.Cell
	t           float64
	segmentTime float64
	moving      bool
	blocked     bool
	reachedBase bool
}

// NewMovementPlugin 创建移动插件，速度单位为格/秒
func NewMovementPlugin(projector *grid.GridProjector, repo *ecs.Repository, bus *events.Bus, blocksPerSecond float64) *MovementPlugin {
	return &MovementPlugin{
		projector:       projector,
		repo:            repo,
		bus:             bus,
		blocksPerSecond: blocksPerSecond,
	}
}

func (m *MovementPlugin) OnSpawn(e *ecs.Entity) {
	m.entity = e
	m.reachedBase = false
	m.blocked = false
	m.moving = false
	e.SetPosition(m.projector.CellToWorldCenter(e.Cell()))
	m.prepareNextSegment()
}

// Tick 推进当前段
// 一帧内最多跨越一个单元格，超出的进度丢弃
func (m *MovementPlugin) Tick(dt float64) {
	if m.entity == nil || !m.moving {
		return
	}
	if m.blocksPerSecond <= 0 || m.segmentTime <= 0 {
		return
	}

	m.t += dt / m.segmentTime
	if m.t < 1 {
		m.entity.SetPosition(lerp(m.from, m.to, m.t))
		return
	}

	if occupant, ok := m.repo.TryGetByCell(m.nextCell); ok && occupant != m.entity {
		m.t = 1
		m.blocked = true
		return
	}
	m.blocked = false

	m.entity.SetPosition(m.to)
	m.repo.Remove(m.entity)
	m.entity.SetCell(m.nextCell)
	m.repo.Add(m.entity, m.nextCell)
	m.prepareNextSegment()
}

func (m *MovementPlugin) OnDespawn() {
	m.moving = false
}

// ReachedBase 是否已抵达基地
func (m *MovementPlugin) ReachedBase() bool { return m.reachedBase }

// Blocked 是否正被下一格的占据者挡住
func (m *MovementPlugin) Blocked() bool { return m.blocked }

// Progress 当前段的插值进度 [0,1]，受阻时停在 1
func (m *MovementPlugin) Progress() float64 { return m.t }

// SegmentTime 当前段的时长（秒）
func (m *MovementPlugin) SegmentTime() float64 { return m.segmentTime }

func (m *MovementPlugin) prepareNextSegment() {
	m.t = 0
	m.moving = false

	current := m.entity.Cell()
	next := grid.NewCell(current.Row-1, current.Col)
	if next.Row < 0 {
		if !m.reachedBase {
			m.reachedBase = true
			events.Publish(m.bus, events.EnemyReachedBase{Enemy: m.entity})
		}
		return
	}

	m.from = m.projector.CellToWorldCenter(current)
	m.to = m.projector.CellToWorldCenter(next)
	m.nextCell = next

	if m.blocksPerSecond <= 0 {
		m.segmentTime = 0
		return
	}
	distance := m.to.Sub(m.from).Len()
	m.segmentTime = (distance / m.projector.Grid().CellSize()) / m.blocksPerSecond
	m.moving = m.segmentTime > 0
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
