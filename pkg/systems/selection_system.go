package systems

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/entities"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/game"
	"github.com/gonewx/tdcore/pkg/grid"
)

// tokenDragLift 拖拽中的令牌沿棋盘法线抬起的高度
const tokenDragLift = 0.25

// CharacterSelectionSystem 拖拽令牌放置防御单位
//
// 流程：
//  1. PointerDown：射线拾取最近的令牌
//  2. PointerMove：令牌跟随指针在棋盘平面上方移动
//  3. PointerUp：优先使用最近一次悬停单元格，否则用指针射线投影；
//     合法则生成实体、移除令牌，库存仍有剩余时在原位置补一个令牌，然后发布 CharacterPlaced；
//     不合法则令牌回到原位置，不消耗库存
type CharacterSelectionSystem struct {
	bus       *events.Bus
	rays      grid.RayProvider
	projector *grid.GridProjector
	validator *PlacementValidator
	factory   *entities.CharacterFactory
	spawner   *SelectionSpawner
	level     *game.LevelRuntime

	tokens   []*SelectableToken
	dragging *SelectableToken

	hoverCell grid.Cell
	hoverOK   bool
}

// NewCharacterSelectionSystem 创建选择系统，摆出初始令牌并订阅悬停事件
func NewCharacterSelectionSystem(
	bus *events.Bus,
	rays grid.RayProvider,
	projector *grid.GridProjector,
	validator *PlacementValidator,
	factory *entities.CharacterFactory,
	spawner *SelectionSpawner,
	level *game.LevelRuntime,
) *CharacterSelectionSystem {
	s := &CharacterSelectionSystem{
		bus:       bus,
		rays:      rays,
		projector: projector,
		validator: validator,
		factory:   factory,
		spawner:   spawner,
		level:     level,
	}
	s.tokens = spawner.Spawn()
	events.Subscribe(bus, func(ev events.HoverCellChanged) {
		s.hoverCell = ev.Cell
		s.hoverOK = ev.HasCell
	})
	return s
}

// Tokens 返回当前摆出的令牌
func (s *CharacterSelectionSystem) Tokens() []*SelectableToken { return s.tokens }

// Dragging 返回正在拖拽的令牌
func (s *CharacterSelectionSystem) Dragging() *SelectableToken { return s.dragging }

// PointerDown 拾取指针下最近的令牌，返回是否拾取成功
func (s *CharacterSelectionSystem) PointerDown(x, y float64) bool {
	if s.rays == nil {
		return false
	}
	ray := s.rays.PointerToRay(x, y)

	var best *SelectableToken
	bestT := math.Inf(1)
	for _, t := range s.tokens {
		if hit, ok := t.TryRaycastBounds(ray); ok && hit < bestT {
			best, bestT = t, hit
		}
	}
	s.dragging = best
	return best != nil
}

// PointerMove 拖拽中的令牌跟随指针
func (s *CharacterSelectionSystem) PointerMove(x, y float64) {
	if s.dragging == nil || s.rays == nil {
		return
	}
	surface := s.projector.Surface()
	normal := surface.WorldPlaneNormal()
	hit, ok := grid.RayPlane(s.rays.PointerToRay(x, y), surface.WorldPlanePoint(), normal)
	if !ok {
		return
	}
	s.dragging.Position = hit.Add(normal.Mul(tokenDragLift))
}

// PointerUp 放下令牌，返回是否放置成功
func (s *CharacterSelectionSystem) PointerUp(x, y float64) bool {
	token := s.dragging
	if token == nil {
		return false
	}
	s.dragging = nil

	cell, ok := s.dropCell(x, y)
	if !ok || !s.validator.IsValid(cell) {
		token.ResetPosition()
		return false
	}

	e, err := s.factory.Spawn(token.Archetype, cell)
	if err != nil {
		log.Error().Err(err).Msg("[CharacterSelectionSystem] spawn failed")
		token.ResetPosition()
		return false
	}

	s.removeToken(token)
	if s.level.Remaining(token.Archetype.ID) > 0 {
		if refill := s.spawner.SpawnAt(token.Archetype, token.Slot); refill != nil {
			s.tokens = append(s.tokens, refill)
		}
	}

	log.Info().Msgf("[CharacterSelectionSystem] placed %s, stock left %d", e, s.level.Remaining(token.Archetype.ID))
	events.Publish(s.bus, events.CharacterPlaced{Archetype: token.Archetype, EntityID: e.ID, Cell: cell})
	return true
}

func (s *CharacterSelectionSystem) dropCell(x, y float64) (grid.Cell, bool) {
	if s.hoverOK {
		return s.hoverCell, true
	}
	if s.rays == nil {
		return grid.Cell{}, false
	}
	cell, _, onBoard, hit := s.projector.TryRayToCell(s.rays.PointerToRay(x, y))
	return cell, hit && onBoard
}

func (s *CharacterSelectionSystem) removeToken(token *SelectableToken) {
	for i, t := range s.tokens {
		if t == token {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			return
		}
	}
}
