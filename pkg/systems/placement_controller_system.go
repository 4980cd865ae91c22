package systems

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/entities"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

// 放置控制器的状态
const (
	PlacementIdle       = "idle"
	PlacementPreviewing = "previewing"
	PlacementCommitting = "committing"
)

// 放置控制器的状态迁移事件
const (
	placementEventSelect  = "select"
	placementEventConfirm = "confirm"
	placementEventDone    = "done"
	placementEventCancel  = "cancel"
)

// PlacementControllerSystem 点选放置流程的状态机
//
// 状态迁移：
//
//	idle --CharacterSelected--> previewing --Confirm(合法)--> committing --> idle
//	previewing --Cancel / Confirm(非法)--> idle
//
// 进入 previewing 时显示幽灵并发布 PlacementModeChanged{true}；
// 回到 idle 时隐藏幽灵并发布 PlacementModeChanged{false}。
type PlacementControllerSystem struct {
	bus       *events.Bus
	preview   *PlacementPreviewService
	validator *PlacementValidator
	factory   *entities.CharacterFactory

	machine   *fsm.FSM
	archetype *config.Archetype

	hoverCell grid.Cell
	hoverOK   bool
}

// NewPlacementControllerSystem 创建放置控制器并订阅选择与悬停事件
func NewPlacementControllerSystem(
	bus *events.Bus,
	preview *PlacementPreviewService,
	validator *PlacementValidator,
	factory *entities.CharacterFactory,
) *PlacementControllerSystem {
	s := &PlacementControllerSystem{
		bus:       bus,
		preview:   preview,
		validator: validator,
		factory:   factory,
	}
	s.machine = fsm.NewFSM(
		PlacementIdle,
		fsm.Events{
			{Name: placementEventSelect, Src: []string{PlacementIdle}, Dst: PlacementPreviewing},
			{Name: placementEventConfirm, Src: []string{PlacementPreviewing}, Dst: PlacementCommitting},
			{Name: placementEventDone, Src: []string{PlacementCommitting}, Dst: PlacementIdle},
			{Name: placementEventCancel, Src: []string{PlacementPreviewing, PlacementCommitting}, Dst: PlacementIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debug().Str("from", e.Src).Str("to", e.Dst).Str("event", e.Event).Msg("[PlacementController] transition")
			},
		},
	)

	events.Subscribe(bus, s.onCharacterSelected)
	events.Subscribe(bus, s.onHoverCellChanged)
	return s
}

// State 当前状态
func (s *PlacementControllerSystem) State() string { return s.machine.Current() }

// Archetype 当前选中的原型（idle 时为 nil）
func (s *PlacementControllerSystem) Archetype() *config.Archetype { return s.archetype }

func (s *PlacementControllerSystem) onCharacterSelected(ev events.CharacterSelected) {
	if ev.Archetype == nil || s.machine.Is(PlacementCommitting) {
		return
	}
	s.archetype = ev.Archetype

	// 预览中切换原型：只替换幽灵，不重复发布模式事件
	if s.machine.Is(PlacementPreviewing) {
		s.preview.Begin(ev.Archetype)
		s.preview.UpdateTo(s.hoverCell, s.hoverOK)
		return
	}

	if !s.transition(placementEventSelect) {
		return
	}
	s.preview.Begin(ev.Archetype)
	s.preview.UpdateTo(s.hoverCell, s.hoverOK)
	events.Publish(s.bus, events.PlacementModeChanged{Active: true})
}

func (s *PlacementControllerSystem) onHoverCellChanged(ev events.HoverCellChanged) {
	s.hoverCell = ev.Cell
	s.hoverOK = ev.HasCell
	if s.machine.Is(PlacementPreviewing) {
		s.preview.UpdateTo(ev.Cell, ev.HasCell)
	}
}

// Confirm 确认放置（点击）
// 悬停单元格合法时生成实体并发布 CharacterPlaced，否则放弃本次放置。
// 返回是否成功放置。
func (s *PlacementControllerSystem) Confirm() bool {
	if !s.machine.Is(PlacementPreviewing) {
		return false
	}
	if !s.hoverOK || !s.validator.IsValid(s.hoverCell) {
		s.exit(placementEventCancel)
		return false
	}
	if !s.transition(placementEventConfirm) {
		return false
	}

	cell := s.hoverCell
	archetype := s.archetype
	e, err := s.factory.Spawn(archetype, cell)
	if err != nil {
		log.Error().Err(err).Msg("[PlacementController] spawn failed")
		s.exit(placementEventCancel)
		return false
	}

	log.Info().Msgf("[PlacementController] placed %s", e)
	events.Publish(s.bus, events.CharacterPlaced{Archetype: archetype, EntityID: e.ID, Cell: cell})
	s.exit(placementEventDone)
	return true
}

// Cancel 取消放置（右键 / ESC）
func (s *PlacementControllerSystem) Cancel() {
	if s.machine.Is(PlacementIdle) {
		return
	}
	s.exit(placementEventCancel)
}

// exit 回到 idle：隐藏幽灵并关闭放置模式
func (s *PlacementControllerSystem) exit(event string) {
	if !s.transition(event) {
		return
	}
	s.archetype = nil
	s.preview.End()
	events.Publish(s.bus, events.PlacementModeChanged{Active: false})
}

func (s *PlacementControllerSystem) transition(event string) bool {
	if err := s.machine.Event(context.Background(), event); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("[PlacementController] rejected transition")
		return false
	}
	return true
}
