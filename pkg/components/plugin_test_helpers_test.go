package components

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

// board 测试用的 4×8 棋盘环境
type board struct {
	grid      *grid.BoardGrid
	projector *grid.GridProjector
	repo      *ecs.Repository
	bus       *events.Bus
	scheduler *ecs.CharacterSystem
	targeting *TargetingService
	ids       *ecs.IDAllocator
}

func newBoard(t *testing.T) *board {
	t.Helper()
	g, err := grid.NewBoardGrid(4, 8, 1)
	require.NoError(t, err)
	repo := ecs.NewRepository()
	return &board{
		grid:      g,
		projector: grid.NewGridProjector(g, nil),
		repo:      repo,
		bus:       events.NewBus(),
		scheduler: ecs.NewCharacterSystem(),
		targeting: NewTargetingService(g, repo),
		ids:       ecs.NewIDAllocator(),
	}
}

// place 在单元格上放置带生命值的实体
func (b *board) place(role ecs.Role, cell grid.Cell, hp int, extra ...ecs.Plugin) *ecs.Entity {
	e := ecs.NewEntity(b.ids.Next(), &config.Archetype{ID: role.String()}, role, cell)
	e.SetPosition(b.projector.CellToWorldCenter(cell))
	e.AddPlugin(NewHealthPlugin(b.bus, hp))
	for _, p := range extra {
		e.AddPlugin(p)
	}
	b.repo.Add(e, cell)
	b.scheduler.Register(e)
	return e
}
