package ecs

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/tdcore/pkg/grid"
)

// TestRepository_AddRemove 测试基本增删查
func TestRepository_AddRemove(t *testing.T) {
	repo := NewRepository()
	e := NewEntity(1, nil, RoleDefense, grid.Cell{})

	repo.Add(e, grid.NewCell(1, 3))
	assert.True(t, repo.IsOccupied(grid.NewCell(1, 3)))
	assert.Equal(t, grid.NewCell(1, 3), e.Cell(), "Add 同步实体单元格")

	got, ok := repo.TryGetByCell(grid.NewCell(1, 3))
	require.True(t, ok)
	assert.Same(t, e, got)

	got, ok = repo.TryGetByID(1)
	require.True(t, ok)
	assert.Same(t, e, got)

	repo.Remove(e)
	assert.False(t, repo.IsOccupied(grid.NewCell(1, 3)))
	_, ok = repo.TryGetByID(1)
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Len())
}

// TestRepository_RemoveKeepsNewOccupant 移除旧实体时不清除已被其他实体覆盖的单元格
func TestRepository_RemoveKeepsNewOccupant(t *testing.T) {
	repo := NewRepository()
	a := NewEntity(1, nil, RoleEnemy, grid.Cell{})
	b := NewEntity(2, nil, RoleEnemy, grid.Cell{})
	c := grid.NewCell(2, 2)

	repo.Add(a, c)
	repo.Add(b, c)
	repo.Remove(a)

	got, ok := repo.TryGetByCell(c)
	require.True(t, ok)
	assert.Equal(t, EntityID(2), got.ID)
}

// TestRepository_RandomOperations 随机增删移动后两张表保持一致
func TestRepository_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	repo := NewRepository()
	alloc := NewIDAllocator()
	var live []*Entity

	randomCell := func() grid.Cell {
		return grid.NewCell(rng.Intn(4), rng.Intn(8))
	}

	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			c := randomCell()
			if repo.IsOccupied(c) {
				continue
			}
			e := NewEntity(alloc.Next(), nil, RoleEnemy, c)
			repo.Add(e, c)
			live = append(live, e)
		case op == 1:
			i := rng.Intn(len(live))
			repo.Remove(live[i])
			live = append(live[:i], live[i+1:]...)
		default:
			// 移动：remove → 改单元格 → add
			e := live[rng.Intn(len(live))]
			c := randomCell()
			if repo.IsOccupied(c) {
				continue
			}
			repo.Remove(e)
			repo.Add(e, c)
		}

		require.Equal(t, len(live), repo.Len())
		for _, e := range live {
			got, ok := repo.TryGetByCell(e.Cell())
			require.True(t, ok, "step %d: entity %d missing from cell index", step, e.ID)
			require.Equal(t, e.ID, got.ID)
		}
		for id, e := range repo.byID {
			require.Equal(t, id, e.ID)
		}
		for c, id := range repo.byCell {
			e, ok := repo.byID[id]
			require.True(t, ok, "step %d: cell %s points to removed entity %d", step, c, id)
			require.Equal(t, c, e.Cell())
		}
	}
}

func TestRepository_EntitiesSorted(t *testing.T) {
	repo := NewRepository()
	for _, id := range []EntityID{5, 2, 9} {
		repo.Add(NewEntity(id, nil, RoleDefense, grid.Cell{}), grid.NewCell(0, int(id)))
	}
	ids := []EntityID{}
	for _, e := range repo.Entities() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []EntityID{2, 5, 9}, ids)
}
