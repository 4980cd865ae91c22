package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

// TestHealthPlugin_ApplyDamage 测试伤害结算与死亡事件
func TestHealthPlugin_ApplyDamage(t *testing.T) {
	b := newBoard(t)
	deaths := 0
	events.Subscribe(b.bus, func(events.CharacterDied) { deaths++ })

	e := b.place(ecs.RoleEnemy, grid.NewCell(3, 0), 3)
	h, ok := ecs.HealthOf(e)
	require.True(t, ok)

	tests := []struct {
		name       string
		damage     int
		wantHP     int
		wantDeaths int
	}{
		{"零伤害忽略", 0, 3, 0},
		{"负伤害忽略", -5, 3, 0},
		{"普通伤害", 1, 2, 0},
		{"溢出伤害钳制到0", 10, 0, 1},
		{"死亡后不再触发", 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.ApplyDamage(tt.damage)
			assert.Equal(t, tt.wantHP, h.Current())
			assert.Equal(t, tt.wantDeaths, deaths)
		})
	}
	assert.True(t, h.IsDead())
}

func TestHealthPlugin_MaxClamped(t *testing.T) {
	h := NewHealthPlugin(events.NewBus(), 0)
	assert.Equal(t, 1, h.Max())
	assert.Equal(t, 1, h.Current())

	// 未生成时忽略伤害
	h.ApplyDamage(1)
	assert.Equal(t, 1, h.Current())
}
