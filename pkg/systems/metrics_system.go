package systems

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gonewx/tdcore/pkg/events"
)

const instrumentationName = "github.com/gonewx/tdcore/pkg/systems"

func meter(provider metric.MeterProvider) metric.Meter {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	return provider.Meter(instrumentationName)
}

// MetricsSystem 把模拟事件记录为 OpenTelemetry 计数器
// provider 为 nil 时使用全局 MeterProvider（未安装 SDK 时为 no-op）
type MetricsSystem struct {
	placements  metric.Int64Counter
	attacks     metric.Int64Counter
	hits        metric.Int64Counter
	deaths      metric.Int64Counter
	spawns      metric.Int64Counter
	baseDamage  metric.Int64Counter
	gameResults metric.Int64Counter
}

// NewMetricsSystem 创建计数器并订阅事件
func NewMetricsSystem(bus *events.Bus, provider metric.MeterProvider) (*MetricsSystem, error) {
	m := meter(provider)
	s := &MetricsSystem{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&s.placements, "tdcore.placements", "Defenders placed on the board"},
		{&s.attacks, "tdcore.attacks", "Weapon attacks performed"},
		{&s.hits, "tdcore.projectile.hits", "Projectile impacts"},
		{&s.deaths, "tdcore.deaths", "Characters killed"},
		{&s.spawns, "tdcore.enemies.spawned", "Enemies spawned"},
		{&s.baseDamage, "tdcore.base.damage", "Damage dealt to the base"},
		{&s.gameResults, "tdcore.games", "Finished games by outcome"},
	}
	for _, c := range counters {
		counter, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}

	ctx := context.Background()
	events.Subscribe(bus, func(ev events.CharacterPlaced) {
		s.placements.Add(ctx, 1, metric.WithAttributes(attribute.String("archetype", archetypeID(ev))))
	})
	events.Subscribe(bus, func(ev events.AttackPerformed) {
		mode := "hitscan"
		if ev.ProjectileMode {
			mode = "projectile"
		}
		s.attacks.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	})
	events.Subscribe(bus, func(ev events.ProjectileHit) {
		s.hits.Add(ctx, 1)
	})
	events.Subscribe(bus, func(ev events.CharacterDied) {
		role := "unknown"
		if ev.Entity != nil {
			role = ev.Entity.Role.String()
		}
		s.deaths.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
	})
	events.Subscribe(bus, func(events.EnemySpawned) {
		s.spawns.Add(ctx, 1)
	})
	events.Subscribe(bus, func(ev events.BaseDamaged) {
		s.baseDamage.Add(ctx, int64(ev.Amount))
	})
	events.Subscribe(bus, func(events.GameWon) {
		s.gameResults.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "won")))
	})
	events.Subscribe(bus, func(events.GameLost) {
		s.gameResults.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "lost")))
	})

	return s, nil
}

func archetypeID(ev events.CharacterPlaced) string {
	if ev.Archetype == nil {
		return ""
	}
	return ev.Archetype.ID
}
