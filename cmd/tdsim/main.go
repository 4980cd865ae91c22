package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/gonewx/tdcore/pkg/app"
	"github.com/gonewx/tdcore/pkg/config"
	"github.com/gonewx/tdcore/pkg/ecs"
	"github.com/gonewx/tdcore/pkg/events"
	"github.com/gonewx/tdcore/pkg/grid"
)

var (
	configDir = flag.String("config", ".", "tdcore.yaml 所在目录")
	levelPath = flag.String("level", "", "关卡文件（覆盖设置中的 data.level）")
	verbose   = flag.Bool("verbose", false, "输出调试日志")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	settings, err := config.LoadSettings(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("[tdsim] failed to load settings")
	}
	setLogLevel(settings.LogLevel)

	if *levelPath != "" {
		settings.Data.Level = *levelPath
	}

	catalog, err := config.LoadCatalog(settings.Data.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("[tdsim] failed to load archetype catalog")
	}
	level, err := config.LoadLevelConfig(settings.Data.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("[tdsim] failed to load level")
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	opts := app.OptionsFromSettings(settings, catalog, level)
	opts.MeterProvider = provider
	sim, err := app.NewSimulation(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("[tdsim] failed to build simulation")
	}

	placed := autoPlace(sim)
	log.Info().Int("placed", placed).Msg("[tdsim] defenders placed")

	var breaches, kills int
	events.Subscribe(sim.Bus(), func(events.EnemyReachedBase) { breaches++ })
	events.Subscribe(sim.Bus(), func(ev events.CharacterDied) {
		if ev.Entity != nil && ev.Entity.Role == ecs.RoleEnemy {
			kills++
		}
	})

	state := sim.Run(settings.Sim.TickSeconds(), settings.Sim.MaxSeconds)
	spawned, planned := sim.EnemiesSpawned()

	result := log.Info().
		Str("state", state.String()).
		Float64("elapsed", sim.Elapsed()).
		Int("spawned", spawned).
		Int("planned", planned).
		Int("kills", kills).
		Int("breaches", breaches)
	if hp, maxHP, ok := sim.BaseHP(); ok {
		result = result.Int("baseHP", hp).Int("baseMaxHP", maxHP)
	}
	result.Msg("[tdsim] simulation finished")
	logCounters(reader)

	if !state.Ended() {
		log.Warn().Float64("maxSeconds", settings.Sim.MaxSeconds).Msg("[tdsim] time limit reached before the game ended")
		os.Exit(2)
	}
}

func setLogLevel(level string) {
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("logLevel", level).Msg("[tdsim] unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// autoPlace 按名单顺序把全部库存依次摆到可放置区域（行优先）
func autoPlace(sim *app.Simulation) int {
	g := sim.Grid()
	var cells []grid.Cell
	for r := 0; r < g.PlaceableRowCount(); r++ {
		for c := 0; c < g.Cols(); c++ {
			cells = append(cells, grid.NewCell(r, c))
		}
	}

	placed, next := 0, 0
	for _, a := range sim.Level().Defenses() {
		for sim.Stock(a.ID) > 0 && next < len(cells) {
			if sim.Place(a.ID, cells[next]) {
				placed++
			}
			next++
		}
	}
	return placed
}
