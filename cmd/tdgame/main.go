package main

import (
	"flag"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gonewx/tdcore/pkg/app"
	"github.com/gonewx/tdcore/pkg/config"
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
		log.Fatal().Err(err).Msg("[tdgame] failed to load settings")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(settings.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if *levelPath != "" {
		settings.Data.Level = *levelPath
	}

	catalog, err := config.LoadCatalog(settings.Data.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("[tdgame] failed to load archetype catalog")
	}
	level, err := config.LoadLevelConfig(settings.Data.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("[tdgame] failed to load level")
	}

	cam := newCamera(settings.Board.Rows, settings.Board.Cols, settings.Board.CellSize)
	views := newViewPool()

	opts := app.OptionsFromSettings(settings, catalog, level)
	opts.Rays = cam
	opts.Pointer = cursor{cam: cam}
	opts.Views = views

	sim, err := app.NewSimulation(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("[tdgame] failed to build simulation")
	}

	viewer := newViewer(sim, cam, views, settings.Sim.TickSeconds())

	ebiten.SetTPS(settings.Sim.TickRate)
	ebiten.SetWindowSize(cam.width, cam.height)
	ebiten.SetWindowTitle("tdcore - " + level.Name)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal().Err(err).Msg("[tdgame] game loop exited with error")
	}
}
