// Package main provides the dice tray binary: an interactive terminal that
// rolls, animates and simulates dice expressions and remembers the last one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/cory-johannsen/dicetray/internal/config"
	"github.com/cory-johannsen/dicetray/internal/console"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/game/preset"
	"github.com/cory-johannsen/dicetray/internal/game/sim"
	"github.com/cory-johannsen/dicetray/internal/observability"
	"github.com/cory-johannsen/dicetray/internal/server"
	"github.com/cory-johannsen/dicetray/internal/sound"
	"github.com/cory-johannsen/dicetray/internal/storage/postgres"
	"github.com/cory-johannsen/dicetray/internal/storage/preference"
	"github.com/cory-johannsen/dicetray/internal/storage/sqlite"
	"github.com/cory-johannsen/dicetray/internal/tween"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dicetray.yaml", "path to configuration file")
	noColor := flag.Bool("no-color", false, "disable ANSI color and animation frames")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening preference store",
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err),
		)
	}

	expr, err := preference.New(ctx, store, cfg.Storage.ExpressionKey, cfg.Storage.DefaultExpression, logger)
	if err != nil {
		logger.Fatal("loading current expression", zap.Error(err))
	}

	presets, err := preset.Load(cfg.Presets.Path)
	if err != nil {
		logger.Fatal("loading presets", zap.Error(err))
	}
	logger.Info("presets loaded", zap.Int("count", len(presets)))

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	simulator := sim.NewSimulator(dice.NewSeededSource(seed), cfg.Simulation.SampleCount, logger)
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	curve := tween.Linear()
	if cfg.Tween.Curve == config.CurveSpring {
		fps := max(1, int(time.Second/cfg.Tween.FrameInterval))
		curve = tween.Spring(fps, cfg.Tween.SpringFrequency, cfg.Tween.SpringDamping)
	}
	display := tween.New(0, cfg.Tween.Duration, tween.NewTickerScheduler(cfg.Tween.FrameInterval), curve)

	player := sound.NewPlayer(cfg.Sound, logger)

	interactive := !*noColor && term.IsTerminal(int(os.Stdout.Fd()))
	tray := console.New(os.Stdin, os.Stdout, console.Deps{
		Roller:      roller,
		Simulator:   simulator,
		Expression:  expr,
		Display:     display,
		Sound:       player,
		Presets:     presets,
		Interactive: interactive,
		Logger:      logger,
	})

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("storage", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		StopFn: closeStore,
	})
	lifecycle.Add("sound", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		StopFn: player.Close,
	})
	lifecycle.Add("console", &server.FuncService{
		StartFn: tray.Run,
		StopFn:  tray.Stop,
	})

	logger.Info("dice tray ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("expression", expr.Get()),
		zap.Int("sample_count", simulator.SampleCount()),
		zap.Bool("sound", player != nil),
		zap.Bool("interactive", interactive),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("dice tray exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// openStore connects the configured preference backend and returns it with
// a function that releases it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (preference.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite store opened", zap.String("path", s.Path()))
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("closing sqlite store", zap.Error(err))
			}
		}, nil

	case config.BackendPostgres:
		dbStart := time.Now()
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return pool.Preferences(), pool.Close, nil

	case config.BackendMemory:
		return preference.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
