package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/blocklink/worldindex/internal/config"
	"github.com/blocklink/worldindex/internal/core/ecs"
	coresys "github.com/blocklink/worldindex/internal/core/system"
	"github.com/blocklink/worldindex/internal/data"
	"github.com/blocklink/worldindex/internal/persist"
	"github.com/blocklink/worldindex/internal/scripting"
	"github.com/blocklink/worldindex/internal/spatial"
	"github.com/blocklink/worldindex/internal/system"
	"github.com/blocklink/worldindex/internal/telemetry"
	"github.com/blocklink/worldindex/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(level string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            worldindex  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       blockmap actor index simulator      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mlevel:\033[0m %s\n\n", level)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Simulation ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/worldindex.toml"
	if p := os.Getenv("WORLDINDEX_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Level.Path)

	// 3. Load level data and scripts in parallel
	printSection("data")
	var (
		ld      *data.LevelData
		scripts *scripting.Engine
	)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		ld, err = data.LoadLevel(cfg.Level.Path)
		return err
	})
	g.Go(func() error {
		var err error
		scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log.Named("lua"))
		return err
	})
	if err := g.Wait(); err != nil {
		if scripts != nil {
			scripts.Close()
		}
		return fmt.Errorf("load data: %w", err)
	}
	defer scripts.Close()

	lvl := ld.Level
	printStat("sectors", len(lvl.Sectors))
	printStat("lines", len(lvl.Lines))
	printStat("polyobjects", len(lvl.Polys))
	printStat("blockmap cells", lvl.Blockmap.Width*lvl.Blockmap.Height)
	printStat("kinds", len(ld.Kinds))
	printOK("level and scripts loaded")
	fmt.Println()

	// 4. Build the world and spawn map things
	printSection("world")
	ws := world.NewState(lvl, spatial.Options{
		MaxTraceSteps:   cfg.Index.MaxTraceSteps,
		LegacyMapThings: cfg.Index.LegacyMapThings,
	}, cfg.Simulation.Seed, log)
	spawned, err := ws.SpawnLevel(ld)
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	st := ws.Index.Stats()
	printStat("objects", spawned)
	printStat("linked actors", st.LinkedActors)
	printStat("block nodes", st.LiveNodes)
	printStat("touch nodes", st.TouchNodes)
	fmt.Println()

	// 5. Telemetry output and optional persistence
	out, err := telemetry.NewOutputManager(cfg.Telemetry.Dir)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer out.Close()
	collector := telemetry.NewCollector(cfg.Telemetry.Window)

	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(ws, collector, log.Named("events")))
	runner.Register(system.NewMovementSystem(ws, scripts))
	runner.Register(system.NewHuntSystem(ws, scripts, cfg.Simulation.HuntRadius))
	runner.Register(system.NewSightSystem(ws, cfg.Simulation.SightInterval))
	telemetrySys := system.NewTelemetrySystem(ws, collector, out, log.Named("telemetry"))
	runner.Register(telemetrySys)
	runner.Register(system.NewCleanupSystem(ws))

	var (
		persistSys *system.PersistenceSystem
		finishRun  func()
	)
	if cfg.Database.DSN != "" {
		printSection("database")
		ps, finish, err := openPersistence(cfg, ld.Name, telemetrySys, log)
		if err != nil {
			return err
		}
		persistSys, finishRun = ps, finish
		runner.Register(persistSys)
		printOK("PostgreSQL connected, migrations applied")
		fmt.Println()
	}

	// 6. Run the loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("tick %s, seed %d", cfg.Simulation.TickRate, cfg.Simulation.Seed))
	if cfg.Simulation.Ticks > 0 {
		printReady(fmt.Sprintf("stopping after %d ticks", cfg.Simulation.Ticks))
	}
	fmt.Println()

	started := time.Now()
loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
			if cfg.Simulation.Ticks > 0 && runner.Ticks() >= uint64(cfg.Simulation.Ticks) {
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			break loop
		}
	}

	// 7. Shutdown: snapshot, flush, summary
	if cfg.Telemetry.SnapshotPath != "" {
		snap := telemetry.TakeSnapshot(ws.Index, ld.Name, ws.Tick(), actorsOf(ws))
		if err := telemetry.WriteSnapshot(cfg.Telemetry.SnapshotPath, snap); err != nil {
			log.Error("snapshot failed", zap.Error(err))
		} else {
			log.Info("snapshot written", zap.String("path", cfg.Telemetry.SnapshotPath))
		}
	}
	if persistSys != nil {
		persistSys.Flush()
		finishRun()
	}

	st = ws.Index.Stats()
	calls, fails := scripts.Stats()
	log.Info("simulation stopped",
		zap.Uint64("ticks", runner.Ticks()),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("live", ws.Live()),
		zap.Int("linked", st.LinkedActors),
		zap.Int("live_nodes", st.LiveNodes),
		zap.Int("free_nodes", st.FreeNodes),
		zap.Uint64("traces", st.Traces),
		zap.Uint64("intercepts", st.Intercepts),
		zap.Int("windows", telemetrySys.Windows()),
		zap.Uint64("lua_calls", calls),
		zap.Uint64("lua_fails", fails),
	)
	return nil
}

// openPersistence connects, migrates and opens a run row. The returned
// finish func stamps the run and closes the pool.
func openPersistence(cfg *config.Config, level string, ts *system.TelemetrySystem, log *zap.Logger) (*system.PersistenceSystem, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log.Named("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	version, err := persist.RunMigrations(ctx, db.Pool)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	repo := persist.NewWindowRepo(db)
	runID, err := repo.StartRun(ctx, level, cfg.Simulation.Seed, time.Unix(cfg.Simulation.StartedAt, 0))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("telemetry run opened", zap.Int64("run", runID), zap.Int64("schema", version))

	// Save every few windows.
	ps := system.NewPersistenceSystem(ts, repo, runID, log.Named("persist"), 4*cfg.Telemetry.Window)
	finish := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.FinishRun(ctx, runID, time.Now()); err != nil {
			log.Error("finish run failed", zap.Error(err))
		}
		db.Close()
	}
	return ps, finish, nil
}

func actorsOf(ws *world.State) []*spatial.Actor {
	out := make([]*spatial.Actor, 0, ws.Live())
	ws.Mobjs.Each(func(_ ecs.EntityID, m *world.Mobj) {
		out = append(out, &m.Actor)
	})
	return out
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
