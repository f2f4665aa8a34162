package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/whale2d/sim2d/internal/config"
	"github.com/whale2d/sim2d/internal/core/event"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/data"
	"github.com/whale2d/sim2d/internal/feed"
	"github.com/whale2d/sim2d/internal/input"
	"github.com/whale2d/sim2d/internal/persist"
	"github.com/whale2d/sim2d/internal/scripting"
	"github.com/whale2d/sim2d/internal/system"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               sim2d  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       2D entity-component simulation      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mrun:\033[0m %s\n\n", name)
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
	cfgPath := "config/sim2d.toml"
	if p := os.Getenv("SIM2D_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger; the terminal viewer owns the screen
	terminal := cfg.Display.Mode == "terminal"
	if terminal && cfg.Logging.File == "" {
		cfg.Logging.File = "sim2d.log"
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if !terminal {
		printBanner(cfg.Simulation.Name)
	}

	// 3. Scene
	scene, err := data.LoadScene(cfg.Scene.Path)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	ws := world.NewState(input.NewKeys(cfg.Input.HoldTicks))
	ids := scene.Spawn(ws)
	if !terminal {
		printSection("scene")
		printStat("entities", len(ids))
		printStat("bodies", ws.Bodies.Len())
		printStat("colliders", ws.Colliders.Len())
		printStat("controllers", ws.Controllers.Len())
		fmt.Println()
	}

	// 4. Scripts
	deps := system.Deps{Bus: event.NewBus(), Log: log}
	if cfg.Scripting.Enabled {
		eng, err := scripting.NewEngine(cfg.Scripting.Dir, ws.Keys, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer eng.Close()
		deps.Controllers = eng
	}

	// 5. Snapshots
	if cfg.Persist.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		defer db.LogStats()

		version, err := db.RunMigrations(ctx)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		repo := persist.NewSnapshotRepo(db)
		if err := repo.StartRun(ctx, cfg.Simulation.Name, cfg.Scene.Path, cfg.Physics.Resolution); err != nil {
			return fmt.Errorf("snapshots: %w", err)
		}
		deps.Snapshots = repo
		log.Info("snapshots enabled",
			zap.String("run_id", repo.RunID().String()),
			zap.Int64("schema_version", version),
			zap.Int("interval", cfg.Persist.SnapshotInterval))
	}

	// 6. Spectator feed
	var hub *feed.Hub
	if cfg.Feed.Enabled {
		hub = feed.NewHub(cfg.Feed.QueueSize, log)
		deps.Feed = hub
	}

	// 7. Systems
	runner := coresys.NewRunner()
	pipe := system.RegisterAll(runner, ws, cfg, deps)
	subscribeLogging(deps.Bus, ws, log)

	// 8. Display
	var view *viewer
	var events <-chan tcell.Event
	if terminal {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		view = newViewer(screen, cfg.Display.CellsPerUnit)
		defer view.close()
		events = view.start()
	}

	// 9. Loop
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if hub != nil {
		g.Go(func() error {
			return hub.ListenAndServe(cfg.Feed.Addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			return hub.Shutdown(shutCtx)
		})
	}

	if !terminal {
		printSection("running")
		printReady(fmt.Sprintf("tick %s, resolution %s", cfg.Simulation.TickRate, cfg.Physics.Resolution))
		if hub != nil {
			printReady(fmt.Sprintf("spectators on ws://%s/ws", cfg.Feed.Addr))
		}
		fmt.Println()
	}

	g.Go(func() error {
		defer cancel()
		reason := loop(gctx, runner, ws, cfg, view, events)
		if pipe.Snapshot != nil {
			pipe.Snapshot.Save()
		}
		log.Info("simulation stopped",
			zap.String("reason", reason),
			zap.Uint64("ticks", runner.Ticks()),
			zap.Uint64("digest", ws.Digest()))
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if !terminal {
		printOK("done")
	}
	return nil
}

// loop ticks the simulation until the context ends, max_ticks is reached or
// the viewer quits, and reports why it stopped.
func loop(ctx context.Context, runner *coresys.Runner, ws *world.State, cfg *config.Config, view *viewer, events <-chan tcell.Event) string {
	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
			if view != nil {
				view.draw(ws)
			}
			if cfg.Simulation.MaxTicks > 0 && runner.Ticks() >= cfg.Simulation.MaxTicks {
				return "max ticks"
			}
		case ev, ok := <-events:
			if !ok || !view.handle(ev, ws.Keys) {
				return "quit"
			}
		case <-ctx.Done():
			return "interrupted"
		}
	}
}

// subscribeLogging reports landings and removals as they are dispatched.
func subscribeLogging(bus *event.Bus, ws *world.State, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.Landed) {
		log.Debug("landed", zap.String("entity", ws.Name(ev.Entity)), zap.Uint64("tick", ev.Tick))
	})
	event.Subscribe(bus, func(ev event.Destroyed) {
		log.Info("entity destroyed", zap.Uint32("entity", ev.Entity.Index()), zap.String("reason", ev.Reason))
	})
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
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
