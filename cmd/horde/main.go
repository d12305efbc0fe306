package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/l1jgo/horde/internal/asset"
	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/config"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/event"
	coresys "github.com/l1jgo/horde/internal/core/system"
	"github.com/l1jgo/horde/internal/core/task"
	"github.com/l1jgo/horde/internal/data"
	"github.com/l1jgo/horde/internal/difficulty"
	"github.com/l1jgo/horde/internal/factory"
	"github.com/l1jgo/horde/internal/handler"
	gonet "github.com/l1jgo/horde/internal/net"
	"github.com/l1jgo/horde/internal/net/packet"
	"github.com/l1jgo/horde/internal/persist"
	"github.com/l1jgo/horde/internal/pool"
	"github.com/l1jgo/horde/internal/scripting"
	"github.com/l1jgo/horde/internal/spawn"
	"github.com/l1jgo/horde/internal/system"
	"github.com/l1jgo/horde/internal/wave"
	"github.com/l1jgo/horde/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var stats = message.NewPrinter(language.English)

func printBanner(serverName string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               horde  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     wave spawner · headless arena         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", serverName, seed)
}

func printSection(title string) {
	lineLen := 46 - utf8.RuneCountInString(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := stats.Sprintf("%d", count)
	dotsLen := 42 - utf8.RuneCountInString(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/horde.toml"
	if p := os.Getenv("HORDE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, cfgErr := config.Load(cfgPath)
	if cfgErr != nil && !errors.Is(cfgErr, config.ErrNotFound) {
		return fmt.Errorf("load config: %w", cfgErr)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	if cfgErr != nil {
		log.Warn("config file missing, using defaults", zap.String("path", cfgPath))
	}

	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printBanner(cfg.Server.Name, seed)

	// 3. Load data tables
	printSection("Data")
	catalog, err := data.LoadEnemyCatalog(cfg.Data.Enemies)
	if err != nil {
		log.Warn("enemy catalog unavailable, using fallback", zap.Error(err))
		catalog = data.FallbackCatalog()
		printWarn("enemy catalog missing, fallback archetype only")
	}
	printStat("enemy archetypes", catalog.Count())
	for t := 1; t <= data.TierCount; t++ {
		printStat(fmt.Sprintf("  tier %d", t), len(catalog.Tier(t)))
	}

	curve, err := data.LoadWaveCurve(cfg.Data.Waves)
	if err != nil {
		log.Warn("wave curve unavailable, using fallback", zap.Error(err))
		curve = data.FallbackCurve()
		printWarn("wave curve missing, fallback curve")
	} else {
		printStat("tier weight ranges", len(curve.TierRanges))
	}

	lua, err := scripting.NewEngine(cfg.Data.ScriptsDir, log.Named("lua"))
	if err != nil {
		log.Warn("wave scripts disabled", zap.Error(err))
		printWarn("wave scripts failed to load, YAML curves only")
	} else {
		defer lua.Close()
		if lua.Has("count_curve") || lua.Has("budget_curve") {
			printOK("Lua curve overrides loaded")
		}
	}
	fmt.Println()

	// 4. Optional telemetry database
	var telemetry *system.TelemetrySystem
	bus := event.NewBus()
	if cfg.Database.Enabled {
		printSection("Database")
		ctx := context.Background()
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("schema version", int(version))
		telemetry = system.NewTelemetrySystem(persist.NewWaveLogRepo(db), bus, cfg.Server.StartTime, cfg.Database.FlushInterval, log.Named("telemetry"))
		printOK("wave log ready")
		fmt.Println()
	}

	// 5. Build the simulation
	ecsWorld := ecs.NewWorld()
	stores := component.NewStores(ecsWorld)
	tasks := task.NewScheduler()
	park := component.Vec2{X: cfg.Arena.ParkX, Y: cfg.Arena.ParkY}

	entityPool := pool.New(ecsWorld, stores, tasks, cfg.Pool.MaxSize, park, log.Named("pool"))
	prefabs := asset.NewPrefabLoader(cfg.Data.PrefabDir, ecsWorld, stores, tasks, log.Named("asset"))
	enemies := factory.New(factory.Deps{
		World:   ecsWorld,
		Stores:  stores,
		Pool:    entityPool,
		Assets:  prefabs,
		Catalog: catalog,
		Tasks:   tasks,
		Bus:     bus,
		Park:    park,
		Log:     log.Named("factory"),
	})

	curves := scripting.NewCurves(lua, curve)
	dc := cfg.Difficulty
	controller := difficulty.NewController(difficulty.Settings{
		Window:                dc.Window,
		MinSamples:            dc.MinSamples,
		TargetAverageWaveTime: dc.TargetAverageWaveTime,
		TargetSurvivalRate:    dc.TargetSurvivalRate,
		AdaptationRate:        dc.AdaptationRate,
		MinMultiplier:         dc.MinMultiplier,
		MaxMultiplier:         dc.MaxMultiplier,
	}, curves, log.Named("difficulty"))

	composer := wave.NewComposer(wave.Deps{
		Catalog: catalog,
		Curve:   curve,
		Counts:  curves,
		Budget:  controller,
		Policy:  wave.OverrunPolicy(cfg.Wave.OverrunPolicy),
		Rand:    rand.New(rand.NewSource(seed)),
		Log:     log.Named("wave"),
	})

	var player *world.Player
	var playerStatus spawn.PlayerStatus
	if cfg.Player.Enabled {
		player = world.NewPlayer(cfg.Player.MaxHP)
		playerStatus = player
	}

	spawner := spawn.NewScheduler(spawn.Deps{
		Planner:    composer,
		Factory:    enemies,
		Liveness:   enemies,
		Pools:      entityPool,
		Producer:   enemies,
		Difficulty: controller,
		Tasks:      tasks,
		Player:     playerStatus,
		Notifier:   spawn.BusNotifier{Bus: bus},
		Arena: spawn.Arena{
			Width:  cfg.Arena.Width,
			Height: cfg.Arena.Height,
			Margin: cfg.Arena.SpawnMargin,
		},
		WarmupPerArchetype: cfg.Pool.WarmupPerArchetype,
		Rand:               rand.New(rand.NewSource(seed + 1)),
		Log:                log.Named("spawn"),
	})

	// 6. Register systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus), tasks, spawner)
	if player != nil {
		runner.Register(system.NewAttritionSystem(player, stores, enemies, bus,
			cfg.Player.KillsPerSecond, cfg.Player.DamageScale, log.Named("player")))
	}
	if telemetry != nil {
		runner.Register(telemetry)
	}
	runner.Register(system.NewCleanupSystem(ecsWorld))

	if cfg.Data.Watch {
		if watcher := newWatcher(cfg.Data, log); watcher != nil {
			defer watcher.Close()
			targets := system.ReloadTargets{
				EnemiesPath: cfg.Data.Enemies,
				WavesPath:   cfg.Data.Waves,
				PrefabDir:   cfg.Data.PrefabDir,
				Catalogs:    []system.CatalogUser{composer, enemies},
				Curves:      []system.CurveUser{composer, curves},
				Prefabs:     prefabs,
			}
			if lua != nil {
				targets.Scripts = lua
			}
			runner.Register(system.NewReloadSystem(watcher, targets, log.Named("reload")))
		}
	}

	// 7. Spectator / control feed
	var feed *gonet.Server
	if cfg.Feed.Enabled {
		store := gonet.NewSessionStore()
		pktReg := packet.NewRegistry(log.Named("packet"))
		handler.RegisterAll(pktReg, &handler.Deps{
			Spawner:           spawner,
			AdminPasswordHash: cfg.Feed.AdminPasswordHash,
			Log:               log.Named("feed"),
		})
		handler.SubscribeFeed(bus, store, cfg.Feed.BroadcastSpawns)

		feed, err = gonet.NewServer(cfg.Feed.BindAddress, gonet.ServerConfig{
			Name:      cfg.Server.Name,
			InSize:    cfg.Feed.InQueueSize,
			OutSize:   cfg.Feed.OutQueueSize,
			PktPerSec: cfg.Feed.PacketsPerSecond,
		}, log.Named("net"))
		if err != nil {
			return fmt.Errorf("feed server: %w", err)
		}
		go feed.AcceptLoop()
		runner.Register(
			system.NewInputSystem(feed, pktReg, store, cfg.Feed.MaxPacketsPerTick, log.Named("input")),
			system.NewOutputSystem(store),
		)
		if cfg.Feed.AdminPasswordHash == "" {
			log.Warn("feed admin password not set, control commands disabled")
		}
	}

	// 8. Warm pools
	printSection("Pools")
	warmCtx, cancel := context.WithTimeout(context.Background(), cfg.Pool.WarmupTimeout)
	if err := spawner.Initialize(warmCtx); err != nil {
		log.Warn("pool warm-up incomplete", zap.Error(err))
		printWarn("warm-up timed out, continuing")
	}
	cancel()
	printStat("pooled entities", entityPool.Total())
	fmt.Println()

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	if feed != nil {
		printReady(fmt.Sprintf("feed listening on %s", feed.Addr().String()))
	}
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	if cfg.Server.AutoStart {
		spawner.StartSpawning()
	}

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			spawner.StopSpawning()
			if telemetry != nil {
				// Waves completed on the last tick are still on the bus.
				bus.SwapBuffers()
				bus.DispatchAll()
				telemetry.Flush()
			}
			if feed != nil {
				feed.Shutdown()
			}
			log.Info("server stopped",
				zap.Uint64("ticks", runner.Ticks()),
				zap.Int("wave", spawner.WaveNumber()),
				zap.Float64("multiplier", controller.Multiplier()),
			)
			return nil
		}
	}
}

// newWatcher watches the directories holding data files. Directories that do
// not exist are skipped; nil means nothing could be watched.
func newWatcher(cfg config.DataConfig, log *zap.Logger) *data.Watcher {
	candidates := []string{
		filepath.Dir(cfg.Enemies),
		filepath.Dir(cfg.Waves),
		cfg.ScriptsDir,
		filepath.Join(cfg.PrefabDir, "enemies"),
	}
	seen := make(map[string]bool, len(candidates))
	var dirs []string
	for _, d := range candidates {
		if d == "" {
			continue
		}
		d = filepath.Clean(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			continue
		}
		dirs = append(dirs, d)
	}
	if len(dirs) == 0 {
		return nil
	}

	w, err := data.NewWatcher(dirs...)
	if err != nil {
		log.Warn("hot reload disabled", zap.Error(err))
		return nil
	}
	log.Info("watching data files", zap.Strings("dirs", dirs))
	return w
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
