package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/npcsync/server/internal/config"
	"github.com/npcsync/server/internal/core/event"
	coresys "github.com/npcsync/server/internal/core/system"
	"github.com/npcsync/server/internal/handler"
	gonet "github.com/npcsync/server/internal/net"
	"github.com/npcsync/server/internal/net/packet"
	"github.com/npcsync/server/internal/npc"
	"github.com/npcsync/server/internal/scripting"
	"github.com/npcsync/server/internal/system"
	"github.com/npcsync/server/internal/world"
)

// visibilityInterval is how many ticks pass between AOI rescans.
const visibilityInterval = 2

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("server", cfg.Server.Name),
		zap.Int("id", cfg.Server.ID))

	// 2. Core: bus, world, scheduler
	bus := event.NewBus(log)
	ws := world.NewWorld(bus, log)
	sched := coresys.NewScheduler(log)

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := npc.NewMetrics(reg)
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = serveMetrics(cfg.Metrics.BindAddress, reg, log)
	}

	// 4. NPC registry and scripting
	npcs := npc.NewRegistry(bus, ws, sched, log, metrics)

	var engine *scripting.Engine
	if cfg.Scripting.Enabled {
		engine, err = scripting.NewEngine(cfg.Scripting.ScriptDir, npcs, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
	}

	// 5. Instances and NPC spawns
	spawns, err := loadSpawns(cfg.World.SpawnFile, log)
	if err != nil {
		return err
	}
	addInstances(ws, spawns, cfg.World)
	n, err := spawnNpcs(ws, npcs, engine, spawns, log)
	if err != nil {
		return err
	}
	log.Info("npcs spawned", zap.Int("count", n), zap.Int("defined", spawns.Count()))

	// 6. Packet handlers
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Config: cfg,
		Log:    log,
		World:  ws,
		Bus:    bus,
	}
	handler.RegisterAll(pktReg, deps)

	// 7. Network server
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.MaxPacketsPerSecond,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()
	sessions := gonet.NewSessionStore()

	event.Subscribe(bus, func(ev world.ClientLeft) {
		log.Info("client left",
			zap.Uint64("client", ev.ClientID),
			zap.String("name", ev.Name),
			zap.Int("online", ws.PlayerCount()))
	})

	// 8. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, sessions, ws, bus, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(sched)
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewVisibilitySystem(ws, visibilityInterval))
	runner.Register(system.NewOutputSystem(sessions))
	runner.Register(system.NewCleanupSystem(ws, log))
	runner.Observe(tickObserver(cfg.Network.TickRate, reg, log))

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	log.Info("server ready",
		zap.String("addr", netServer.Addr().String()),
		zap.Duration("tick", cfg.Network.TickRate))

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			netServer.Shutdown()
			if metricsSrv != nil {
				_ = metricsSrv.Close()
			}
			log.Info("server stopped", zap.Uint64("ticks", runner.Ticks()))
			return nil
		}
	}
}

// tickObserver records tick duration and warns when a tick overruns its
// budget.
func tickObserver(budget time.Duration, reg prometheus.Registerer, log *zap.Logger) coresys.TickObserver {
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "npcsync",
		Name:      "tick_duration_seconds",
		Help:      "Wall time of one full game loop tick.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
	})
	reg.MustRegister(hist)
	return func(tick uint64, took time.Duration) {
		hist.Observe(took.Seconds())
		if took > budget {
			log.Warn("slow tick",
				zap.Uint64("tick", tick),
				zap.Duration("took", took),
				zap.Duration("budget", budget))
		}
	}
}

// serveMetrics exposes reg on addr/metrics in the background.
func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	log.Info("metrics listening", zap.String("addr", addr))
	return srv
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
