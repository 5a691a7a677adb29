// armd: HTTP and WebSocket service for a planar articulated arm
// Serves joint control and inverse kinematics over REST, pushes state on /ws/state
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-planar-arm/internal/config"
	"github.com/teslashibe/go-planar-arm/internal/log"
	"github.com/teslashibe/go-planar-arm/pkg/arm"
	"github.com/teslashibe/go-planar-arm/pkg/metrics"
	"github.com/teslashibe/go-planar-arm/pkg/web"
)

var (
	version    = "1.0.0"
	configPath = flag.String("config", "", "Path to YAML config file")
	port       = flag.Int("port", 0, "HTTP server port (overrides config)")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	policy     = flag.String("policy", "", "Joint limit policy: reject or clamp (overrides config)")
	initArm    = flag.Bool("init", false, "Create the default arm at startup")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Error("armd stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		return err
	}

	// Flags win over file and environment
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *policy != "" {
		cfg.Control.Policy = *policy
	}
	if *initArm {
		cfg.Server.InitOnStart = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Init(cfg.Log.Level, cfg.Log.Format)
	log.Debug("config loaded",
		"path", *configPath,
		"addr", cfg.Server.Addr(),
		"policy", cfg.Control.Policy,
		"algorithm", cfg.Solver.Algorithm)

	fmt.Println()
	fmt.Println("🦾 armd v" + version)
	fmt.Println("   Planar arm controller")
	fmt.Println()

	opts := cfg.ControllerOptions()
	opts.Logger = log.For("controller")
	mgr := arm.NewManager(cfg.ArmSpec(), opts)
	metrics.SetArmInitialized(false)

	if cfg.Server.InitOnStart {
		ctrl, err := mgr.InitDefault()
		if err != nil {
			return fmt.Errorf("init default arm: %w", err)
		}
		log.Info("default arm created", "joints", ctrl.Joints(), "policy", ctrl.Policy())
	}

	server := web.NewServer(mgr, web.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		RequestLog:  cfg.Server.RequestLog,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.Server.Addr()
		srvLog := log.With("addr", addr)
		srvLog.Info("starting server",
			"policy", opts.Policy,
			"algorithm", opts.Algorithm,
			"websocket", fmt.Sprintf("ws://localhost:%d/ws/state", cfg.Server.Port))
		errCh <- server.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Warn("shutdown interrupted", "error", err)
	}

	log.Info("goodbye")
	return nil
}
