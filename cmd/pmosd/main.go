package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pmos-ai/pmosd/pkg/actions"
	"github.com/pmos-ai/pmosd/pkg/auth"
	"github.com/pmos-ai/pmosd/pkg/backend"
	"github.com/pmos-ai/pmosd/pkg/bridge"
	"github.com/pmos-ai/pmosd/pkg/config"
	"github.com/pmos-ai/pmosd/pkg/engine"
	"github.com/pmos-ai/pmosd/pkg/gateway"
	"github.com/pmos-ai/pmosd/pkg/health"
	"github.com/pmos-ai/pmosd/pkg/host"
	"github.com/pmos-ai/pmosd/pkg/ingest"
	"github.com/pmos-ai/pmosd/pkg/intent"
	"github.com/pmos-ai/pmosd/pkg/logger"
	"github.com/pmos-ai/pmosd/pkg/resolve"
)

var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", defaultConfigPath(), "path to config file")
		showVersion = flag.Bool("version", false, "print version and exit")
		console     = flag.Bool("console", false, "run the interactive console instead of daemonizing")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pmosd %s\n", version)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}

	workspace := cfg.WorkspacePath()
	if err := os.MkdirAll(workspace, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create workspace %s: %v\n", workspace, err)
		os.Exit(1)
	}

	if cfg.Logging.FileEnabled {
		logPath := cfg.LogFilePath()
		if logPath == "" {
			logPath = filepath.Join(workspace, "logs", "pmosd.log")
		}
		err := logger.EnableFileLoggingWithRotation(
			logPath,
			cfg.Logging.RotationEnabled,
			cfg.Logging.MaxSizeMB,
			cfg.Logging.MaxAgeDays,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to enable file logging: %v\n", err)
		}
	}

	logger.InfoCF("main", "Starting pmosd", map[string]interface{}{
		"version":   version,
		"workspace": workspace,
		"termux":    host.IsTermux(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := host.NewRunner()

	contacts := resolve.NewContactResolver(resolve.NewTermuxContactSource(runner))
	apps := resolve.NewAppResolver(resolve.NewPMAppSource(runner))
	if cfg.Assistant.PreloadResolvers {
		if err := contacts.Preload(ctx); err != nil {
			logger.WarnCF("main", "Contact preload failed", map[string]interface{}{"error": err.Error()})
		}
		if err := apps.Preload(ctx); err != nil {
			logger.WarnCF("main", "App preload failed", map[string]interface{}{"error": err.Error()})
		}
	}

	creds := auth.NewStore(cfg.TokenPath())
	client := backend.NewClient(cfg.Backend, creds)

	executors := intent.Executors{
		Dialer:   actions.NewDialer(runner),
		Clock:    actions.NewClock(runner, cfg.Assistant.AlarmLabel),
		Media:    actions.NewMedia(runner),
		WhatsApp: actions.NewWhatsApp(runner),
		SMS:      actions.NewSMSSender(runner),
		System:   actions.NewSystem(runner),
		Apps:     actions.NewAppLauncher(runner),
		Sleep:    actions.NewSleepTracker(client),
	}

	classifier := intent.NewClassifier(contacts, apps, executors)
	dispatcher := bridge.NewDispatcher(contacts, apps, executors, cfg.Assistant.DismissOnDispatch)
	br := bridge.New(cfg.Backend, creds, dispatcher)
	eng := engine.New(classifier, br)

	if cfg.Ingestion.Enabled {
		tracker := health.NewTracker(health.NewTermuxStepSource(runner), workspace)
		task := ingest.NewTask(
			cfg.Ingestion,
			ingest.NewTermuxSMSSource(runner),
			client,
			creds,
			tracker,
		)
		go task.Run(ctx)
	} else {
		logger.InfoC("main", "Background ingestion disabled")
	}

	if *console {
		if err := gateway.NewConsole(eng, workspace).Run(ctx); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "console error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var gw *gateway.Gateway
	if cfg.Gateway.Enabled {
		gw = gateway.New(cfg.Gateway, eng)
		if err := gw.Start(ctx); err != nil {
			logger.FatalC("main", err.Error())
			os.Exit(1)
		}
	}

	logger.InfoC("main", "pmosd running, press Ctrl+C to stop")
	<-ctx.Done()

	logger.InfoC("main", "Shutting down...")
	if gw != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gw.Stop(shutdownCtx); err != nil {
			logger.WarnCF("main", "Gateway shutdown error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".pmosd", "config.json")
}
