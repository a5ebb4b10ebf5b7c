package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"kraken-console/internal/agent"
	openaimodel "kraken-console/internal/agent/openai"
	"kraken-console/internal/alerts"
	"kraken-console/internal/assistant"
	"kraken-console/internal/catalog"
	"kraken-console/internal/command"
	"kraken-console/internal/config"
	"kraken-console/internal/events"
	"kraken-console/internal/history"
	"kraken-console/internal/logger"
	"kraken-console/internal/portal"
	"kraken-console/internal/tui"
)

var log = logger.Named("main")

type cliArgs struct {
	cfgPath         string
	backendOverride string
	modelOverride   string
	configOverrides stringSlice
	noPoll          bool
}

func newFlagSet(name string) (*flag.FlagSet, *cliArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &cliArgs{}

	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.kraken/config.toml)")
	fs.StringVar(&args.backendOverride, "backend", "", "Alert backend base URL override")
	fs.StringVar(&args.modelOverride, "model", "", "Model override")
	fs.StringVar(&args.modelOverride, "m", "", "Alias for --model")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&args.noPoll, "no-poll", false, "Do not start alert backend polling")

	return fs, args
}

func main() {
	logger.Configure()

	fs, cli := newFlagSet("kraken-console")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse args: %v", err)
	}

	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, []string(cli.configOverrides))
	if v := strings.TrimSpace(cli.backendOverride); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(cli.modelOverride); v != "" {
		cfg.Model = v
	}

	if logFile, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	ctrl := assistant.NewController()
	portals := portal.NewManager(portal.Options{
		OnFullscreen: func(catalog.Descriptor) { ctrl.RequestAutoClose() },
	})
	store := alerts.NewStore()
	bus := events.NewBus()
	defer bus.Close()

	pollLog := logger.Named("poller")
	if entry, closer, _, err := logger.SetupComponentFile("poller", logger.DefaultPollerLogPath); err != nil {
		log.Warnf("failed to initialize poller log (%s): %v", logger.DefaultPollerLogPath, err)
	} else {
		pollLog = entry
		defer closer.Close()
	}

	client := alerts.NewClient(cfg.BackendURL)
	poller := alerts.NewPoller(alerts.PollerOptions{
		Fetcher:  client,
		Interval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		OnNewAlert: func(a alerts.Alert) {
			pollLog.WithField("alert", a.ID).Info("new alert detected")
			bus.Publish(events.AlertRaised{Alert: a})
		},
		OnUpdate: func(st alerts.PollStatus) {
			if st.Err != "" {
				pollLog.WithField("error", st.Err).Warn("poll failed")
			} else {
				pollLog.WithField("alerts", len(st.Snapshot.Alerts)).Debug("poll completed")
			}
			bus.Publish(events.ConnectionChanged{Connected: st.Connected, Err: st.Err})
		},
	})

	var modelClient agent.ModelClient
	if strings.TrimSpace(cfg.APIKey) != "" {
		mc, err := openaimodel.New(openaimodel.Options{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Warnf("model client unavailable: %v", err)
		} else {
			modelClient = mc
		}
	} else {
		log.Warnf("no API key configured; command interpretation disabled")
	}
	interp := agent.NewInterpreter(modelClient, cfg.Model)

	dispatcher := command.NewDispatcher(command.Options{
		Portals: portals,
		Store:   store,
		Backend: client,
		BackendAlerts: func() []alerts.Alert {
			return poller.Status().Snapshot.Alerts
		},
		Bus: bus,
	})

	histStore, err := history.NewDefault()
	if err != nil {
		log.Warnf("command history unavailable: %v", err)
		histStore = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		probeCtx, probeCancel := context.WithTimeout(ctx, 3*time.Second)
		defer probeCancel()
		if info, err := client.Health(probeCtx); err != nil {
			log.Warnf("alert backend unreachable: %v", err)
		} else {
			log.Infof("alert backend %s, %d alerts", info.Status, info.AlertsCount)
		}
	}()

	if cfg.AutoStartPolling && !cli.noPoll {
		poller.Start(ctx)
		defer poller.Stop()
	}

	if _, err := tui.Run(tui.Options{
		Config:      cfg,
		Portals:     portals,
		Assistant:   ctrl,
		Dispatcher:  dispatcher,
		Interpreter: interp,
		Poller:      poller,
		Store:       store,
		Bus:         bus,
		History:     histStore,
	}); err != nil {
		log.Fatalf("console failed: %v", err)
	}
}
