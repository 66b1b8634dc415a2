package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vumc-media/atrium-calendar-feed/internal/build"
	"github.com/vumc-media/atrium-calendar-feed/internal/capture"
	"github.com/vumc-media/atrium-calendar-feed/internal/config"
	appLog "github.com/vumc-media/atrium-calendar-feed/internal/log"
	"github.com/vumc-media/atrium-calendar-feed/internal/web"
)

type flagConfig struct {
	configPath string
	out        string
	listen     string
	once       bool
	serve      bool
	snapshot   bool
	verbose    bool
}

func main() {
	flags := parseFlags()
	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("atriumcal starting", "version", "0.2.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.out != "" {
		conf.OutputPath = flags.out
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"feed_url_set", conf.FeedURL != "",
		"timezone", conf.Timezone,
		"horizon_days", conf.HorizonDays,
		"max_items", conf.MaxItems,
		"output", conf.OutputPath,
		"refresh", conf.RefreshCron,
		"weather", conf.Weather.Enabled,
		"once", flags.once,
		"serve", flags.serve,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	pipeline := build.New(conf)

	// One build happens up front regardless of mode. Failure to obtain the
	// feed is the one fatal condition in the whole system; a static host
	// must never be left with partial output.
	if err := pipeline.Run(ctx, time.Now()); err != nil {
		appLog.Error("build failed", err)
		os.Exit(1)
	}

	if flags.snapshot {
		runSnapshot(ctx, conf)
	}

	if flags.once {
		appLog.Info("single build complete, exiting")
		return
	}

	if flags.serve {
		server := web.NewServer(conf, pipeline)
		go func() {
			appLog.Info("starting preview server", "listen", "http://"+conf.Listen)
			if err := http.ListenAndServe(conf.Listen, server.Handler()); err != nil {
				appLog.Error("preview server stopped", err)
				cancel()
			}
		}()
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if err := pipeline.Run(ctx, time.Now()); err != nil {
			// Periodic failures keep the previous document in place; the
			// next tick retries.
			appLog.Error("scheduled build failed", err)
			return
		}
		if flags.snapshot {
			runSnapshot(ctx, conf)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	appLog.Info("atriumcal exiting")
}

func runSnapshot(ctx context.Context, conf *config.Config) {
	previewPath := filepath.Join(filepath.Dir(conf.OutputPath), "preview.png")
	err := capture.BoardPNG(ctx, capture.Options{
		URL:        "file://" + absPath(conf.OutputPath),
		OutputPath: previewPath,
	})
	if err != nil {
		appLog.Error("snapshot capture failed", err, "output", previewPath)
		return
	}
	appLog.Info("snapshot written", "output", previewPath)
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/atriumcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.out, "out", "", "Output HTML path (overrides config if set)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one build and exit")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the built board and JSON/ICS API over HTTP")
	flag.BoolVar(&cfg.snapshot, "snapshot", false, "Capture a PNG snapshot of the board after each build")
	flag.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
