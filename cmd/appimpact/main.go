package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/srodi/appimpact/pkg/collector/candidates"
	"github.com/srodi/appimpact/pkg/collector/memory"
	"github.com/srodi/appimpact/pkg/collector/usage"
	"github.com/srodi/appimpact/pkg/config"
	"github.com/srodi/appimpact/pkg/engine"
	"github.com/srodi/appimpact/pkg/insight"
	applog "github.com/srodi/appimpact/pkg/log"
	"github.com/srodi/appimpact/pkg/metrics"
	"github.com/srodi/appimpact/pkg/server"
)

type cliFlags struct {
	configFile string
	interval   time.Duration
	top        int
	sampler    string
	listen     string
	logFile    string
	once       bool
	debug      bool
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	app := kingpin.New("appimpact", "Ranks running apps by their current CPU and memory impact.")
	app.Flag("config", "YAML configuration file.").Short('c').StringVar(&f.configFile)
	app.Flag("interval", "Refresh interval, e.g. 500ms or 2s.").DurationVar(&f.interval)
	app.Flag("top", "Number of apps to publish per cycle.").IntVar(&f.top)
	app.Flag("sampler", "Usage sampler to use.").EnumVar(&f.sampler, usage.KindAuto, usage.KindGopsutil, usage.KindPS)
	app.Flag("listen", "Serve /api and /metrics on this address.").StringVar(&f.listen)
	app.Flag("log-file", "Append logs to this file instead of stderr.").StringVar(&f.logFile)
	app.Flag("once", "Run a single refresh cycle, print it and exit.").BoolVar(&f.once)
	app.Flag("debug", "Enable debug logging.").BoolVar(&f.debug)
	if _, err := app.Parse(args); err != nil {
		return cliFlags{}, err
	}
	return f, nil
}

// loadConfig reads the config file, if any, and lets flags win over it.
func loadConfig(f cliFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.NewConfigWithFile(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.interval != 0 {
		cfg.Interval = f.interval
	}
	if f.top != 0 {
		cfg.TopN = f.top
	}
	if f.sampler != "" {
		cfg.Sampler = f.sampler
	}
	if f.listen != "" {
		cfg.Metrics.Listen = f.listen
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "appimpact: %v\n", err)
		os.Exit(2)
	}
	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "appimpact: %v\n", err)
		os.Exit(2)
	}
	logger, closeLog, err := applog.New(cfg.Log, f.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "appimpact: %v\n", err)
		os.Exit(2)
	}
	defer closeLog()
	logger.Debugf("effective configuration:\n%s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, f.once, logger); err != nil {
		logger.WithError(err).Error("appimpact stopped")
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, once bool, logger *logrus.Logger) error {
	totalMem, err := memory.EffectiveMemoryBytes()
	if err != nil {
		return fmt.Errorf("determining total memory: %w", err)
	}
	sampler, err := usage.New(cfg.Sampler)
	if err != nil {
		return err
	}
	source := candidates.NewSource(cfg.Filter, applog.Component(logger, "candidates"))
	insights := insight.Default(cfg.Scoring, cfg.AI)

	var recorder *metrics.Recorder
	var observer engine.Observer
	if cfg.Metrics.Listen != "" {
		recorder = metrics.NewRecorder()
		observer = recorder
	}

	sampleTimeout := cfg.SampleTimeout
	if sampleTimeout == 0 {
		sampleTimeout = -1
	}
	orch := engine.New(source, sampler, engine.Options{
		Interval:         cfg.Interval,
		TopN:             cfg.TopN,
		HistoryLimit:     cfg.HistoryLimit,
		SampleTimeout:    sampleTimeout,
		TotalMemoryBytes: float64(totalMem),
		Tuning:           cfg.Scoring,
		BadgeThreshold:   cfg.AI.BadgeThreshold,
		Insights:         insights,
		Observer:         observer,
		Logger:           applog.Component(logger, "engine"),
	})

	v := newView(os.Stdout, insights, cfg.Interval)
	if once {
		orch.RefreshNow(ctx)
		return v.print(orch.Snapshot())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(ctx) })
	if cfg.Metrics.Listen != "" {
		srv := server.New(orch, insights, recorder.Handler(), applog.Component(logger, "server"))
		g.Go(func() error { return srv.ListenAndServe(ctx, cfg.Metrics.Listen) })
	}
	g.Go(func() error { return v.follow(ctx, orch, logger, cfg.Log.File != "") })
	return g.Wait()
}
