package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"callsight/internal/app"
	"callsight/internal/config"
	"callsight/internal/output"
	"callsight/internal/shared/observability"
)

var (
	configPath  = flag.String("config", "./callsight.toml", "Path to config file")
	once        = flag.Bool("once", false, "Run single analysis and exit")
	watch       = flag.Bool("watch", false, "Re-analyze files as they change")
	callsTSV    = flag.String("calls-tsv", "", "Write per-call resolutions to this TSV file")
	prioTSV     = flag.String("priorities-tsv", "", "Write the priority table to this TSV file")
	historyRows = flag.Int("history", 0, "Print the N most recent run snapshots and exit")
	maxRows     = flag.Int("top", 20, "Number of priority rows in the console report")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	version     = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("callsight v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) && *configPath == "./callsight.toml" {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if args := flag.Args(); len(args) > 0 {
		cfg.ScanPaths = args
	}

	if err := run(cfg); err != nil {
		slog.Error("callsight failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Flags win over config for output destinations.
	if *callsTSV == "" {
		*callsTSV = cfg.Output.CallsTSV
	}
	if *prioTSV == "" {
		*prioTSV = cfg.Output.PrioritiesTSV
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	if cfg.Telemetry.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Telemetry.MetricsAddr)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if *historyRows > 0 {
		return printHistory(a, *historyRows)
	}

	result, err := a.RunOnce(ctx)
	if err != nil {
		return err
	}
	if err := emit(result); err != nil {
		return err
	}

	if *once || !*watch {
		return nil
	}

	a.SetUpdateHandler(func(result *app.RunResult) {
		if err := emit(result); err != nil {
			slog.Error("failed to emit update", "error", err)
		}
	})

	slog.Info("watching for changes", "paths", cfg.ScanPaths)
	return a.Watch(ctx)
}

func emit(result *app.RunResult) error {
	report := output.NewConsoleReport(*maxRows)
	fmt.Println(report.Render(result.Resolutions, result.Scores))

	tsv := output.NewTSVGenerator()
	if *callsTSV != "" {
		content, err := tsv.GenerateCalls(result.Resolutions)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*callsTSV, []byte(content), 0644); err != nil {
			return err
		}
	}
	if *prioTSV != "" {
		content, err := tsv.GeneratePriorities(result.Scores)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*prioTSV, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func printHistory(a *app.App, limit int) error {
	snapshots, err := a.RecentSnapshots(limit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("no run history")
		return nil
	}
	fmt.Println("Run\tTime\tFiles\tCalls\tResolved\tAvgCompleteness")
	for _, s := range snapshots {
		fmt.Printf("%s\t%s\t%d\t%d\t%d\t%.2f\n",
			s.RunID, s.Timestamp.Format("2006-01-02 15:04:05"),
			s.FileCount, s.CallCount, s.ResolvedCount, s.AvgCompleteness)
	}
	return nil
}
