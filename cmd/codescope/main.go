package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"codescope/internal/config"
	"codescope/internal/observability"
	"codescope/internal/report"
)

var (
	configPath = flag.String("config", "./codescope.toml", "Path to config file")
	watchMode  = flag.Bool("watch", false, "Keep running and re-analyze on file changes")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode (implies -watch)")
	jsonOut    = flag.String("json", "", "Write the JSON summary to this path (overrides config)")
	trend      = flag.Int("trend", 0, "Print the last N recorded runs from history and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("codescope v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	if *ui {
		// In UI mode, avoid terminal logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err == nil {
			if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
				output = f
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		cfg.Roots = flag.Args()
	}
	if *jsonOut != "" {
		cfg.Output.JSON = *jsonOut
	}
	if *ui {
		*watchMode = true
	}

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() { _ = shutdownTracing(ctx) }()
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *trend > 0 {
		if err := printTrend(app, *trend); err != nil {
			slog.Error("failed to load history", "error", err)
			os.Exit(1)
		}
		return
	}

	if *watchMode {
		app.StartObservability(ctx)
	}

	summary, err := app.Run(ctx)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	if err := app.WriteOutputs(summary); err != nil {
		slog.Error("failed to write outputs", "error", err)
		os.Exit(1)
	}
	app.SaveHistory(summary)

	if !*ui && (cfg.Output.Summary || cfg.Output.JSON == "") {
		if err := report.WriteText(os.Stdout, summary); err != nil {
			slog.Error("failed to print summary", "error", err)
		}
	}

	if !*watchMode {
		if len(summary.Issues) > 0 {
			os.Exit(2)
		}
		return
	}

	if err := app.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(summary); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
		return
	}

	select {}
}

// printTrend lists the most recent n history runs, oldest first.
func printTrend(app *App, n int) error {
	if app.History == nil {
		return fmt.Errorf("history is disabled, enable [history] in the config first")
	}
	runs, err := app.History.LoadRuns(time.Time{})
	if err != nil {
		return err
	}
	if len(runs) > n {
		runs = runs[len(runs)-n:]
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}
	for _, r := range runs {
		commit := r.CommitHash
		if commit == "" {
			commit = "-"
		}
		fmt.Printf("%s  %-12s  files=%-4d cycles=%-3d hotspots=%-3d issues=%-3d maint=%.1f\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"), commit,
			r.Files, r.Cycles, r.Hotspots, r.Issues, r.AvgMaintainability)
	}
	return nil
}

// loadConfig falls back to defaults when the default config file is
// absent; an explicitly named but broken config stays fatal.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == "./codescope.toml" {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), nil
		}
	}
	return nil, err
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "codescope", "codescope.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "codescope", "codescope.log")
	}

	return "codescope.log"
}
