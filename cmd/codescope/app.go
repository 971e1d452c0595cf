package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codescope/internal/analysis"
	"codescope/internal/config"
	"codescope/internal/graph"
	"codescope/internal/history"
	"codescope/internal/metrics"
	"codescope/internal/observability"
	"codescope/internal/parser"
	"codescope/internal/patterns"
	"codescope/internal/report"
	"codescope/internal/scanner"
	"codescope/internal/util"
	"codescope/internal/watch"
)

// App wires the pipeline together: scan, parallel per-file analysis,
// then a single-threaded aggregation pass over the merged results.
type App struct {
	Config     *config.Config
	Parser     *parser.Parser
	Scanner    *scanner.Scanner
	Graph      *graph.Graph
	Engine     *metrics.Engine
	Rules      *patterns.Registry
	Aggregator *analysis.Aggregator
	History    *history.Store

	watcher    *watch.Watcher
	obsServer  *observability.Server
	teaProgram *tea.Program

	mu      sync.Mutex
	results map[string]*analysis.FileResult
	issues  map[string]analysis.Issue
}

func NewApp(cfg *config.Config) (*App, error) {
	registry, err := parser.BuildLanguageRegistry(cfg.Languages)
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoader(registry)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader)
	p.RegisterDefaultExtractors()

	s, err := scanner.New(cfg.Exclude.Dirs, cfg.Exclude.Files, p.IsSupportedPath)
	if err != nil {
		return nil, err
	}
	s.IncludeTests(cfg.IncludeTests, p.IsTestFile)

	app := &App{
		Config:     cfg,
		Parser:     p,
		Scanner:    s,
		Graph:      graph.New(),
		Engine:     metrics.NewEngine(cfg.Thresholds),
		Rules:      patterns.NewRegistry(cfg),
		Aggregator: analysis.NewAggregator(cfg.Thresholds),
		results:    make(map[string]*analysis.FileResult),
		issues:     make(map[string]analysis.Issue),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		app.History = store
	}

	return app, nil
}

func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.History != nil {
		_ = a.History.Close()
	}
	if a.obsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.obsServer.Stop(ctx)
	}
}

// Run performs one full analysis pass. A failed root is terminal; a
// failed file becomes an issue and the run continues.
func (a *App) Run(ctx context.Context) (*analysis.ProjectSummary, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()

	scanStart := time.Now()
	files, err := a.Scanner.Scan(a.Config.Roots)
	if err != nil {
		return nil, err
	}
	observability.ScanDuration.Observe(time.Since(scanStart).Seconds())

	a.mu.Lock()
	a.results = make(map[string]*analysis.FileResult, len(files))
	a.issues = make(map[string]analysis.Issue)
	a.Graph = graph.New()
	a.mu.Unlock()

	a.analyzeFiles(ctx, files)
	return a.aggregate(), nil
}

func (a *App) analyzeFiles(ctx context.Context, paths []string) {
	jobs := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < a.Config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				a.processFile(path)
			}
		}()
	}

	// Cancellation stops scheduling; in-flight files finish. The
	// non-blocking check first keeps a ready worker from racing the
	// done channel inside the select.
scheduling:
	for _, path := range paths {
		select {
		case <-ctx.Done():
			break scheduling
		default:
		}
		select {
		case <-ctx.Done():
			break scheduling
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()
}

func (a *App) processFile(path string) {
	content, err := scanner.ReadFile(path)
	if err != nil {
		a.recordIssue(path, "read", err)
		return
	}

	parseStart := time.Now()
	file, err := a.Parser.ParseFile(path, content)
	if err != nil {
		observability.ParseFailures.Inc()
		a.recordIssue(path, "parse", err)
		return
	}
	observability.ParsingDuration.WithLabelValues(file.Language).Observe(time.Since(parseStart).Seconds())

	quality := a.Engine.AnalyzeFile(file)
	findings := a.Rules.Detect(file)
	for _, f := range findings {
		observability.FindingsTotal.WithLabelValues(f.Rule).Inc()
	}

	a.mu.Lock()
	a.results[path] = &analysis.FileResult{File: file, Quality: quality, Findings: findings}
	delete(a.issues, path)
	a.Graph.AddFile(file)
	a.mu.Unlock()
}

func (a *App) recordIssue(path, stage string, err error) {
	slog.Warn("skipping file", "path", path, "stage", stage, "error", err)
	a.mu.Lock()
	a.issues[path] = analysis.Issue{Path: path, Stage: stage, Reason: err.Error()}
	delete(a.results, path)
	a.mu.Unlock()
}

func (a *App) aggregate() *analysis.ProjectSummary {
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	}()

	a.mu.Lock()
	results := make([]*analysis.FileResult, 0, len(a.results))
	for _, path := range util.SortedStringKeys(a.results) {
		results = append(results, a.results[path])
	}
	issues := make([]analysis.Issue, 0, len(a.issues))
	for _, path := range util.SortedStringKeys(a.issues) {
		issues = append(issues, a.issues[path])
	}
	g := a.Graph
	a.mu.Unlock()

	g.Resolve()
	summary := a.Aggregator.Aggregate(a.Config.Roots, results, g, issues)

	observability.FilesAnalyzed.Set(float64(summary.Totals.Files))
	observability.GraphNodes.Set(float64(g.FileCount()))
	observability.GraphEdges.Set(float64(len(summary.Dependencies)))
	observability.CyclesDetected.Set(float64(len(summary.Cycles)))
	if a.obsServer != nil {
		a.obsServer.MarkRun()
	}
	return summary
}

// WriteOutputs emits the configured artifacts for one summary.
func (a *App) WriteOutputs(summary *analysis.ProjectSummary) error {
	if path := a.Config.Output.JSON; path != "" {
		if err := report.WriteJSONFile(path, summary); err != nil {
			return err
		}
	}
	if path := a.Config.Output.DOT; path != "" {
		if err := os.WriteFile(path, []byte(report.WriteDOT(summary)), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// SaveHistory persists the run when history is enabled. Failures are
// logged, never fatal.
func (a *App) SaveHistory(summary *analysis.ProjectSummary) {
	if a.History == nil {
		return
	}
	run := history.RunFromSummary(summary)
	if len(a.Config.Roots) > 0 {
		run.CommitHash, run.CommitTimestamp = history.ResolveGitMetadata(a.Config.Roots[0])
	}
	if err := a.History.SaveRun(run); err != nil {
		slog.Warn("failed to save history run", "error", err)
	}
}

func (a *App) StartObservability(ctx context.Context) {
	addr := a.Config.Observability.Address
	if addr == "" {
		return
	}
	a.obsServer = observability.NewServer(addr)
	if err := a.obsServer.Start(ctx); err != nil {
		slog.Error("failed to start observability server", "error", err)
	}
}

func (a *App) StartWatcher() error {
	w, err := watch.NewWatcher(watch.Options{
		Debounce:      a.Config.Watch.Debounce,
		ExcludeDirs:   a.Config.Exclude.Dirs,
		ExcludeFiles:  a.Config.Exclude.Files,
		Supported:     a.Parser.IsSupportedPath,
		RescansPerSec: a.Config.Watch.RescansPerSec,
		OnChange:      a.HandleChanges,
	})
	if err != nil {
		return err
	}
	if err := w.Watch(a.Config.Roots); err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// HandleChanges re-analyzes a debounced batch of changed files and
// republishes the summary. Deleted files leave the graph; everything
// downstream (call counts, cycles, hotspots) is recomputed by the
// aggregation pass.
func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			a.mu.Lock()
			delete(a.results, path)
			delete(a.issues, path)
			a.Graph.RemoveFile(path)
			a.mu.Unlock()
			continue
		}
		a.processFile(path)
	}

	summary := a.aggregate()
	if err := a.WriteOutputs(summary); err != nil {
		slog.Error("failed to write outputs", "error", err)
	}
	a.SaveHistory(summary)
	a.publish(summary)

	slog.Info("rescan complete", "duration", time.Since(start), "files", summary.Totals.Files)
}

func (a *App) publish(summary *analysis.ProjectSummary) {
	if a.teaProgram != nil {
		a.teaProgram.Send(updateMsg{summary: summary})
		return
	}
	if a.Config.Output.Summary {
		_ = report.WriteText(os.Stdout, summary)
	}
}

// RunUI blocks inside the terminal UI until the user quits.
func (a *App) RunUI(initial *analysis.ProjectSummary) error {
	m := initialModel()
	a.teaProgram = tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		// deliver the first summary once the program is receiving
		time.Sleep(100 * time.Millisecond)
		a.teaProgram.Send(updateMsg{summary: initial})
	}()

	_, err := a.teaProgram.Run()
	return err
}
