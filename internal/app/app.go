package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"callsight/internal/config"
	"callsight/internal/history"
	"callsight/internal/parser"
	"callsight/internal/resolver"
	"callsight/internal/scoring"
	"callsight/internal/shared/observability"
	"callsight/internal/shared/util"
	"callsight/internal/watcher"
)

// RunResult is one complete analysis pass over the configured roots.
type RunResult struct {
	Resolutions []*resolver.FileResolution
	Scores      []scoring.FunctionScore
	Snapshot    history.Snapshot
}

type App struct {
	Config *config.Config
	Parser *parser.Parser

	store         *history.Store
	rescanLimiter *util.Limiter

	// Per-file resolutions cached for incremental watch updates.
	mu          sync.RWMutex
	resolutions map[string]*resolver.FileResolution

	updateMu sync.RWMutex
	onUpdate func(*RunResult)
}

func New(cfg *config.Config) (*App, error) {
	p := parser.NewParser(parser.NewGrammarLoader())
	p.RegisterExtractor("python", &parser.PythonExtractor{})

	a := &App{
		Config:        cfg,
		Parser:        p,
		rescanLimiter: util.NewLimiter(cfg.Watch.RescansPerSec, 1),
		resolutions:   make(map[string]*resolver.FileResolution),
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.store = store
	}

	return a, nil
}

func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func (a *App) SetUpdateHandler(handler func(*RunResult)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

// RunOnce scans all configured roots, analyzes every Python file, and
// produces the scored result. The snapshot is persisted when a history
// store is configured.
func (a *App) RunOnce(ctx context.Context) (*RunResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.RunOnce")
	defer span.End()

	started := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("run").Observe(time.Since(started).Seconds())
	}()

	files, err := a.ScanDirectories()
	if err != nil {
		return nil, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.ProcessFile(path); err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
		}
	}

	return a.buildResult()
}

// ProcessFile parses and resolves one file, replacing any cached
// resolution for its path.
func (a *App) ProcessFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	started := time.Now()
	file, err := a.Parser.ParseFile(path, content)
	observability.ParsingDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	observability.BindingsCollected.Add(float64(len(file.Bindings)))

	res := resolver.ResolveFile(file)
	for _, call := range res.Calls {
		if call.Resolved() {
			observability.CallOutcomes.WithLabelValues("resolved", "").Inc()
		} else {
			observability.CallOutcomes.WithLabelValues("unresolved", string(call.Reason)).Inc()
		}
	}

	a.mu.Lock()
	a.resolutions[path] = res
	a.mu.Unlock()
	return nil
}

func (a *App) buildResult() (*RunResult, error) {
	a.mu.RLock()
	paths := make([]string, 0, len(a.resolutions))
	for path := range a.resolutions {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	resolutions := make([]*resolver.FileResolution, 0, len(paths))
	for _, path := range paths {
		resolutions = append(resolutions, a.resolutions[path])
	}
	a.mu.RUnlock()

	scores := scoring.Rank(resolutions)

	snap := history.Snapshot{
		FileCount:       len(resolutions),
		AvgCompleteness: scoring.AverageCompleteness(scores),
	}
	for _, res := range resolutions {
		snap.FunctionCount += len(res.Functions)
		for _, call := range res.Calls {
			snap.CallCount++
			switch call.Reason {
			case "":
				snap.ResolvedCount++
			case resolver.ReasonUnknownBinding:
				snap.UnknownBindingCount++
			case resolver.ReasonDynamicOrCrossModule:
				snap.CrossModuleCount++
			case resolver.ReasonDynamicExpression:
				snap.DynamicExpressionCount++
			}
		}
	}

	observability.FilesAnalyzed.Set(float64(snap.FileCount))

	if a.store != nil {
		saved, err := a.store.Save(snap)
		if err != nil {
			return nil, err
		}
		snap = saved
	}

	return &RunResult{Resolutions: resolutions, Scores: scores, Snapshot: snap}, nil
}

// ScanDirectories walks the configured roots and returns every Python
// file not matched by the exclude globs, sorted and de-duplicated.
func (a *App) ScanDirectories() ([]string, error) {
	excludeDirs, err := compileGlobs(a.Config.Exclude.Dirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(a.Config.Exclude.Files)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	for _, root := range a.Config.ScanPaths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(path)
			if d.IsDir() {
				if matchAny(excludeDirs, base) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(base, ".py") || matchAny(excludeFiles, base) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Watch re-analyzes changed files as they arrive, throttled so edit
// bursts cannot stampede full re-scoring passes.
func (a *App) Watch(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.handleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}

	if err := w.Watch(a.Config.ScanPaths); err != nil {
		_ = w.Close()
		return err
	}

	<-ctx.Done()
	return w.Close()
}

func (a *App) handleChanges(ctx context.Context, paths []string) {
	observability.WatcherEventsTotal.Inc()

	if err := a.rescanLimiter.Wait(ctx, 1); err != nil {
		return
	}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.mu.Lock()
			delete(a.resolutions, path)
			a.mu.Unlock()
			continue
		}
		if err := a.ProcessFile(path); err != nil {
			slog.Warn("re-analysis failed", "path", path, "error", err)
		}
	}

	result, err := a.buildResult()
	if err != nil {
		slog.Error("failed to rebuild result", "error", err)
		return
	}

	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(result)
	}
}

// RecentSnapshots exposes run history for the CLI trend view.
func (a *App) RecentSnapshots(limit int) ([]history.Snapshot, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.Recent(limit)
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, value string) bool {
	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}
	return false
}
