package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/crimeviz/pkg/cache"
	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/observability"
)

// Runner executes the pipeline against a cache. It keeps no per-run state,
// so one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses [cache.DefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()
	result := &Result{Kind: opts.Kind}

	var (
		layout any
		err    error
	)
	switch opts.Kind {
	case KindPie:
		var counts crime.Counts
		loadStart := time.Now()
		hooks.OnLoadStart(ctx, opts.Dataset)
		counts, result.Name, err = LoadCounts(opts)
		result.Stats.LoadTime = time.Since(loadStart)
		hooks.OnLoadComplete(ctx, result.Name, len(counts), result.Stats.LoadTime, err)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		result.Stats.Items = len(counts)

		layoutStart := time.Now()
		l, hit, err := r.PieLayoutWithCacheInfo(ctx, counts, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Pie, layout = &l, l
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.CacheInfo.LayoutHit = hit
		r.Logger.Info("computed pie layout",
			"dataset", result.Name,
			"slices", len(l.Slices),
			"labels", len(l.VisibleLabels()),
			"duration", result.Stats.LayoutTime)

	case KindBar:
		var records []crime.Record
		loadStart := time.Now()
		hooks.OnLoadStart(ctx, opts.RecordSource)
		records, result.Name, err = LoadRecords(ctx, opts)
		result.Stats.LoadTime = time.Since(loadStart)
		hooks.OnLoadComplete(ctx, result.Name, len(records), result.Stats.LoadTime, err)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		result.Stats.Items = len(records)
		r.Logger.Info("loaded records", "source", result.Name, "records", len(records), "duration", result.Stats.LoadTime)

		layoutStart := time.Now()
		l, hit, err := r.BarLayoutWithCacheInfo(ctx, records, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Bar, layout = &l, l
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.CacheInfo.LayoutHit = hit
		r.Logger.Info("computed bar layout",
			"periods", len(l.Groups),
			"boroughs", len(l.Legend),
			"duration", result.Stats.LayoutTime)
	}

	if result.LayoutHash, err = cache.HashJSON(layout); err != nil {
		return nil, fmt.Errorf("hash layout: %w", err)
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PieLayoutWithCacheInfo computes a pie layout, reporting whether it came
// from the cache.
func (r *Runner) PieLayoutWithCacheInfo(ctx context.Context, counts crime.Counts, opts Options) (pie.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pie.Layout{}, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, KindPie, len(counts))
	start := time.Now()
	l, hit, err := cachedLayout(ctx, r, counts, opts, func() (pie.Layout, error) {
		return pie.Compute(counts, opts.Pie)
	})
	hooks.OnLayoutComplete(ctx, KindPie, time.Since(start), err)
	return l, hit, err
}

// BarLayoutWithCacheInfo computes a bar layout, reporting whether it came
// from the cache.
func (r *Runner) BarLayoutWithCacheInfo(ctx context.Context, records []crime.Record, opts Options) (bar.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return bar.Layout{}, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, KindBar, len(records))
	start := time.Now()
	l, hit, err := cachedLayout(ctx, r, records, opts, func() (bar.Layout, error) {
		return bar.Compute(records, opts.Bar)
	})
	hooks.OnLayoutComplete(ctx, KindBar, time.Since(start), err)
	return l, hit, err
}

func cachedLayout[L any](ctx context.Context, r *Runner, data any, opts Options, compute func() (L, error)) (L, bool, error) {
	var zero L
	dataHash, err := cache.HashJSON(data)
	if err != nil {
		return zero, false, fmt.Errorf("hash input: %w", err)
	}
	key := r.Keyer.LayoutKey(dataHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if raw, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached L
			if err := json.Unmarshal(raw, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	l, err := compute()
	if err != nil {
		return zero, false, err
	}
	if raw, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, key, raw, cache.TTLLayout); err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(raw))
		}
	}
	return l, false, nil
}

// RenderWithCacheInfo renders every requested format of res's layout.
// Cached artifacts are reused; the rest render concurrently. The bool is
// true when nothing had to be rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	var renderFormat func(ctx context.Context, format string) ([]byte, error)
	switch {
	case res.Pie != nil:
		renderFormat = func(ctx context.Context, format string) ([]byte, error) {
			return RenderPie(ctx, *res.Pie, res.Name, format, opts)
		}
	case res.Bar != nil:
		renderFormat = func(ctx context.Context, format string) ([]byte, error) {
			return RenderBar(ctx, *res.Bar, format, opts)
		}
	default:
		return nil, false, fmt.Errorf("result has no layout")
	}

	hash := res.LayoutHash
	if hash == "" {
		var err error
		if hash, err = cache.HashJSON(res.layout()); err != nil {
			return nil, false, fmt.Errorf("hash layout: %w", err)
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format, res.Name))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Kind, missing)
	start := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range missing {
		g.Go(func() error {
			data, err := renderFormat(gctx, format)
			if err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	hooks.OnRenderComplete(ctx, opts.Kind, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for _, format := range missing {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format, res.Name))
		if err := r.Cache.Set(ctx, key, artifacts[format], cache.TTLArtifact); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(artifacts[format]))
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (res *Result) layout() any {
	if res.Pie != nil {
		return *res.Pie
	}
	return *res.Bar
}
