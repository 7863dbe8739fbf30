package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/markstack/pkg/cache"
	"github.com/matzehuels/markstack/pkg/core/watermark"
	"github.com/matzehuels/markstack/pkg/errors"
	"github.com/matzehuels/markstack/pkg/fonts"
	"github.com/matzehuels/markstack/pkg/httputil"
	mio "github.com/matzehuels/markstack/pkg/io"
	"github.com/matzehuels/markstack/pkg/observability"
	"github.com/matzehuels/markstack/pkg/presets"
)

// Runner executes batches. The cache holds downloaded fonts.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// =============================================================================
// Engines
// =============================================================================

// Engine builds an engine for cfg. The font is resolved only when a text or
// numeric mark needs one.
func (r *Runner) Engine(ctx context.Context, cfg watermark.Config, src fonts.Source) (*watermark.Engine, error) {
	var faces watermark.FaceSource
	if cfg.Text != nil || cfg.Number.Enabled {
		client := httputil.NewClient(cache.Instrument(r.Cache, "font"), nil)
		faces = fonts.Resolve(ctx, r.Logger, fonts.Chain(src, client, r.Keyer)...)
	}
	return watermark.NewEngine(cfg, faces)
}

// PresetEngine builds an engine from a preset, loading its graphic from disk.
func (r *Runner) PresetEngine(ctx context.Context, p presets.Preset) (*watermark.Engine, error) {
	cfg, err := p.Config(LoadGraphic)
	if err != nil {
		return nil, err
	}
	return r.Engine(ctx, cfg, p.Font())
}

// =============================================================================
// Batches
// =============================================================================

// Run processes every image in opts.Input. Per-image failures are recorded
// in the report and never abort the batch. When ctx is cancelled no new
// images are started; the partial report is returned with ctx.Err().
func (r *Runner) Run(ctx context.Context, engine *watermark.Engine, opts Options) (*Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	files, err := mio.Discover(opts.Input, opts.Recursive)
	if err != nil {
		return nil, err
	}
	report := &Report{Input: opts.Input, Output: opts.Output, DryRun: opts.DryRun}
	if len(files) == 0 {
		r.Logger.Warn("no images found", "input", opts.Input)
		return report, nil
	}

	if !opts.DryRun {
		if err := os.MkdirAll(opts.Output, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output folder")
		}
	}

	r.Logger.Info("processing images", "input", opts.Input, "count", len(files), "workers", opts.Workers)
	hooks := observability.Pipeline()

	records := make([]Record, len(files))
	scheduled := 0
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			records[i] = r.processOne(ctx, engine, opts, file, hooks)
			return nil
		})
	}
	_ = g.Wait()

	report.Records = records[:scheduled]
	report.tally()
	report.Duration = time.Since(start)
	hooks.OnBatchComplete(ctx, opts.Input, report.Succeeded, report.Failed, report.Duration)

	if err := ctx.Err(); err != nil {
		r.Logger.Warn("batch cancelled", "input", opts.Input, "done", scheduled, "total", len(files))
		return report, err
	}
	r.Logger.Info("batch complete", "input", opts.Input,
		"succeeded", report.Succeeded, "failed", report.Failed, "duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

func (r *Runner) processOne(ctx context.Context, engine *watermark.Engine, opts Options, file string, hooks observability.PipelineHooks) Record {
	out, err := mio.OutputPath(opts.Input, opts.Output, file)
	if err != nil {
		return Record{Input: file, State: watermark.StateFailed, Err: err, Code: errors.GetCode(err), Reason: errors.UserMessage(err)}
	}
	if opts.DryRun {
		r.Logger.Info("planned", "input", file, "output", out)
		return Record{Input: file, Output: out, State: StatePlanned}
	}

	hooks.OnImageStart(ctx, file)
	rec := ProcessFile(engine, file, out)
	hooks.OnImageComplete(ctx, file, rec.Duration, rec.Err)

	switch {
	case rec.State == watermark.StateFailed:
		r.Logger.Error("image failed", "path", file, "code", rec.Code, "reason", rec.Reason)
	case len(rec.Warnings) > 0:
		for _, w := range rec.Warnings {
			r.Logger.Warn("image warning", "path", file, "reason", w)
		}
	default:
		r.Logger.Debug("image saved", "path", out, "number", rec.Number, "duration", rec.Duration)
	}
	return rec
}

// RunFolders runs every subfolder of opts.BaseInput through engine, writing
// to opts.FolderOutput(sub). Up to opts.Parallel folders run at once. A
// folder that fails to start is reported and does not stop the others.
func (r *Runner) RunFolders(ctx context.Context, engine *watermark.Engine, opts FolderOptions) ([]FolderReport, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	subs, err := mio.Subdirs(opts.BaseInput)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no subfolders in %s", opts.BaseInput)
	}
	r.Logger.Info("processing folders", "base", opts.BaseInput, "folders", len(subs), "preset", opts.Preset)

	reports := make([]FolderReport, len(subs))
	var g errgroup.Group
	g.SetLimit(opts.Parallel)
	for i, sub := range subs {
		reports[i].Folder = sub
		if ctx.Err() != nil {
			reports[i].Error = ctx.Err().Error()
			continue
		}
		g.Go(func() error {
			rep, err := r.Run(ctx, engine, Options{
				Input:     filepath.Join(opts.BaseInput, sub),
				Output:    opts.FolderOutput(sub),
				Recursive: opts.Recursive,
				Workers:   opts.Workers,
				DryRun:    opts.DryRun,
			})
			reports[i].Report = rep
			if err != nil {
				reports[i].Error = errors.UserMessage(err)
				r.Logger.Error("folder failed", "folder", sub, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return reports, ctx.Err()
}
