// Package pipeline runs the watermark engine over folders of images.
//
// This package implements the decode → mark → encode loop shared by the CLI
// and the HTTP server. By centralizing it, both entry points report the same
// per-image records and apply the same error policy: a failing image is
// recorded and the batch continues.
//
// # Architecture
//
// Each image moves through the states of [watermark.State]:
//
//  1. Load: decode with EXIF orientation
//  2. Number: extract the numeric mark from the file name
//  3. Mark: composite the primary and numeric marks
//  4. Save: encode atomically next to the mirrored input path
//
// Images are processed by a bounded pool of goroutines.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	engine, err := runner.PresetEngine(ctx, preset)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := runner.Run(ctx, engine, pipeline.Options{
//	    Input:  "photos",
//	    Output: "marked",
//	})
//
// Process every subfolder with one preset:
//
//	reports, err := runner.RunFolders(ctx, engine, pipeline.FolderOptions{
//	    BaseInput:  "shoots",
//	    BaseOutput: "out",
//	    Preset:     "final_v2",
//	})
package pipeline

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/matzehuels/markstack/pkg/core/watermark"
	"github.com/matzehuels/markstack/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultParallel is the number of folders processed at once by RunFolders.
	DefaultParallel = 2

	// MaxWorkers caps the per-folder worker count.
	MaxWorkers = 64
)

// DefaultWorkers is the number of images processed at once by Run.
func DefaultWorkers() int {
	return max(runtime.NumCPU(), 1)
}

// =============================================================================
// Options
// =============================================================================

// Options configures a single-folder run.
type Options struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Recursive bool   `json:"recursive,omitempty"`
	Workers   int    `json:"workers,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidatePath(o.Input); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "input folder")
	}
	if err := errors.ValidatePath(o.Output); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "output folder")
	}
	if samePath(o.Input, o.Output) {
		return errors.New(errors.ErrCodeInvalidPath, "output folder must differ from input folder")
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}
	o.Workers = min(o.Workers, MaxWorkers)
	o.validated = true
	return nil
}

// FolderOptions configures a multi-folder run: every subfolder of
// BaseInput is written to BaseOutput/<subfolder>_<Preset>.
type FolderOptions struct {
	BaseInput  string `json:"base_input"`
	BaseOutput string `json:"base_output"`
	Preset     string `json:"preset"`
	Parallel   int    `json:"parallel,omitempty"`
	Workers    int    `json:"workers,omitempty"`
	Recursive  bool   `json:"recursive,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *FolderOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidatePath(o.BaseInput); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "base input folder")
	}
	if err := errors.ValidatePath(o.BaseOutput); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "base output folder")
	}
	if err := errors.ValidatePresetName(o.Preset); err != nil {
		return err
	}
	if o.Parallel <= 0 {
		o.Parallel = DefaultParallel
	}
	o.validated = true
	return nil
}

// FolderOutput returns the output folder for subfolder sub.
func (o *FolderOptions) FolderOutput(sub string) string {
	return filepath.Join(o.BaseOutput, sub+"_"+o.Preset)
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

// =============================================================================
// Results
// =============================================================================

// Record is the outcome for one image.
type Record struct {
	Input    string          `json:"input"`
	Output   string          `json:"output"`
	Number   string          `json:"number,omitempty"`
	State    watermark.State `json:"state"`
	Code     errors.Code     `json:"code,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration time.Duration   `json:"duration"`

	// Err is the failure cause when State is StateFailed.
	Err error `json:"-" bson:"-"`
}

// OK reports whether the image was written (or would be, in a dry run).
func (r Record) OK() bool {
	return r.State != watermark.StateFailed
}

// StatePlanned marks records of a dry run.
const StatePlanned watermark.State = "planned"

// Report summarizes a single-folder run.
type Report struct {
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Records   []Record      `json:"records"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// FolderReport is the outcome of one subfolder in RunFolders. Error is set
// when the folder could not be run at all.
type FolderReport struct {
	Folder string  `json:"folder"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func (r *Report) tally() {
	r.Succeeded, r.Failed = 0, 0
	for _, rec := range r.Records {
		if rec.State == watermark.StateSaved {
			r.Succeeded++
		} else if rec.State == watermark.StateFailed {
			r.Failed++
		}
	}
}
