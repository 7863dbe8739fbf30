package cli

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/matzehuels/markstack/pkg/observability"
)

// batchProgress reports pipeline hook events on a spinner.
type batchProgress struct {
	observability.NoopPipelineHooks

	spinner *Spinner
	images  atomic.Int64
	failed  atomic.Int64
	batches atomic.Int64
	total   int
}

// newBatchProgress creates hooks for a run over total folders. Use total 0
// for a single-folder run.
func newBatchProgress(s *Spinner, total int) *batchProgress {
	return &batchProgress{spinner: s, total: total}
}

func (p *batchProgress) OnImageComplete(_ context.Context, _ string, _ time.Duration, err error) {
	if err != nil {
		p.failed.Add(1)
	}
	p.images.Add(1)
	p.spinner.SetMessage(p.message())
}

func (p *batchProgress) OnBatchComplete(context.Context, string, int, int, time.Duration) {
	p.batches.Add(1)
	p.spinner.SetMessage(p.message())
}

func (p *batchProgress) message() string {
	msg := fmt.Sprintf("Marked %d images", p.images.Load())
	if n := p.failed.Load(); n > 0 {
		msg += fmt.Sprintf(", %d failed", n)
	}
	if p.total > 0 {
		msg += fmt.Sprintf(" · %d/%d folders", p.batches.Load(), p.total)
	}
	return msg
}

// trackProgress installs p as the pipeline hooks until the returned func is
// called.
func trackProgress(p *batchProgress) func() {
	observability.SetPipelineHooks(p)
	return func() { observability.SetPipelineHooks(observability.NoopPipelineHooks{}) }
}
