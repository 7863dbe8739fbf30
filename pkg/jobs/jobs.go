// Package jobs records batch runs started through the HTTP server.
//
// A [Job] is created when a batch is accepted, updated when it starts and
// finishes, and kept for later inspection. Two [Store] backends exist:
//   - [MemoryStore]: in-process storage for a single server or tests
//   - [MongoStore]: MongoDB-backed storage shared by several servers
//
// # Usage
//
//	store := jobs.NewMemoryStore()
//	job := jobs.New("final_v2", "/shoots", "/out")
//	store.Create(ctx, job)
//	job.Start()
//	store.Update(ctx, job)
//	job.Finish(reports, err)
//	store.Update(ctx, job)
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/markstack/pkg/pipeline"
)

// Sentinel errors for job operations.
var (
	// ErrNotFound is returned when a job does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrExists is returned by Create for a duplicate ID.
	ErrExists = errors.New("job already exists")
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// DefaultListLimit bounds List when the caller passes 0.
const DefaultListLimit = 50

// Job is one multi-folder batch.
type Job struct {
	ID         string                  `json:"id" bson:"_id"`
	Preset     string                  `json:"preset" bson:"preset"`
	Input      string                  `json:"input" bson:"input"`
	Output     string                  `json:"output" bson:"output"`
	DryRun     bool                    `json:"dry_run,omitempty" bson:"dry_run"`
	Status     Status                  `json:"status" bson:"status"`
	Succeeded  int                     `json:"succeeded" bson:"succeeded"`
	Failed     int                     `json:"failed" bson:"failed"`
	Folders    []pipeline.FolderReport `json:"folders,omitempty" bson:"folders"`
	Error      string                  `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt  time.Time               `json:"created_at" bson:"created_at"`
	StartedAt  time.Time               `json:"started_at,omitzero" bson:"started_at,omitempty"`
	FinishedAt time.Time               `json:"finished_at,omitzero" bson:"finished_at,omitempty"`
}

// New creates a queued job with a random ID.
func New(preset, input, output string) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Preset:    preset,
		Input:     input,
		Output:    output,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
}

// Start marks the job as running.
func (j *Job) Start() {
	j.Status = StatusRunning
	j.StartedAt = time.Now().UTC()
}

// Finish stores the folder reports and totals. The job fails when err is
// non-nil or when any image failed.
func (j *Job) Finish(folders []pipeline.FolderReport, err error) {
	j.Folders = folders
	j.Succeeded, j.Failed = 0, 0
	for _, f := range folders {
		if f.Report != nil {
			j.Succeeded += f.Report.Succeeded
			j.Failed += f.Report.Failed
		}
	}
	j.FinishedAt = time.Now().UTC()
	switch {
	case err != nil:
		j.Status = StatusFailed
		j.Error = err.Error()
	case j.Failed > 0:
		j.Status = StatusFailed
		j.Error = "some images failed"
	default:
		j.Status = StatusDone
	}
}

// Done reports whether the job has finished.
func (j *Job) Done() bool {
	return j.Status == StatusDone || j.Status == StatusFailed
}

// Store is the interface for job storage backends.
type Store interface {
	// Create stores a new job. Returns ErrExists for a duplicate ID.
	Create(ctx context.Context, job *Job) error

	// Update replaces a stored job. Returns ErrNotFound if it does not exist.
	Update(ctx context.Context, job *Job) error

	// Get retrieves a job by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*Job, error)

	// List returns up to limit jobs, newest first. A limit <= 0 uses
	// DefaultListLimit.
	List(ctx context.Context, limit int) ([]*Job, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
