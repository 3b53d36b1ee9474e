package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
)

// Job is one trade name to extract.
type Job struct {
	ID          uuid.UUID
	Name        string
	MaxResults  int
	SubmittedAt time.Time
}

// JobResult is what a worker hands to the sink once a job is done.
type JobResult struct {
	Job      Job
	Status   constants.JobStatus
	Results  []entity.ExtractResult
	Err      error
	Duration time.Duration
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
