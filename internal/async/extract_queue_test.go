package async

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
)

type stubExtractor struct {
	mu    sync.Mutex
	names []string
	ids   []string
}

func (s *stubExtractor) Extract(ctx context.Context, name string, n int) ([]entity.ExtractResult, error) {
	s.mu.Lock()
	s.names = append(s.names, name)
	s.ids = append(s.ids, common.RequestIDFromContext(ctx))
	s.mu.Unlock()
	if name == "missing" {
		return nil, common.NewAppError(common.KindNotFound, "no notices", common.ErrNotFound)
	}
	return make([]entity.ExtractResult, n), nil
}

func TestExtractQueueProcessesInOrder(t *testing.T) {
	ext := &stubExtractor{}
	var mu sync.Mutex
	var got []JobResult
	q := NewExtractQueue(ext, func(r JobResult) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	}, nil)

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{Name: "acme", MaxResults: 2}))
	require.NoError(t, q.Enqueue(ctx, Job{Name: "missing", MaxResults: 1}))
	require.NoError(t, q.Enqueue(ctx, Job{Name: "beta", MaxResults: 3}))
	q.Shutdown(ctx)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"acme", "missing", "beta"}, ext.names)
	assert.Len(t, got[0].Results, 2)
	assert.ErrorIs(t, got[1].Err, common.ErrNotFound)
	assert.Equal(t, constants.JobStatusFailed, got[1].Status)
	assert.Equal(t, constants.JobStatusDone, got[0].Status)
	assert.Len(t, got[2].Results, 3)
	for i, r := range got {
		assert.NotEmpty(t, r.Job.ID.String())
		assert.Equal(t, r.Job.ID.String(), ext.ids[i], "job id travels as request id")
		assert.False(t, r.Job.SubmittedAt.IsZero())
	}
}

func TestExtractQueueRejectsAfterShutdown(t *testing.T) {
	q := NewExtractQueue(&stubExtractor{}, nil, nil, WithWorkers(2), WithQueueSize(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Name: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
