package datasource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// blockingItemStore records batches and can be held closed to fill the queue.
type blockingItemStore struct {
	mu      sync.Mutex
	batches [][]*CollectedItem
	err     error
	gate    chan struct{}
}

func (s *blockingItemStore) CreateBatch(ctx context.Context, items []*CollectedItem) error {
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, items)
	return nil
}

func (s *blockingItemStore) ListBySource(ctx context.Context, dataSourceID uuid.UUID, limit, offset int) ([]*CollectedItem, error) {
	return nil, nil
}

func (s *blockingItemStore) CountBySource(ctx context.Context, dataSourceID uuid.UUID) (int, error) {
	return 0, nil
}

func (s *blockingItemStore) allBatches() [][]*CollectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]*CollectedItem{}, s.batches...)
}

func TestIngester_SubmitAndDrain(t *testing.T) {
	store := &blockingItemStore{}
	ing := NewIngester(store, 8, logger.NewTestLogger())
	ing.Start()

	require.NoError(t, ing.Submit(context.Background(), uuid.Nil, []string{"a", "b"}))
	ing.Stop()

	batches := store.allBatches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	assert.Equal(t, "a", batches[0][0].Content)
	assert.Equal(t, uuid.Nil, batches[0][0].DataSourceID)
}

func TestIngester_SubmitTagsSource(t *testing.T) {
	store := &blockingItemStore{}
	ing := NewIngester(store, 8, logger.NewTestLogger())
	ing.Start()

	sourceID := uuid.New()
	require.NoError(t, ing.Submit(context.Background(), sourceID, []string{"row"}))
	ing.Stop()

	batches := store.allBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, sourceID, batches[0][0].DataSourceID)
}

func TestIngester_EmptySubmissionIsNoop(t *testing.T) {
	store := &blockingItemStore{}
	ing := NewIngester(store, 8, logger.NewTestLogger())
	ing.Start()

	require.NoError(t, ing.Submit(context.Background(), uuid.Nil, nil))
	ing.Stop()

	assert.Empty(t, store.allBatches())
}

func TestIngester_QueueFull(t *testing.T) {
	gate := make(chan struct{})
	store := &blockingItemStore{gate: gate}
	ing := NewIngester(store, 1, logger.NewTestLogger())
	ing.Start()

	// First submission may be picked up by the worker and block on the
	// gate; keep submitting until the buffered queue itself is full.
	var err error
	for i := 0; i < 5; i++ {
		err = ing.Submit(context.Background(), uuid.Nil, []string{"x"})
		if err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrIngestQueueFull)

	close(gate)
	ing.Stop()
}

func TestIngester_StoreErrorDoesNotStopWorker(t *testing.T) {
	store := &blockingItemStore{err: errors.New("db down")}
	log := logger.NewTestLogger()
	ing := NewIngester(store, 8, log)
	ing.Start()

	require.NoError(t, ing.Submit(context.Background(), uuid.Nil, []string{"a"}))

	// The worker must survive the failure and keep accepting work.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ing.Submit(context.Background(), uuid.Nil, []string{"b"}))
	ing.Stop()

	var sawError bool
	for _, entry := range log.Entries() {
		if entry.Level == "error" {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

func TestIngester_SubmitCopiesItems(t *testing.T) {
	gate := make(chan struct{})
	store := &blockingItemStore{gate: gate}
	ing := NewIngester(store, 8, logger.NewTestLogger())
	ing.Start()

	items := []string{"original"}
	require.NoError(t, ing.Submit(context.Background(), uuid.Nil, items))
	items[0] = "mutated"

	close(gate)
	ing.Stop()

	batches := store.allBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, "original", batches[0][0].Content)
}
