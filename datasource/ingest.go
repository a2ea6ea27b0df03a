package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/agent"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// ErrIngestQueueFull is returned when a submission arrives faster than
// the background worker can drain the queue.
var ErrIngestQueueFull = errors.New("ingest queue full")

const (
	defaultIngestBuffer = 64
	persistTimeout      = 10 * time.Second
)

type ingestBatch struct {
	sourceID uuid.UUID
	items    []string
}

// Ingester is the hand-off point between the agent's collect_data tool
// and the collected item store. Submissions are queued and persisted by a
// background worker so the control loop never waits on the database.
type Ingester struct {
	store  ItemStore
	queue  chan ingestBatch
	logger logger.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewIngester creates an ingester. buffer <= 0 selects the default queue
// size. Call Start before submitting and Stop to drain on shutdown.
func NewIngester(store ItemStore, buffer int, log logger.Logger) *Ingester {
	if buffer <= 0 {
		buffer = defaultIngestBuffer
	}
	return &Ingester{
		store:  store,
		queue:  make(chan ingestBatch, buffer),
		logger: log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the background persistence worker.
func (i *Ingester) Start() {
	go func() {
		defer close(i.doneCh)
		for {
			select {
			case batch := <-i.queue:
				i.persist(batch)
			case <-i.stopCh:
				// Drain whatever is still queued before exiting.
				for {
					select {
					case batch := <-i.queue:
						i.persist(batch)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop shuts the worker down after draining the queue.
func (i *Ingester) Stop() {
	close(i.stopCh)
	<-i.doneCh
}

// Submit queues items for the given data source; uuid.Nil stores them
// unattributed.
func (i *Ingester) Submit(ctx context.Context, sourceID uuid.UUID, items []string) error {
	if len(items) == 0 {
		return nil
	}

	copied := make([]string, len(items))
	copy(copied, items)

	select {
	case i.queue <- ingestBatch{sourceID: sourceID, items: copied}:
		return nil
	default:
		i.logger.Warn(ctx, "ingest queue full, submission rejected", map[string]interface{}{
			"data_source_id": sourceID,
			"count":          len(items),
		})
		return ErrIngestQueueFull
	}
}

// persist writes one batch with its own timeout; the submitting request
// context is long gone by the time the worker gets here.
func (i *Ingester) persist(batch ingestBatch) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	items := make([]*CollectedItem, 0, len(batch.items))
	for _, content := range batch.items {
		items = append(items, &CollectedItem{
			DataSourceID: batch.sourceID,
			Content:      content,
		})
	}

	if err := i.store.CreateBatch(ctx, items); err != nil {
		i.logger.Error(ctx, "failed to persist ingest batch", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": batch.sourceID,
			"count":          len(items),
		})
	}
}

// Interface check: the ingester backs the agent's collect_data tool.
var _ agent.DataSink = (*Ingester)(nil)
