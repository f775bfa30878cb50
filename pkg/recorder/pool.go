// Package recorder provides an asynchronous worker pool that persists
// completed chat turns using the provided storage.Driver and announces them
// on the provided eventstream.Publisher.
//
// The pool decouples storage and publishing from the chat loop so a slow
// database or broker never delays the next question.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/binder/pkg/eventstream"
	"github.com/papercomputeco/binder/pkg/logger"
	"github.com/papercomputeco/binder/pkg/storage"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
	defaultJobTimeout        = 30 * time.Second
)

// Job is a completed chat turn waiting to be recorded.
type Job struct {
	Turn *storage.Turn

	// StartedAt and CompletedAt bound the streamed answer.
	StartedAt   time.Time
	CompletedAt time.Time

	// Fragments is the number of content fragments the answer arrived in.
	Fragments int
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting turns.
	Driver storage.Driver

	// Publisher optionally receives a chat completed event for every turn
	// that was stored.
	Publisher eventstream.Publisher

	// OrganizationID is stamped on published events.
	OrganizationID string

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// JobTimeout bounds storage and publishing of a single job.
	JobTimeout time.Duration

	Logger *slog.Logger

	// now is overridden in tests.
	now func() time.Time
}

// Pool records chat turns asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("recorder requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	if c.now == nil {
		c.now = time.Now
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full or the job carries no
// turn, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	if job.Turn == nil {
		p.logger.Warn("job not queued, missing turn")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"turn_id", job.Turn.ID,
			"conversation_id", job.Turn.ConversationID,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"turn_id", job.Turn.ID,
			"conversation_id", job.Turn.ConversationID,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Enqueue must not be called after Close.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("recorder worker stopped", "worker_id", id)
}

// processJob stores the turn and, once stored, publishes its event. Publish
// failures are logged and never undo the stored turn.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	if err := p.config.Driver.SaveTurn(ctx, job.Turn); err != nil {
		p.logger.Error("storing turn failed",
			"turn_id", job.Turn.ID,
			"conversation_id", job.Turn.ConversationID,
			"error", err,
		)
		return
	}

	p.logger.Info("turn stored",
		"turn_id", job.Turn.ID,
		"conversation_id", job.Turn.ConversationID,
	)

	if p.config.Publisher == nil {
		return
	}

	event := p.newEvent(job)
	if err := p.config.Publisher.PublishChatCompleted(ctx, event); err != nil {
		p.logger.Warn("publishing chat event failed",
			"event_id", event.EventID,
			"conversation_id", job.Turn.ConversationID,
			"error", err,
		)
	}
}

func (p *Pool) newEvent(job Job) *eventstream.ChatCompletedEvent {
	return &eventstream.ChatCompletedEvent{
		SchemaVersion:  eventstream.SchemaVersionV1,
		EventType:      eventstream.EventTypeChatCompleted,
		EventID:        uuid.NewString(),
		EmittedAt:      p.config.now().UTC(),
		OrganizationID: p.config.OrganizationID,
		Stream: eventstream.StreamMeta{
			StartedAt:   job.StartedAt,
			CompletedAt: job.CompletedAt,
			DurationMs:  job.CompletedAt.Sub(job.StartedAt).Milliseconds(),
			Fragments:   job.Fragments,
		},
		Turn: *job.Turn,
	}
}
