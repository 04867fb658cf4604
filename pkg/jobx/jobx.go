package jobx

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/logx"
)

// HandlerFunc processes a job. A non-nil error marks the attempt as failed.
type HandlerFunc func(ctx context.Context, job *JobInfo) error

// Queue is the storage backend of the worker.
type Queue interface {
	Enqueue(ctx context.Context, job Job) (string, error)
	GetJob(ctx context.Context, jobID string) (*JobInfo, error)
	// Dequeue blocks up to timeout and returns nil, nil when nothing arrived.
	Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*JobInfo, error)
	Complete(ctx context.Context, jobID string) error
	// Fail records errMsg. When the job may run again it is pushed back on its queue.
	Fail(ctx context.Context, jobID string, errMsg string) (requeued bool, err error)
}

// WorkerOptions configures the job processing client.
type WorkerOptions struct {
	Queues          []string
	Concurrency     int
	PollInterval    time.Duration
	ShutdownTimeout time.Duration
	DequeueTimeout  time.Duration
}

// DefaultWorkerOptions returns options suited to a small mail queue.
func DefaultWorkerOptions() WorkerOptions {
	return WorkerOptions{
		Queues:          []string{"default"},
		Concurrency:     2,
		PollInterval:    time.Second,
		ShutdownTimeout: 15 * time.Second,
		DequeueTimeout:  5 * time.Second,
	}
}

// Client enqueues jobs and runs the handlers registered for them.
type Client struct {
	queue    Queue
	opts     WorkerOptions
	handlers map[string]HandlerFunc
	mu       sync.RWMutex
	running  bool
}

func NewClient(queue Queue, opts WorkerOptions) *Client {
	def := DefaultWorkerOptions()
	if len(opts.Queues) == 0 {
		opts.Queues = def.Queues
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = def.ShutdownTimeout
	}
	if opts.DequeueTimeout <= 0 {
		opts.DequeueTimeout = def.DequeueTimeout
	}
	return &Client{
		queue:    queue,
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds a handler for a given job type.
func (c *Client) Register(jobType string, handler HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[jobType] = handler
}

// Enqueue stores job for immediate processing.
func (c *Client) Enqueue(ctx context.Context, job Job) (string, error) {
	if job.Type == "" {
		return "", ErrRegistry.New(CodeInvalidJob).WithDetail("reason", "empty type")
	}
	if job.Queue == "" {
		job.Queue = c.opts.Queues[0]
	}
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = 1
	}
	return c.queue.Enqueue(ctx, job)
}

// EnqueueJSON marshals payload and enqueues it.
func (c *Client) EnqueueJSON(ctx context.Context, jobType, queue string, payload any, maxAttempts int) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeInvalidJob, err)
	}
	return c.Enqueue(ctx, Job{Type: jobType, Queue: queue, Payload: raw, MaxAttempts: maxAttempts})
}

func (c *Client) GetJob(ctx context.Context, jobID string) (*JobInfo, error) {
	return c.queue.GetJob(ctx, jobID)
}

// Start runs the workers until ctx is cancelled.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrRegistry.New(CodeAlreadyRunning)
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	logx.Infof("jobx: starting %d workers on queues %v", c.opts.Concurrency, c.opts.Queues)

	var wg sync.WaitGroup
	for i := range c.opts.Concurrency {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.workerLoop(ctx, id)
		}(i)
	}

	<-ctx.Done()
	logx.Info("jobx: shutting down workers...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("jobx: all workers stopped")
	case <-time.After(c.opts.ShutdownTimeout):
		logx.Warn("jobx: shutdown timed out, some jobs may not have completed")
	}
	return nil
}

func (c *Client) workerLoop(ctx context.Context, id int) {
	for ctx.Err() == nil {
		if _, err := c.ProcessNext(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.WithError(err).Warnf("jobx: worker %d dequeue error", id)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.opts.PollInterval):
			}
		}
	}
}

// ProcessNext dequeues and runs at most one job. It reports whether a job was handled.
func (c *Client) ProcessNext(ctx context.Context) (bool, error) {
	job, err := c.queue.Dequeue(ctx, c.opts.Queues, c.opts.DequeueTimeout)
	if err != nil || job == nil {
		return false, err
	}
	c.processJob(ctx, job)
	return true, nil
}

func (c *Client) processJob(ctx context.Context, job *JobInfo) {
	c.mu.RLock()
	handler, ok := c.handlers[job.Type]
	c.mu.RUnlock()

	entry := logx.WithFields(logx.Fields{"job_id": job.ID, "job_type": job.Type, "attempt": job.Attempts})

	if !ok {
		entry.Warn("jobx: no handler registered")
		if _, err := c.queue.Fail(ctx, job.ID, "no handler registered for job type"); err != nil {
			entry.WithError(err).Error("jobx: failed to mark job as failed")
		}
		return
	}

	if err := handler(ctx, job); err != nil {
		requeued, failErr := c.queue.Fail(ctx, job.ID, err.Error())
		if failErr != nil {
			entry.WithError(failErr).Error("jobx: failed to mark job as failed")
			return
		}
		entry.WithError(err).WithField("requeued", requeued).Warn("jobx: job failed")
		return
	}

	if err := c.queue.Complete(ctx, job.ID); err != nil {
		entry.WithError(err).Error("jobx: failed to complete job")
	}
}
