package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	jobQueue  = "webhook_jobs"
	deadQueue = "webhook_dead"

	popTimeout = 5 * time.Second
)

// Job is one pending webhook delivery. ProcessAt is zero for the first
// attempt; retries carry the earliest time the job may run again.
type Job struct {
	ID        string                 `json:"id"`
	URL       string                 `json:"url"`
	Payload   map[string]interface{} `json:"payload"`
	Attempts  int                    `json:"attempts"`
	MaxTries  int                    `json:"max_tries"`
	ProcessAt time.Time              `json:"process_at"`
	CreatedAt time.Time              `json:"created_at"`
}

// Dispatcher delivers enrichment notifications to the external workflow
// engine without ever blocking or failing the request that produced them.
// Jobs go through a redis list drained by a worker pool; when redis is
// not configured, delivery falls back to a detached goroutine.
type Dispatcher struct {
	client      *redis.Client
	httpClient  *http.Client
	taskURL     string
	appBaseURL  string
	maxTries    int
	backoffUnit time.Duration
	log         *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type DispatcherConfig struct {
	RedisClient *redis.Client
	TaskURL     string
	AppBaseURL  string
	Timeout     time.Duration
	MaxTries    int
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	maxTries := cfg.MaxTries
	if maxTries == 0 {
		maxTries = 3
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		client:      cfg.RedisClient,
		httpClient:  &http.Client{Timeout: timeout},
		taskURL:     cfg.TaskURL,
		appBaseURL:  cfg.AppBaseURL,
		maxTries:    maxTries,
		backoffUnit: time.Second,
		log:         logrus.WithField("component", "webhook"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// NotifyTaskCreated queues the enrichment notification for a freshly
// created task. Errors are logged and swallowed: the outcome of the
// notification must never reach the originating request.
func (d *Dispatcher) NotifyTaskCreated(task *models.Task, identifier string) {
	if d.taskURL == "" {
		d.log.Debug("task webhook URL not configured, skipping notification")
		return
	}

	job := &Job{
		ID:  task.ID.String(),
		URL: d.taskURL,
		Payload: map[string]interface{}{
			"task_id":      task.ID.String(),
			"identifier":   identifier,
			"request_raw":  task.RequestRaw,
			"source":       task.Source,
			"app_base_url": d.appBaseURL,
		},
		MaxTries:  d.maxTries,
		CreatedAt: time.Now(),
	}

	if d.client == nil {
		d.deliverDetached(job)
		return
	}

	if err := d.enqueue(jobQueue, job); err != nil {
		d.log.WithError(err).Warn("failed to enqueue webhook job, delivering directly")
		d.deliverDetached(job)
	}
}

// Start launches the worker pool draining the job queue. A no-op when
// redis is not configured.
func (d *Dispatcher) Start(concurrency int) {
	if d.client == nil {
		return
	}
	for i := 0; i < concurrency; i++ {
		d.wg.Add(1)
		go d.workerLoop()
	}
	d.log.WithField("concurrency", concurrency).Info("webhook dispatcher started")
}

// Stop cancels the workers and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) workerLoop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if err := d.processNext(); err != nil {
				d.log.WithError(err).Error("webhook job failed")
				time.Sleep(time.Second)
			}
		}
	}
}

func (d *Dispatcher) processNext() error {
	result, err := d.client.BLPop(d.ctx, popTimeout, jobQueue).Result()
	if err != nil {
		if err == redis.Nil || d.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to pop job: %w", err)
	}
	if len(result) < 2 {
		return fmt.Errorf("invalid job result")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}

	// Popped a retry before its backoff elapsed: put it back and give the
	// queue a moment instead of spinning on it.
	if !job.ProcessAt.IsZero() && time.Now().Before(job.ProcessAt) {
		if err := d.enqueue(jobQueue, &job); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
		return nil
	}

	if err := d.deliver(d.ctx, &job); err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			job.ProcessAt = time.Now().Add(d.retryDelay(job.Attempts))
			d.log.WithError(err).WithFields(logrus.Fields{
				"job":     job.ID,
				"attempt": job.Attempts,
			}).Warn("webhook delivery failed, retrying")
			return d.enqueue(jobQueue, &job)
		}
		d.log.WithError(err).WithField("job", job.ID).Error("webhook delivery failed permanently")
		return d.moveToDeadQueue(&job, err)
	}

	return nil
}

// retryDelay doubles per attempt: 2s, 4s, 8s with the default unit.
func (d *Dispatcher) retryDelay(attempts int) time.Duration {
	return time.Duration(1<<uint(attempts)) * d.backoffUnit
}

func (d *Dispatcher) deliver(ctx context.Context, job *Job) error {
	body, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// deliverDetached posts the job once from its own goroutine. Used when no
// queue is available; failures are logged only.
func (d *Dispatcher) deliverDetached(job *Job) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.deliver(d.ctx, job); err != nil {
			d.log.WithError(err).WithField("job", job.ID).Warn("direct webhook delivery failed")
		}
	}()
}

func (d *Dispatcher) enqueue(queue string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return d.client.RPush(ctx, queue, data).Err()
}

func (d *Dispatcher) moveToDeadQueue(job *Job, jobErr error) error {
	dead := map[string]interface{}{
		"original_job": job,
		"error":        jobErr.Error(),
		"failed_at":    time.Now(),
	}
	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("failed to marshal dead job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return d.client.RPush(ctx, deadQueue, data).Err()
}
