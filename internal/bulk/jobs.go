package bulk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/queue"
	"github.com/noah-isme/backend-pos/internal/tenant"
)

// TaskKind is the queue topic for async bulk updates.
const TaskKind = "bulk-update"

// JobStatus is the lifecycle state of an async bulk update job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is the redis-persisted state of one async bulk update.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Spec      Spec      `json:"spec"`
	Report    *Report   `json:"report,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobStore keeps job state and final reports in redis for a bounded time.
type JobStore struct {
	R      *redis.Client
	Prefix string
	TTL    time.Duration
}

func (s *JobStore) key(id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "bulk"
	}
	return fmt.Sprintf("%s:job:%s", prefix, id)
}

func (s *JobStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

// Create registers a pending job for the spec and returns it.
func (s *JobStore) Create(ctx context.Context, spec Spec) (Job, error) {
	if s.R == nil {
		return Job{}, errors.New("bulk: redis client not configured")
	}
	now := time.Now().UTC()
	job := Job{ID: uuid.NewString(), Status: JobPending, Spec: spec, CreatedAt: now, UpdatedAt: now}
	if err := s.save(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Get loads a job by id. Unknown ids map to NOT_FOUND.
func (s *JobStore) Get(ctx context.Context, id string) (Job, error) {
	if s.R == nil {
		return Job{}, errors.New("bulk: redis client not configured")
	}
	raw, err := s.R.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Job{}, common.NotFoundError("bulk update job not found", err)
		}
		return Job{}, fmt.Errorf("get job: %w", err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

// MarkRunning transitions the job into the running state.
func (s *JobStore) MarkRunning(ctx context.Context, id string) error {
	return s.transition(ctx, id, func(job *Job) {
		job.Status = JobRunning
	})
}

// Complete stores the final report.
func (s *JobStore) Complete(ctx context.Context, id string, report Report) error {
	return s.transition(ctx, id, func(job *Job) {
		job.Status = JobCompleted
		job.Report = &report
	})
}

// Fail records a job-level failure. Per-item failures are not job failures;
// they live inside a completed job's report.
func (s *JobStore) Fail(ctx context.Context, id, msg string) error {
	return s.transition(ctx, id, func(job *Job) {
		job.Status = JobFailed
		job.Error = msg
	})
}

func (s *JobStore) transition(ctx context.Context, id string, mutate func(*Job)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(&job)
	job.UpdatedAt = time.Now().UTC()
	return s.save(ctx, job)
}

func (s *JobStore) save(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, s.key(job.ID), raw, s.ttl()).Err()
}

// taskPayload is what travels through the queue for one job.
type taskPayload struct {
	JobID  string `json:"jobId"`
	Tenant string `json:"tenant"`
	Spec   Spec   `json:"spec"`
}

// EnqueueJob creates a pending job and publishes it for the worker. The tenant
// is captured from the context so the worker runs under the same tenant.
func EnqueueJob(ctx context.Context, store *JobStore, enq queue.Enqueuer, spec Spec) (Job, error) {
	slug, ok := tenant.From(ctx)
	if !ok {
		return Job{}, common.NewAppError(common.CodeTenantRequired, "tenant could not be resolved", http.StatusUnauthorized, nil)
	}
	job, err := store.Create(ctx, spec)
	if err != nil {
		return Job{}, err
	}
	payload, err := json.Marshal(taskPayload{JobID: job.ID, Tenant: slug, Spec: spec})
	if err != nil {
		return Job{}, err
	}
	err = enq.Enqueue(ctx, queue.Task{
		Kind:           TaskKind,
		Payload:        payload,
		IdempotencyKey: job.ID,
		MaxAttempts:    3,
	})
	if err != nil {
		return Job{}, fmt.Errorf("enqueue bulk job: %w", err)
	}
	return job, nil
}

// NewTaskHandler builds the worker-side consumer for bulk update tasks.
func NewTaskHandler(store *JobStore, processor *Processor, log zerolog.Logger) func(context.Context, queue.Task) error {
	return func(ctx context.Context, task queue.Task) error {
		var payload taskPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			log.Error().Err(err).Msg("bulk task payload malformed")
			return nil
		}
		if err := store.MarkRunning(ctx, payload.JobID); err != nil {
			return err
		}
		report, err := processor.Run(tenant.With(ctx, payload.Tenant), payload.Spec)
		if err != nil {
			if markErr := store.Fail(ctx, payload.JobID, itemErrorMessage(err)); markErr != nil {
				return markErr
			}
			if obs.BulkJobsTotal != nil {
				obs.BulkJobsTotal.WithLabelValues(string(JobFailed)).Inc()
			}
			// Validation failures are terminal; anything else may retry.
			if common.IsAppError(err) {
				return nil
			}
			return err
		}
		if err := store.Complete(ctx, payload.JobID, report); err != nil {
			return err
		}
		if obs.BulkJobsTotal != nil {
			obs.BulkJobsTotal.WithLabelValues(string(JobCompleted)).Inc()
		}
		log.Info().
			Str("job_id", payload.JobID).
			Int("succeeded", report.Succeeded).
			Int("failed", report.Failed).
			Msg("bulk update job finished")
		return nil
	}
}
