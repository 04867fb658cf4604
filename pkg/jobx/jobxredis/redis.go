package jobxredis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/jobx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue implements jobx.Queue with one Redis list per queue and one
// string key per job.
type RedisQueue struct {
	rdb       redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedisQueue creates a queue whose keys start with prefix. Finished jobs
// are kept for retention.
func NewRedisQueue(rdb redis.UniversalClient, prefix string, retention time.Duration) *RedisQueue {
	if prefix == "" {
		prefix = "jobx"
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &RedisQueue{
		rdb:       rdb,
		prefix:    prefix,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ jobx.Queue = (*RedisQueue)(nil)

func (q *RedisQueue) queueKey(name string) string { return q.prefix + ":queue:" + name }
func (q *RedisQueue) jobKey(id string) string     { return q.prefix + ":job:" + id }

func queueErr(err error, op, jobID string) error {
	e := jobx.ErrRegistry.NewWithCause(jobx.CodeQueueFailed, err).WithDetail("op", op)
	if jobID != "" {
		e.WithDetail("job_id", jobID)
	}
	return e
}

func (q *RedisQueue) save(ctx context.Context, info *jobx.JobInfo, ttl time.Duration) error {
	data, err := json.Marshal(info)
	if err != nil {
		return jobx.ErrRegistry.NewWithCause(jobx.CodeCorruptJobState, err)
	}
	return q.rdb.Set(ctx, q.jobKey(info.ID), data, ttl).Err()
}

// Enqueue writes the job record and pushes its id in one transaction.
func (q *RedisQueue) Enqueue(ctx context.Context, job jobx.Job) (string, error) {
	now := q.now()
	info := jobx.JobInfo{
		ID:          uuid.NewString(),
		Type:        job.Type,
		Queue:       job.Queue,
		Payload:     job.Payload,
		Status:      jobx.JobStatusPending,
		MaxAttempts: job.MaxAttempts,
		Sensitive:   job.Sensitive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data, err := json.Marshal(info)
	if err != nil {
		return "", jobx.ErrRegistry.NewWithCause(jobx.CodeInvalidJob, err)
	}

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, q.jobKey(info.ID), data, job.TTL)
		pipe.LPush(ctx, q.queueKey(info.Queue), info.ID)
		return nil
	})
	if err != nil {
		return "", jobx.ErrRegistry.NewWithCause(jobx.CodeEnqueueFailed, err).WithDetail("queue", job.Queue)
	}
	return info.ID, nil
}

func (q *RedisQueue) GetJob(ctx context.Context, jobID string) (*jobx.JobInfo, error) {
	data, err := q.rdb.Get(ctx, q.jobKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, jobx.ErrRegistry.New(jobx.CodeJobNotFound).WithDetail("job_id", jobID)
		}
		return nil, queueErr(err, "get", jobID)
	}

	var info jobx.JobInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, jobx.ErrRegistry.NewWithCause(jobx.CodeCorruptJobState, err).WithDetail("job_id", jobID)
	}
	return &info, nil
}

// Dequeue pops the oldest id from the first non-empty queue and marks the
// job active.
func (q *RedisQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	keys := make([]string, len(queues))
	for i, name := range queues {
		keys[i] = q.queueKey(name)
	}

	result, err := q.rdb.BRPop(ctx, timeout, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, queueErr(err, "dequeue", "")
	}

	info, err := q.GetJob(ctx, result[1])
	if err != nil {
		return nil, err
	}

	info.Status = jobx.JobStatusActive
	info.Attempts++
	info.UpdatedAt = q.now()
	if err := q.save(ctx, info, redis.KeepTTL); err != nil {
		return nil, queueErr(err, "dequeue", info.ID)
	}
	return info, nil
}

func (q *RedisQueue) Complete(ctx context.Context, jobID string) error {
	info, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	info.Status = jobx.JobStatusCompleted
	info.Error = ""
	info.Redact()
	info.UpdatedAt = q.now()
	if err := q.save(ctx, info, q.retention); err != nil {
		return queueErr(err, "complete", jobID)
	}
	return nil
}

// Fail records errMsg. Jobs with attempts left go back to pending.
func (q *RedisQueue) Fail(ctx context.Context, jobID string, errMsg string) (bool, error) {
	info, err := q.GetJob(ctx, jobID)
	if err != nil {
		return false, err
	}

	info.Error = errMsg
	info.UpdatedAt = q.now()

	if !info.CanRetry() {
		info.Status = jobx.JobStatusFailed
		info.Redact()
		if err := q.save(ctx, info, q.retention); err != nil {
			return false, queueErr(err, "fail", jobID)
		}
		return false, nil
	}

	info.Status = jobx.JobStatusPending
	data, err := json.Marshal(info)
	if err != nil {
		return false, jobx.ErrRegistry.NewWithCause(jobx.CodeCorruptJobState, err)
	}
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, q.jobKey(jobID), data, redis.KeepTTL)
		pipe.LPush(ctx, q.queueKey(info.Queue), jobID)
		return nil
	})
	if err != nil {
		return false, queueErr(err, "requeue", jobID)
	}
	return true, nil
}
