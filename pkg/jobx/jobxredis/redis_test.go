package jobxredis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/jobx"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisQueue(rdb, "test", time.Hour), mr
}

func newClient(q jobx.Queue) *jobx.Client {
	return jobx.NewClient(q, jobx.WorkerOptions{Queues: []string{"mail"}, DequeueTimeout: 50 * time.Millisecond})
}

func TestRedisQueue_ProcessesJobOnce(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t)
	c := newClient(q)

	var got struct{ To string }
	c.Register("otp.email", func(_ context.Context, job *jobx.JobInfo) error {
		return job.Decode(&got)
	})

	id, err := c.EnqueueJSON(ctx, "otp.email", "mail", map[string]string{"To": "a@example.com"}, 1)
	require.NoError(t, err)

	handled, err := c.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "a@example.com", got.To)

	info, err := q.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, jobx.JobStatusCompleted, info.Status)
	assert.Equal(t, 1, info.Attempts)
}

func TestRedisQueue_SingleAttemptIsNotRequeued(t *testing.T) {
	ctx := context.Background()
	q, mr := newQueue(t)
	c := newClient(q)
	c.Register("otp.email", func(context.Context, *jobx.JobInfo) error { return errors.New("smtp down") })

	id, err := c.EnqueueJSON(ctx, "otp.email", "mail", map[string]string{}, 0)
	require.NoError(t, err)

	_, err = c.ProcessNext(ctx)
	require.NoError(t, err)

	info, err := q.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, jobx.JobStatusFailed, info.Status)
	assert.Equal(t, "smtp down", info.Error)

	length, err := mr.List("test:queue:mail")
	if err == nil {
		assert.Empty(t, length)
	}
	assert.True(t, mr.TTL("test:job:"+id) > 0)
}

func TestRedisQueue_RequeuesWhileAttemptsRemain(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t)
	c := newClient(q)

	calls := 0
	c.Register("flaky", func(context.Context, *jobx.JobInfo) error {
		calls++
		if calls == 1 {
			return errors.New("first try fails")
		}
		return nil
	})

	id, err := c.EnqueueJSON(ctx, "flaky", "mail", nil, 2)
	require.NoError(t, err)

	_, err = c.ProcessNext(ctx)
	require.NoError(t, err)
	_, err = c.ProcessNext(ctx)
	require.NoError(t, err)

	info, err := q.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, jobx.JobStatusCompleted, info.Status)
	assert.Equal(t, 2, calls)
}

func TestRedisQueue_EmptyQueueTimesOut(t *testing.T) {
	q, _ := newQueue(t)

	handled, err := newClient(q).ProcessNext(context.Background())

	require.NoError(t, err)
	assert.False(t, handled)
}

func TestRedisQueue_GetJobNotFound(t *testing.T) {
	q, _ := newQueue(t)

	_, err := q.GetJob(context.Background(), "missing")

	assert.True(t, errx.IsCode(err, jobx.CodeJobNotFound))
}

func TestRedisQueue_SensitivePayloadIsRedacted(t *testing.T) {
	ctx := context.Background()
	q, mr := newQueue(t)
	c := newClient(q)

	var seen string
	c.Register("otp.email", func(_ context.Context, job *jobx.JobInfo) error {
		seen = string(job.Payload)
		return nil
	})

	id, err := c.Enqueue(ctx, jobx.Job{
		Type:      "otp.email",
		Queue:     "mail",
		Payload:   []byte(`{"code":"918273"}`),
		Sensitive: true,
		TTL:       2 * time.Minute,
	})
	require.NoError(t, err)

	ttl := mr.TTL("test:job:" + id)
	assert.True(t, ttl > 0 && ttl <= 2*time.Minute, "pending ttl %s", ttl)

	_, err = c.ProcessNext(ctx)
	require.NoError(t, err)
	assert.Contains(t, seen, "918273", "handler still receives the payload")

	info, err := q.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, jobx.JobStatusCompleted, info.Status)
	assert.Equal(t, "null", string(info.Payload))

	raw, err := mr.Get("test:job:" + id)
	require.NoError(t, err)
	assert.NotContains(t, raw, "918273")
}

func TestRedisQueue_PlainPayloadIsKept(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t)
	c := newClient(q)
	c.Register("report", func(context.Context, *jobx.JobInfo) error { return nil })

	id, err := c.EnqueueJSON(ctx, "report", "mail", map[string]string{"k": "v"}, 1)
	require.NoError(t, err)
	_, err = c.ProcessNext(ctx)
	require.NoError(t, err)

	info, err := q.GetJob(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, string(info.Payload))
}
