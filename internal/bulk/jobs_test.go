package bulk_test

import (
	"context"
	"encoding/json"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/bulk"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/queue"
	"github.com/noah-isme/backend-pos/internal/repo"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestJobStoreLifecycle(t *testing.T) {
	client := newRedis(t)
	store := &bulk.JobStore{R: client}
	ctx := context.Background()

	job, err := store.Create(ctx, bulk.Spec{UpdateType: bulk.SetMargin, Value: dec("20"), TierNumber: 1})
	require.NoError(t, err)
	require.Equal(t, bulk.JobPending, job.Status)

	require.NoError(t, store.MarkRunning(ctx, job.ID))
	require.NoError(t, store.Complete(ctx, job.ID, bulk.Report{Succeeded: 2}))

	loaded, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, bulk.JobCompleted, loaded.Status)
	require.NotNil(t, loaded.Report)
	require.Equal(t, 2, loaded.Report.Succeeded)
}

func TestJobStoreGetUnknown(t *testing.T) {
	store := &bulk.JobStore{R: newRedis(t)}

	_, err := store.Get(context.Background(), "nope")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestEnqueueJobPublishesTask(t *testing.T) {
	client := newRedis(t)
	jobs := &bulk.JobStore{R: client}
	enq := queue.Enqueuer{R: client, Prefix: "pos"}

	_, ctx := newStore()

	job, err := bulk.EnqueueJob(ctx, jobs, enq, bulk.Spec{
		ProductIDs: []string{"x"},
		UpdateType: bulk.FixedIncrease,
		Value:      dec("1"),
		TierNumber: 1,
	})
	require.NoError(t, err)
	require.Equal(t, bulk.JobPending, job.Status)

	depth, err := client.ZCard(context.Background(), "pos:queue:"+bulk.TaskKind).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), depth)
}

func TestTaskHandlerCompletesJob(t *testing.T) {
	client := newRedis(t)
	jobs := &bulk.JobStore{R: client}

	store, ctx := newStore()
	margin := dec("25")
	list := dec("150")
	productID := store.addProduct(&list, &margin)

	spec := bulk.Spec{
		ProductIDs: []string{productID},
		UpdateType: bulk.PercentageIncrease,
		Value:      dec("10"),
		TierNumber: 1,
	}
	job, err := jobs.Create(ctx, spec)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"jobId":  job.ID,
		"tenant": repo.UUIDString(store.tenantID),
		"spec":   spec,
	})
	require.NoError(t, err)

	handler := bulk.NewTaskHandler(jobs, newProcessor(store), zerolog.Nop())
	require.NoError(t, handler(context.Background(), queue.Task{Kind: bulk.TaskKind, Payload: payload}))

	done, err := jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, bulk.JobCompleted, done.Status)
	require.NotNil(t, done.Report)
	require.Equal(t, 1, done.Report.Succeeded)

	_, sale, _ := storedMargin(t, store, productID, 1)
	require.True(t, sale.Equal(dec("220.00")), "sale %s", sale)
}
