package queue

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"server/internal/domain"
	"server/internal/infra"
)

const (
	pendingKey          = "generate:pending"
	jobKeyPrefix        = "generate:job:"
	completedHistoryKey = "generate:history:completed"
	failedHistoryKey    = "generate:history:failed"

	popTimeout = 5 * time.Second
)

// RedisQueue persists jobs in Redis so they survive process restarts and can
// be consumed by separate worker processes. Terminal jobs are retained up to
// a history limit per outcome; older ones are evicted together with their
// state.
type RedisQueue struct {
	rdb          *redis.Client
	run          RunFunc
	logger       infra.Logger
	maxAttempts  int
	historyLimit int
	entropy      *ulid.MonotonicEntropy
}

type RedisQueueOptions struct {
	MaxAttempts  int
	HistoryLimit int
}

func NewRedisQueue(rdb *redis.Client, run RunFunc, logger infra.Logger, opts RedisQueueOptions) *RedisQueue {
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	historyLimit := opts.HistoryLimit
	if historyLimit < 1 {
		historyLimit = 100
	}
	return &RedisQueue{
		rdb:          rdb,
		run:          run,
		logger:       logger,
		maxAttempts:  maxAttempts,
		historyLimit: historyLimit,
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}

// Enqueue stores the job payload and pushes its id onto the pending list.
func (q *RedisQueue) Enqueue(ctx context.Context, req domain.GenerationRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	id := ulid.MustNew(ulid.Timestamp(time.Now()), q.entropy).String()

	pipe := q.rdb.TxPipeline()
	pipe.HSet(ctx, jobKey(id), map[string]any{
		"status":      string(StatusQueued),
		"request":     payload,
		"attempts":    0,
		"enqueued_at": time.Now().UTC().Format(time.RFC3339),
	})
	pipe.LPush(ctx, pendingKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Status reads the job hash. A missing hash means the job never existed or
// its history entry was evicted.
func (q *RedisQueue) Status(ctx context.Context, id string) (JobStatus, error) {
	fields, err := q.rdb.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return JobStatus{}, err
	}
	if len(fields) == 0 {
		return JobStatus{ID: id, Status: StatusNotFound}, nil
	}

	status := JobStatus{ID: id, Status: Status(fields["status"])}
	if raw, ok := fields["result"]; ok && raw != "" {
		var result domain.GenerationResult
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			status.Result = &result
		}
	}
	return status, nil
}

// Consume blocks on the pending list and processes jobs until the context is
// cancelled.
func (q *RedisQueue) Consume(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		values, err := q.rdb.BRPop(ctx, popTimeout, pendingKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			q.logger.Error().Err(err).Msg("queue pop failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if len(values) < 2 {
			continue
		}
		q.process(ctx, values[1])
	}
}

func (q *RedisQueue) process(ctx context.Context, id string) {
	raw, err := q.rdb.HGet(ctx, jobKey(id), "request").Result()
	if err != nil {
		q.logger.Error().Err(err).Str("job_id", id).Msg("job payload missing")
		return
	}
	var req domain.GenerationRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		q.logger.Error().Err(err).Str("job_id", id).Msg("job payload corrupt")
		q.finish(ctx, id, StatusFailed, nil, "corrupt job payload")
		return
	}

	q.rdb.HSet(ctx, jobKey(id), "status", string(StatusActive))
	q.logger.Info().Str("job_id", id).Str("type", req.Type).Msg("job started")

	result, err := q.run(ctx, req)
	if err == nil {
		q.finish(ctx, id, StatusCompleted, result, "")
		q.logger.Info().Str("job_id", id).Msg("job completed")
		return
	}

	attempts, incErr := q.rdb.HIncrBy(ctx, jobKey(id), "attempts", 1).Result()
	if incErr == nil && attempts < int64(q.maxAttempts) {
		q.rdb.HSet(ctx, jobKey(id), "status", string(StatusQueued))
		q.rdb.LPush(ctx, pendingKey, id)
		q.logger.Warn().Err(err).Str("job_id", id).Int64("attempt", attempts).Msg("job retried")
		return
	}
	q.finish(ctx, id, StatusFailed, nil, err.Error())
	q.logger.Warn().Err(err).Str("job_id", id).Msg("job failed")
}

func (q *RedisQueue) finish(ctx context.Context, id string, status Status, result *domain.GenerationResult, errMsg string) {
	// Failed jobs expose only the failure reason, never a partial result.
	if status == StatusFailed {
		result = &domain.GenerationResult{Error: errMsg}
	}
	fields := map[string]any{"status": string(status)}
	if result != nil {
		if raw, err := json.Marshal(result); err == nil {
			fields["result"] = raw
		}
	}
	q.rdb.HSet(ctx, jobKey(id), fields)

	historyKey := completedHistoryKey
	if status == StatusFailed {
		historyKey = failedHistoryKey
	}
	q.rdb.LPush(ctx, historyKey, id)

	// Evict jobs beyond the retention window along with their state.
	evicted, err := q.rdb.LRange(ctx, historyKey, int64(q.historyLimit), -1).Result()
	if err == nil && len(evicted) > 0 {
		keys := make([]string, 0, len(evicted))
		for _, old := range evicted {
			keys = append(keys, jobKey(old))
		}
		q.rdb.Del(ctx, keys...)
	}
	q.rdb.LTrim(ctx, historyKey, 0, int64(q.historyLimit)-1)
}

var _ Queue = (*RedisQueue)(nil)
