package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/config"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	SubmissionBatchSize    = 50
	SubmissionBatchTimeout = 2 * time.Second
	SubmissionPollTimeout  = 1 * time.Second
)

// SubmissionWriter persists graded submissions onto their exams.
type SubmissionWriter interface {
	AppendSubmissions(ctx context.Context, batch []repository.SubmissionRecord) error
	AppendSubmission(ctx context.Context, rec repository.SubmissionRecord) error
}

// Queue is the list the API pushes graded submissions onto.
type Queue interface {
	// Pop blocks up to timeout; it returns redis.Nil when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Push(ctx context.Context, raw []byte) error
}

type redisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue returns the submission queue backed by a Redis list.
func NewRedisQueue(rdb *redis.Client) Queue {
	return &redisQueue{rdb: rdb, key: config.WorkerKey.PersistSubmissionsQueue}
}

func (q *redisQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		return nil, err
	}
	if len(item) < 2 {
		return nil, redis.Nil
	}
	return []byte(item[1]), nil
}

func (q *redisQueue) Push(ctx context.Context, raw []byte) error {
	return q.rdb.RPush(ctx, q.key, raw).Err()
}

// SubmissionWorker drains the submission queue into Postgres in batches.
type SubmissionWorker struct {
	writer SubmissionWriter
	queue  Queue
	log    zerolog.Logger
}

func NewSubmissionWorker(writer SubmissionWriter, queue Queue, log zerolog.Logger) *SubmissionWorker {
	return &SubmissionWorker{
		writer: writer,
		queue:  queue,
		log:    log.With().Str("component", "submission_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled, then flushes what it holds.
func (w *SubmissionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SubmissionWorker started")

	batch := make([]repository.SubmissionRecord, 0, SubmissionBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= SubmissionBatchSize || time.Since(lastFlush) >= SubmissionBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.WithoutCancel(ctx), batch)
			return

		default:
			raw, err := w.queue.Pop(ctx, SubmissionPollTimeout)
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("queue pop failed")
					// Back off so a dead Redis does not spin the loop.
					time.Sleep(SubmissionPollTimeout)
				}
				continue
			}

			var rec repository.SubmissionRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch write with single-record fallback
// ----------------------------------------------------------------

// flushSafe writes the batch in one statement. On failure every record is
// retried alone; records that still fail go back on the queue, except those
// whose exam no longer exists.
func (w *SubmissionWorker) flushSafe(ctx context.Context, batch []repository.SubmissionRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.writer.AppendSubmissions(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("submissions persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("batch append failed, using fallback")

	for _, rec := range batch {
		err := w.writer.AppendSubmission(ctx, rec)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrNotFound):
			w.log.Warn().
				Str("exam_id", rec.ExamID.String()).
				Str("user_id", rec.Submission.UserID.String()).
				Msg("exam gone, dropping submission")
		default:
			w.log.Error().Err(err).Str("exam_id", rec.ExamID.String()).Msg("append failed, requeueing")
			raw, _ := json.Marshal(rec)
			if err := w.queue.Push(ctx, raw); err != nil {
				w.log.Error().Err(err).Str("exam_id", rec.ExamID.String()).Msg("requeue failed, submission lost")
			}
		}
	}
}
