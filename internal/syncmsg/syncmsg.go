package syncmsg

import (
	"context"
	"errors"
	"roomrelay/internal/chat"
	"roomrelay/internal/store/redisstore"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	batchSize = 100
	blockFor  = 2000 * time.Millisecond
)

// BatchAppender persists a batch of messages atomically.
type BatchAppender interface {
	AppendBatch(ctx context.Context, msgs []chat.Message) error
}

// Run tails the Redis message stream and persists every entry into sink.
// Entries are deleted from the stream once committed; entries that failed
// stay and are picked up again on the next start.
func Run(ctx context.Context, rdc *redis.Client, stream string, sink BatchAppender) {
	go func() {
		lastID := "0-0"
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			next, err := syncOnce(ctx, rdc, stream, lastID, sink)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Warn("syncmsg.xread", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			lastID = next
		}
	}()
}

// syncOnce reads one batch after lastID and returns the id to continue from.
func syncOnce(ctx context.Context, rdc *redis.Client, stream, lastID string, sink BatchAppender) (string, error) {
	// block up to 2 s for new entries
	res, err := rdc.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   batchSize,
		Block:   blockFor,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return lastID, err
	}
	if len(res) == 0 || len(res[0].Messages) == 0 {
		return lastID, nil
	}

	entries := res[0].Messages
	msgs := make([]chat.Message, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		m, err := redisstore.Decode(e)
		if err != nil {
			zap.L().Warn("syncmsg.decode", zap.String("id", e.ID), zap.Error(err))
			ids = append(ids, e.ID) // unreadable, drop it
			continue
		}
		msgs = append(msgs, m)
		ids = append(ids, e.ID)
	}
	last := entries[len(entries)-1].ID

	if len(msgs) > 0 {
		if err := sink.AppendBatch(ctx, msgs); err != nil {
			zap.L().Error("syncmsg.persist", zap.Int("count", len(msgs)), zap.Error(err))
			return last, nil
		}
	}
	if err := rdc.XDel(ctx, stream, ids...).Err(); err != nil {
		zap.L().Warn("syncmsg.xdel", zap.Error(err))
	}
	return last, nil
}
