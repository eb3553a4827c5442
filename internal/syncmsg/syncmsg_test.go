package syncmsg

import (
	"context"
	"errors"
	"roomrelay/internal/chat"
	"roomrelay/internal/store/redisstore"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	batches [][]chat.Message
	err     error
}

func (f *fakeSink) AppendBatch(_ context.Context, msgs []chat.Message) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, msgs)
	return nil
}

const stream = "chat_messages_stream"

func readArgs(lastID string) *redis.XReadArgs {
	return &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   batchSize,
		Block:   blockFor,
	}
}

func entry(id, text string) redis.XMessage {
	return redis.XMessage{ID: id, Values: map[string]any{
		redisstore.FieldConn:     "c1",
		redisstore.FieldUsername: "carol",
		redisstore.FieldText:     text,
		redisstore.FieldRoom:     "123456",
		redisstore.FieldAt:       "1753632305000",
	}}
}

func TestSyncOnce_PersistsAndDeletes(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	sink := &fakeSink{}
	mock.ExpectXRead(readArgs("0-0")).SetVal([]redis.XStream{{
		Stream:   stream,
		Messages: []redis.XMessage{entry("1-0", "one"), entry("2-0", "two")},
	}})
	mock.ExpectXDel(stream, "1-0", "2-0").SetVal(2)

	next, err := syncOnce(context.Background(), rdc, stream, "0-0", sink)

	require.NoError(t, err)
	assert.Equal(t, "2-0", next)
	require.Len(t, sink.batches, 1)
	at := time.Date(2025, 7, 27, 16, 5, 5, 0, time.UTC)
	assert.Equal(t, []chat.Message{
		{ConnectionID: "c1", Username: "carol", Text: "one", Room: "123456", Timestamp: at},
		{ConnectionID: "c1", Username: "carol", Text: "two", Room: "123456", Timestamp: at},
	}, sink.batches[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncOnce_SkipsUndecodable(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	sink := &fakeSink{}
	bad := redis.XMessage{ID: "1-0", Values: map[string]any{"junk": "x"}}
	mock.ExpectXRead(readArgs("0-0")).SetVal([]redis.XStream{{
		Stream:   stream,
		Messages: []redis.XMessage{bad, entry("2-0", "ok")},
	}})
	mock.ExpectXDel(stream, "1-0", "2-0").SetVal(2)

	next, err := syncOnce(context.Background(), rdc, stream, "0-0", sink)

	require.NoError(t, err)
	assert.Equal(t, "2-0", next)
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncOnce_FailedBatchStaysInStream(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	sink := &fakeSink{err: errors.New("pg down")}
	mock.ExpectXRead(readArgs("5-0")).SetVal([]redis.XStream{{
		Stream:   stream,
		Messages: []redis.XMessage{entry("6-0", "lost")},
	}})

	next, err := syncOnce(context.Background(), rdc, stream, "5-0", sink)

	require.NoError(t, err)
	assert.Equal(t, "6-0", next)
	assert.NoError(t, mock.ExpectationsWereMet(), "no XDEL after a failed commit")
}

func TestSyncOnce_Timeout(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	mock.ExpectXRead(readArgs("7-0")).RedisNil()

	next, err := syncOnce(context.Background(), rdc, stream, "7-0", &fakeSink{})

	require.NoError(t, err)
	assert.Equal(t, "7-0", next)
}

func TestSyncOnce_ReadError(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	mock.ExpectXRead(readArgs("7-0")).SetErr(errors.New("LOADING"))

	next, err := syncOnce(context.Background(), rdc, stream, "7-0", &fakeSink{})

	assert.Error(t, err)
	assert.Equal(t, "7-0", next)
}
