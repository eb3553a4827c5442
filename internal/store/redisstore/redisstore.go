package redisstore

import (
	"context"
	"fmt"
	"roomrelay/internal/chat"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "chat_messages_stream"

// Field names of a stream entry.
const (
	FieldConn     = "sid"
	FieldUsername = "user"
	FieldText     = "text"
	FieldRoom     = "room"
	FieldAt       = "at"
)

// Store appends messages to a Redis stream. Entries are moved into
// Postgres by syncmsg.
type Store struct {
	rdc    *redis.Client
	stream string
	maxLen int64
}

var (
	_ chat.MessageStore = (*Store)(nil)
	_ chat.Pinger       = (*Store)(nil)
)

// New returns a store writing to stream, trimmed to roughly maxLen
// entries when maxLen > 0.
func New(rdc *redis.Client, stream string, maxLen int64) *Store {
	if stream == "" {
		stream = DefaultStream
	}
	return &Store{rdc: rdc, stream: stream, maxLen: maxLen}
}

func (s *Store) Stream() string { return s.stream }

func (s *Store) Append(ctx context.Context, msg chat.Message) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: []any{
			FieldConn, string(msg.ConnectionID),
			FieldUsername, msg.Username,
			FieldText, msg.Text,
			FieldRoom, msg.Room,
			FieldAt, strconv.FormatInt(msg.Timestamp.UnixMilli(), 10),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.rdc.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.rdc.Ping(ctx).Err() }

// Decode turns a stream entry back into a message.
func Decode(m redis.XMessage) (chat.Message, error) {
	str := func(k string) (string, error) {
		v, ok := m.Values[k].(string)
		if !ok {
			return "", fmt.Errorf("entry %s: missing %q", m.ID, k)
		}
		return v, nil
	}

	var (
		raw [5]string
		err error
	)
	for i, k := range []string{FieldConn, FieldUsername, FieldText, FieldRoom, FieldAt} {
		if raw[i], err = str(k); err != nil {
			return chat.Message{}, err
		}
	}
	ms, err := strconv.ParseInt(raw[4], 10, 64)
	if err != nil {
		return chat.Message{}, fmt.Errorf("entry %s: bad timestamp: %w", m.ID, err)
	}
	return chat.Message{
		ConnectionID: chat.ConnID(raw[0]),
		Username:     raw[1],
		Text:         raw[2],
		Room:         raw[3],
		Timestamp:    time.UnixMilli(ms).UTC(),
	}, nil
}

// HistoryStore writes through the stream and reads history from the
// database the stream is drained into.
type HistoryStore struct {
	*Store
	chat.HistoryReader
}

func (s *Store) WithHistory(r chat.HistoryReader) *HistoryStore {
	return &HistoryStore{Store: s, HistoryReader: r}
}
