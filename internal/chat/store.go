package chat

import "context"

// MessageStore is the persistence collaborator. The relay only appends.
type MessageStore interface {
	Append(ctx context.Context, msg Message) error
}

// HistoryReader is implemented by stores that can read messages back,
// newest last.
type HistoryReader interface {
	History(ctx context.Context, room string, limit int) ([]Message, error)
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
