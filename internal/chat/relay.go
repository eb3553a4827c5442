package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Relay is the broadcast path for send-message: it hands every valid
// message to the store in the background and delivers it to the room's
// transport group, sender included.
type Relay struct {
	groups *Groups
	store  MessageStore
	now    func() time.Time

	// persisting tracks in-flight Append calls so shutdown can drain them.
	persisting sync.WaitGroup
}

func NewRelay(groups *Groups, store MessageStore) *Relay {
	return &Relay{
		groups: groups,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Send reports whether the message was accepted. Messages with an empty
// room or username, or with blank text, are dropped without notice.
// Membership of the sender in the room is not checked.
func (r *Relay) Send(ctx context.Context, conn ConnID, roomID, username, text string) bool {
	if roomID == "" || username == "" || strings.TrimSpace(text) == "" {
		return false
	}

	msg := Message{
		ConnectionID: conn,
		Username:     username,
		Text:         text,
		Room:         roomID,
		Timestamp:    r.now(),
	}
	r.persist(context.WithoutCancel(ctx), msg)

	dropped := r.groups.Broadcast(roomID, EventReceiveMessage, ReceivedMessage{Name: username, Message: text})
	for _, id := range dropped {
		zap.L().Warn("relay.frame_dropped", zap.String("room", roomID), zap.String("conn", string(id)))
	}
	return true
}

func (r *Relay) persist(ctx context.Context, msg Message) {
	if r.store == nil {
		return
	}
	r.persisting.Add(1)
	go func() {
		defer r.persisting.Done()
		if err := r.store.Append(ctx, msg); err != nil {
			zap.L().Error("relay.persist_failed",
				zap.String("room", msg.Room),
				zap.String("conn", string(msg.ConnectionID)),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every Append started so far has returned.
func (r *Relay) Wait() { r.persisting.Wait() }
