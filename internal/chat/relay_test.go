package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_DropsIncompleteMessages(t *testing.T) {
	tests := []struct {
		name     string
		room     string
		username string
		text     string
	}{
		{name: "empty text", room: "123456", username: "bob", text: ""},
		{name: "blank text", room: "123456", username: "bob", text: "   "},
		{name: "whitespace mix", room: "123456", username: "bob", text: "\t\n "},
		{name: "no room", room: "", username: "bob", text: "hi"},
		{name: "no username", room: "123456", username: "", text: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := NewGroups()
			conn := newFakeConn("c1")
			groups.Join("123456", conn)
			store := &recordingStore{}
			relay := NewRelay(groups, store)

			ok := relay.Send(context.Background(), "c1", tt.room, tt.username, tt.text)
			relay.Wait()

			assert.False(t, ok)
			assert.Empty(t, store.messages())
			assert.Empty(t, conn.received(EventReceiveMessage))
		})
	}
}

func TestRelay_DeliversToGroupIncludingSender(t *testing.T) {
	groups := NewGroups()
	sender, peer, outsider := newFakeConn("c1"), newFakeConn("c2"), newFakeConn("c3")
	groups.Join("123456", sender)
	groups.Join("123456", peer)
	groups.Join("654321", outsider)
	store := &recordingStore{}
	relay := NewRelay(groups, store)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	relay.now = func() time.Time { return at }

	require.True(t, relay.Send(context.Background(), "c1", "123456", "bob", " hi "))
	relay.Wait()

	want := ReceivedMessage{Name: "bob", Message: " hi "}
	assert.Equal(t, []any{want}, sender.received(EventReceiveMessage))
	assert.Equal(t, []any{want}, peer.received(EventReceiveMessage))
	assert.Empty(t, outsider.received(EventReceiveMessage))
	assert.Equal(t, []Message{{
		ConnectionID: "c1",
		Username:     "bob",
		Text:         " hi ",
		Room:         "123456",
		Timestamp:    at,
	}}, store.messages())
}

func TestRelay_NonMemberMayBroadcast(t *testing.T) {
	groups := NewGroups()
	member := newFakeConn("c1")
	groups.Join("123456", member)
	relay := NewRelay(groups, &recordingStore{})

	assert.True(t, relay.Send(context.Background(), "stranger", "123456", "eve", "hello"))
	assert.Len(t, member.received(EventReceiveMessage), 1)
}

func TestRelay_StoreFailureDoesNotBlockDelivery(t *testing.T) {
	groups := NewGroups()
	conn := newFakeConn("c1")
	groups.Join("123456", conn)
	relay := NewRelay(groups, &recordingStore{err: errStoreDown})

	assert.True(t, relay.Send(context.Background(), "c1", "123456", "bob", "hi"))
	relay.Wait()

	assert.Len(t, conn.received(EventReceiveMessage), 1)
}

type blockingStore struct {
	release chan struct{}
	done    chan Message
}

func (s *blockingStore) Append(ctx context.Context, msg Message) error {
	<-s.release
	s.done <- msg
	return ctx.Err()
}

func TestRelay_DeliveryDoesNotWaitForStore(t *testing.T) {
	groups := NewGroups()
	conn := newFakeConn("c1")
	groups.Join("123456", conn)
	store := &blockingStore{release: make(chan struct{}), done: make(chan Message, 1)}
	relay := NewRelay(groups, store)

	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, relay.Send(ctx, "c1", "123456", "bob", "hi"))
	assert.Len(t, conn.received(EventReceiveMessage), 1)

	cancel()
	close(store.release)
	relay.Wait()
	msg := <-store.done
	assert.Equal(t, "hi", msg.Text)
}

func TestRelay_FullClientDoesNotStopOthers(t *testing.T) {
	groups := NewGroups()
	slow, fast := newFakeConn("c1"), newFakeConn("c2")
	slow.full = true
	groups.Join("123456", slow)
	groups.Join("123456", fast)
	relay := NewRelay(groups, nil)

	assert.True(t, relay.Send(context.Background(), "c2", "123456", "bob", "hi"))
	assert.Empty(t, slow.received(EventReceiveMessage))
	assert.Len(t, fast.received(EventReceiveMessage), 1)
}
