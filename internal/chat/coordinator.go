package chat

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("coordinator stopped")

// Coordinator serializes every client event on a single goroutine. The
// Registry, the transport Groups and the connection set are only ever
// touched from Run, so none of them needs a lock.
type Coordinator struct {
	registry *Registry
	groups   *Groups
	relay    *Relay
	conns    map[ConnID]Conn

	events chan Event
	done   chan struct{}
}

func NewCoordinator(registry *Registry, store MessageStore) *Coordinator {
	groups := NewGroups()
	return &Coordinator{
		registry: registry,
		groups:   groups,
		relay:    NewRelay(groups, store),
		conns:    make(map[ConnID]Conn),
		events:   make(chan Event, 256),
		done:     make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled. It must be started once.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

// Submit queues ev for the loop.
func (c *Coordinator) Submit(ctx context.Context, ev Event) error {
	select {
	case c.events <- ev:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the rooms and connection count as seen by the loop
// once every previously submitted event has been handled.
func (c *Coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	req := snapshotRequest{reply: make(chan Snapshot, 1)}
	if err := c.Submit(ctx, req); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Wait blocks until in-flight message writes have finished.
func (c *Coordinator) Wait() { c.relay.Wait() }

func (c *Coordinator) handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case Connected:
		c.connected(ev)
	case CreateRoom:
		c.createRoom(ev)
	case JoinRoom:
		c.joinRoom(ev)
	case SendMessage:
		c.relay.Send(ctx, ev.Conn, ev.RoomID, ev.Username, ev.Text)
	case Disconnected:
		c.disconnected(ev)
	case snapshotRequest:
		ev.reply <- Snapshot{Rooms: c.registry.ListRooms(), Connections: len(c.conns)}
	}
}

func (c *Coordinator) connected(ev Connected) {
	id := ev.Conn.ID()
	c.conns[id] = ev.Conn
	zap.L().Info("chat.connected", zap.String("conn", string(id)), zap.Int("connections", len(c.conns)))
	ev.Conn.Send(EventRoomList, c.registry.ListRooms())
}

func (c *Coordinator) createRoom(ev CreateRoom) {
	conn, ok := c.conns[ev.Conn]
	if !ok {
		zap.L().Debug("chat.create_room_unknown_conn", zap.String("conn", string(ev.Conn)))
		return
	}

	room, err := c.registry.CreateRoom(ev.Conn, ev.RoomID, ev.Username)
	if err != nil {
		zap.L().Debug("chat.create_room_rejected", zap.String("room", ev.RoomID), zap.Error(err))
		conn.Send(EventErrorMessage, errorText[err])
		return
	}
	c.groups.Join(room.RoomID, conn)
	zap.L().Info("chat.room_created", zap.String("room", room.RoomID), zap.String("admin", room.Admin))

	rooms := c.registry.ListRooms()
	for _, other := range c.conns {
		other.Send(EventRoomList, rooms)
	}
}

func (c *Coordinator) joinRoom(ev JoinRoom) {
	if ev.RoomID == "" {
		return
	}
	conn, ok := c.conns[ev.Conn]
	if !ok {
		zap.L().Debug("chat.join_room_unknown_conn", zap.String("conn", string(ev.Conn)))
		return
	}

	room := c.registry.JoinRoom(ev.Conn, ev.RoomID, ev.Username)
	c.groups.Join(room.RoomID, conn)
	zap.L().Info("chat.room_joined",
		zap.String("room", room.RoomID),
		zap.String("name", ev.Username),
		zap.Int("members", len(room.Members)),
	)
}

func (c *Coordinator) disconnected(ev Disconnected) {
	removed := c.registry.RemoveConnection(ev.Conn)
	c.groups.LeaveAll(ev.Conn)
	delete(c.conns, ev.Conn)
	zap.L().Info("chat.disconnected", zap.String("conn", string(ev.Conn)), zap.Int("memberships", removed))
}
