package room

import (
	"context"
	"errors"
	"roomrelay/internal/chat"
	"time"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

var ErrHistoryUnsupported = errors.New("message store does not support history")

// DebugDTO is the diagnostic view served on /debug.
type DebugDTO struct {
	Rooms          []chat.Room `json:"rooms"`
	Connections    int         `json:"connections"    example:"2"`
	Store          string      `json:"store"          example:"postgres"`
	StoreConnected bool        `json:"storeConnected" example:"true"`
}

// IRoomService is the read side used by the HTTP handlers.
type IRoomService interface {
	ListRooms(ctx context.Context) ([]chat.Room, error)
	History(ctx context.Context, roomID string, limit int) ([]chat.Message, error)
	Debug(ctx context.Context) (*DebugDTO, error)
}

type roomService struct {
	coord     *chat.Coordinator
	store     chat.MessageStore
	storeName string
}

func NewRoomService(coord *chat.Coordinator, store chat.MessageStore, storeName string) IRoomService {
	return &roomService{
		coord:     coord,
		store:     store,
		storeName: storeName,
	}
}

func (svc *roomService) ListRooms(ctx context.Context) ([]chat.Room, error) {
	snap, err := svc.coord.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Rooms, nil
}

// History clamps limit into [1, MaxHistoryLimit]; 0 means the default.
func (svc *roomService) History(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	reader, ok := svc.store.(chat.HistoryReader)
	if !ok {
		return nil, ErrHistoryUnsupported
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return reader.History(ctx, roomID, limit)
}

func (svc *roomService) Debug(ctx context.Context) (*DebugDTO, error) {
	snap, err := svc.coord.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugDTO{
		Rooms:          snap.Rooms,
		Connections:    snap.Connections,
		Store:          svc.storeName,
		StoreConnected: svc.storeConnected(ctx),
	}, nil
}

// Stores without Ping count as connected.
func (svc *roomService) storeConnected(ctx context.Context) bool {
	p, ok := svc.store.(chat.Pinger)
	if !ok {
		return svc.store != nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(ctx) == nil
}
