package roomstats

import (
	"context"
	"roomrelay/internal/chat"
	"time"

	"go.uber.org/zap"
)

const snapshotTimeout = 1500 * time.Millisecond

// Snapshotter is satisfied by *chat.Coordinator.
type Snapshotter interface {
	Snapshot(ctx context.Context) (chat.Snapshot, error)
}

type Stats struct {
	Rooms       int
	EmptyRooms  int
	Members     int
	Connections int
}

// Run logs registry statistics every interval. Rooms are never deleted,
// so EmptyRooms only grows with churn; this is where that shows up.
func Run(ctx context.Context, src Snapshotter, interval time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				reportOnce(ctx, src)
			}
		}
	}()
}

func reportOnce(ctx context.Context, src Snapshotter) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	snap, err := src.Snapshot(ctx)
	if err != nil {
		zap.L().Debug("roomstats.snapshot", zap.Error(err))
		return
	}
	st := Collect(snap)
	zap.L().Info("roomstats",
		zap.Int("rooms", st.Rooms),
		zap.Int("empty_rooms", st.EmptyRooms),
		zap.Int("members", st.Members),
		zap.Int("connections", st.Connections),
	)
}

func Collect(snap chat.Snapshot) Stats {
	st := Stats{Rooms: len(snap.Rooms), Connections: snap.Connections}
	for _, r := range snap.Rooms {
		if len(r.Members) == 0 {
			st.EmptyRooms++
		}
		st.Members += len(r.Members)
	}
	return st
}
