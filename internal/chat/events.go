package chat

// Event is one client-originated occurrence handled by the Coordinator.
// The set is closed: only the types in this file implement it.
type Event interface {
	event()
}

type Connected struct {
	Conn Conn
}

type CreateRoom struct {
	Conn     ConnID
	RoomID   string
	Username string
}

type JoinRoom struct {
	Conn     ConnID
	RoomID   string
	Username string
}

type SendMessage struct {
	Conn     ConnID
	RoomID   string
	Username string
	Text     string
}

type Disconnected struct {
	Conn ConnID
}

// Snapshot is a consistent view of the coordinator state.
type Snapshot struct {
	Rooms       []Room `json:"rooms"`
	Connections int    `json:"connections"`
}

type snapshotRequest struct {
	reply chan Snapshot
}

func (Connected) event()       {}
func (CreateRoom) event()      {}
func (JoinRoom) event()        {}
func (SendMessage) event()     {}
func (Disconnected) event()    {}
func (snapshotRequest) event() {}
