package chat

import (
	"errors"
	"regexp"
)

const (
	SeedAdmin        = "system"
	AutoCreatedAdmin = "auto-created"
)

var (
	ErrInvalidRoomID = errors.New("invalid room id")
	ErrRoomExists    = errors.New("room already exists")
)

// errorText is what the originating client is told for each creation error.
var errorText = map[error]string{
	ErrInvalidRoomID: "Room ID must be 6 digits",
	ErrRoomExists:    "Room already exists",
}

var roomIDPattern = regexp.MustCompile(`^[0-9]{6}$`)

// Registry holds the live rooms in creation order. It has no locking:
// it is owned by the Coordinator loop and must only be touched from it.
//
// Rooms are never removed, even once their last member has left.
type Registry struct {
	rooms []*Room
	byID  map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Room)}
}

// Seed registers an empty room owned by SeedAdmin. It is a no-op when
// roomID is empty or already registered.
func (r *Registry) Seed(roomID string) {
	if roomID == "" || r.byID[roomID] != nil {
		return
	}
	r.add(&Room{RoomID: roomID, Admin: SeedAdmin, Members: []Member{}})
}

func (r *Registry) CreateRoom(conn ConnID, roomID, username string) (*Room, error) {
	if !roomIDPattern.MatchString(roomID) {
		return nil, ErrInvalidRoomID
	}
	if _, ok := r.byID[roomID]; ok {
		return nil, ErrRoomExists
	}
	room := &Room{
		RoomID:  roomID,
		Admin:   username,
		Members: []Member{{ConnectionID: conn, Username: username}},
	}
	r.add(room)
	return room, nil
}

// JoinRoom appends a member, creating the room on first use. The room id
// is not format checked on this path.
func (r *Registry) JoinRoom(conn ConnID, roomID, username string) *Room {
	room, ok := r.byID[roomID]
	if !ok {
		room = &Room{RoomID: roomID, Admin: AutoCreatedAdmin, Members: []Member{}}
		r.add(room)
	}
	room.Members = append(room.Members, Member{ConnectionID: conn, Username: username})
	return room
}

// RemoveConnection drops every membership held by conn, in every room.
// It reports how many members were removed.
func (r *Registry) RemoveConnection(conn ConnID) int {
	removed := 0
	for _, room := range r.rooms {
		kept := room.Members[:0]
		for _, m := range room.Members {
			if m.ConnectionID == conn {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		room.Members = kept
	}
	return removed
}

func (r *Registry) ListRooms() []Room {
	out := make([]Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.clone())
	}
	return out
}

func (r *Registry) Room(roomID string) (Room, bool) {
	room, ok := r.byID[roomID]
	if !ok {
		return Room{}, false
	}
	return room.clone(), true
}

func (r *Registry) Len() int { return len(r.rooms) }

func (r *Registry) add(room *Room) {
	r.rooms = append(r.rooms, room)
	r.byID[room.RoomID] = room
}
