package chat

// Groups keeps the transport group of every room: the connections that
// receive its broadcasts. Like Registry it is owned by the Coordinator loop.
type Groups struct {
	rooms map[string]map[ConnID]Conn
}

func NewGroups() *Groups {
	return &Groups{rooms: make(map[string]map[ConnID]Conn)}
}

// Join is idempotent per (room, connection).
func (g *Groups) Join(roomID string, c Conn) {
	set, ok := g.rooms[roomID]
	if !ok {
		set = make(map[ConnID]Conn)
		g.rooms[roomID] = set
	}
	set[c.ID()] = c
}

// LeaveAll removes the connection from every group it belongs to.
func (g *Groups) LeaveAll(id ConnID) {
	for roomID, set := range g.rooms {
		delete(set, id)
		if len(set) == 0 {
			delete(g.rooms, roomID)
		}
	}
}

func (g *Groups) Members(roomID string) []Conn {
	set := g.rooms[roomID]
	out := make([]Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Broadcast sends to every connection in the room and returns the ids
// whose frame was dropped.
func (g *Groups) Broadcast(roomID, event string, body any) []ConnID {
	var dropped []ConnID
	for id, c := range g.rooms[roomID] {
		if !c.Send(event, body) {
			dropped = append(dropped, id)
		}
	}
	return dropped
}
