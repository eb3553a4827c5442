package chat

import "time"

// ConnID identifies one live client connection.
type ConnID string

type Member struct {
	ConnectionID ConnID `json:"connectionId"`
	Username     string `json:"username"`
}

type Room struct {
	RoomID  string   `json:"roomId"  example:"123456"`
	Admin   string   `json:"admin"   example:"system"`
	Members []Member `json:"members"`
}

// clone returns a copy that shares nothing with r.
func (r *Room) clone() Room {
	members := make([]Member, len(r.Members))
	copy(members, r.Members)
	return Room{RoomID: r.RoomID, Admin: r.Admin, Members: members}
}

// Message is the persisted record of one send-message event.
type Message struct {
	ConnectionID ConnID    `json:"connectionId"`
	Username     string    `json:"username"`
	Text         string    `json:"text"`
	Room         string    `json:"room"`
	Timestamp    time.Time `json:"timestamp"`
}

// Outbound event names.
const (
	EventRoomList       = "roomList"
	EventErrorMessage   = "errorMessage"
	EventReceiveMessage = "receive-message"
)

// ReceivedMessage is the body of a receive-message event.
type ReceivedMessage struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Conn is the coordinator's view of a client transport session.
// Send must not block; it reports false when the frame was dropped.
type Conn interface {
	ID() ConnID
	Send(event string, body any) bool
}
