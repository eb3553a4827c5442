package ws

import (
	"encoding/json"
	"strings"
)

// Envelope wraps every inbound WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "send-message"
	Body  json.RawMessage `json:"body,omitempty"` // event specific object
}

// outbound is the server side counterpart of Envelope.
type outbound struct {
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

// Client → server events.
const (
	EventCreateRoom  = "create-room"
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
)

// ──────────────────────────── Request DTOs ─────────────────────────

// CreateRoomRequest is the body for "create-room".
type CreateRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// JoinRoomRequest is the body for "join-room".
type JoinRoomRequest struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// SendMessageRequest is the body for "send-message".
type SendMessageRequest struct {
	Room    string `json:"room"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// isExpectedCloseError reports errors that just mean the peer went away.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "websocket: close sent") ||
		strings.Contains(msg, "broken pipe")
}
