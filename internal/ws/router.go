package ws

import (
	"encoding/json"
	"errors"
	"roomrelay/internal/chat"
)

var ErrUnknownEvent = errors.New("unknown_event")

// ConnContext describes the connection a frame arrived on.
type ConnContext struct {
	ConnID     chat.ConnID
	RemoteAddr string
}

// internal (untyped) handler signature.
type rawHandler func(c *ConnContext, body json.RawMessage) (chat.Event, error)

// Router turns inbound frames into coordinator events. The table is
// filled once at construction and read-only afterwards.
type Router struct {
	handlers map[string]rawHandler
}

func NewRouter() *Router { return &Router{handlers: make(map[string]rawHandler)} }

// Register binds an event name to a strongly‑typed translator. A nil
// event from h means the frame is ignored.
func Register[Req any](
	r *Router,
	event string,
	h func(c *ConnContext, req Req) chat.Event,
) {
	if event == "" {
		panic("ws router: empty event")
	}
	if _, dup := r.handlers[event]; dup {
		panic("ws router: duplicate event " + event)
	}

	r.handlers[event] = func(c *ConnContext, body json.RawMessage) (chat.Event, error) {
		var req Req
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, err
			}
		}
		return h(c, req), nil
	}
}

// dispatch is called by the server’s reader loop.
func (r *Router) dispatch(c *ConnContext, env Envelope) (chat.Event, error) {
	h, ok := r.handlers[env.Event]
	if !ok {
		return nil, ErrUnknownEvent
	}
	return h(c, env.Body)
}

// newChatRouter maps the client protocol onto chat events.
func newChatRouter() *Router {
	r := NewRouter()

	Register(r, EventCreateRoom, func(c *ConnContext, req CreateRoomRequest) chat.Event {
		return chat.CreateRoom{Conn: c.ConnID, RoomID: req.RoomID, Username: req.Username}
	})
	Register(r, EventJoinRoom, func(c *ConnContext, req JoinRoomRequest) chat.Event {
		if req.Room == "" {
			return nil
		}
		return chat.JoinRoom{Conn: c.ConnID, RoomID: req.Room, Username: req.Name}
	})
	Register(r, EventSendMessage, func(c *ConnContext, req SendMessageRequest) chat.Event {
		return chat.SendMessage{Conn: c.ConnID, RoomID: req.Room, Username: req.Name, Text: req.Message}
	})

	return r
}
