package ws

import (
	"encoding/json"
	"roomrelay/internal/chat"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// clientConn is one upgraded websocket. Frames are encoded by Send on the
// caller's goroutine and written by writePump, which is the only writer
// of rawConn and the one that closes it.
type clientConn struct {
	id      chat.ConnID
	rawConn *websocket.Conn
	send    chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

var _ chat.Conn = (*clientConn)(nil)

func newClientConn(id chat.ConnID, rawConn *websocket.Conn, buffer int) *clientConn {
	return &clientConn{
		id:      id,
		rawConn: rawConn,
		send:    make(chan []byte, buffer),
		done:    make(chan struct{}),
	}
}

func (c *clientConn) ID() chat.ConnID { return c.id }

// Send never blocks: a frame that does not fit in the buffer is dropped.
func (c *clientConn) Send(event string, body any) bool {
	data, err := json.Marshal(outbound{Event: event, Body: body})
	if err != nil {
		zap.L().Error("ws.encode", zap.String("event", event), zap.Error(err))
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *clientConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *clientConn) write(mt int, data []byte) error {
	_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.rawConn.WriteMessage(mt, data)
}

// writePump drains the send buffer and keeps the peer alive with pings.
func (c *clientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.rawConn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.rawConn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				logWriteError(c.id, err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				logWriteError(c.id, err)
				return
			}
		}
	}
}

func logWriteError(id chat.ConnID, err error) {
	if isExpectedCloseError(err) {
		return
	}
	zap.L().Warn("ws.write", zap.String("conn", string(id)), zap.Error(err))
}
