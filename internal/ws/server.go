package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"roomrelay/internal/chat"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 12 * time.Second
	pingPeriod     = 3 * time.Second // must be < pongWait
	maxMessageSize = 4096
)

type WsServer struct {
	ctx        context.Context
	hub        *Hub
	router     *Router
	coord      *chat.Coordinator
	upgrader   websocket.Upgrader
	sendBuffer int
}

// NewWsServer builds the websocket entry point. ctx bounds the lifetime of
// every connection: once it is cancelled, events are no longer accepted.
func NewWsServer(ctx context.Context, h *Hub, coord *chat.Coordinator, sendBuffer int) *WsServer {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &WsServer{
		ctx:    ctx,
		hub:    h,
		router: newChatRouter(),
		coord:  coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true }, // any origin may connect
		},
		sendBuffer: sendBuffer,
	}
}

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageSize)

	// ─────────────────── Client connected ────────────────────────
	conn := newClientConn(chat.ConnID(uuid.NewString()), rawConn, s.sendBuffer)
	if err := s.coord.Submit(s.ctx, chat.Connected{Conn: conn}); err != nil {
		zap.L().Warn("ws.register", zap.Error(err))
		_ = rawConn.Close()
		return
	}
	s.hub.add(conn)

	cc := &ConnContext{ConnID: conn.id, RemoteAddr: ginCtx.Request.RemoteAddr}
	go conn.writePump()
	go s.reader(cc, conn)
}

// Hub exposes the live connection set.
func (s *WsServer) Hub() *Hub { return s.hub }

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) reader(cc *ConnContext, conn *clientConn) {
	defer func() {
		s.hub.remove(conn)
		conn.close()
		if err := s.coord.Submit(s.ctx, chat.Disconnected{Conn: conn.id}); err != nil {
			zap.L().Debug("ws.unregister", zap.String("conn", string(conn.id)), zap.Error(err))
		}
	}()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("ws.read", zap.String("conn", string(conn.id)), zap.Error(err))
			}
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			zap.L().Debug("ws.decode", zap.String("conn", string(conn.id)), zap.Error(err))
			continue
		}

		ev, err := s.router.dispatch(cc, env)
		if err != nil {
			// Malformed or unknown frames are ignored without telling the client.
			zap.L().Debug("ws.dispatch", zap.String("event", env.Event), zap.Error(err))
			continue
		}
		if ev == nil {
			continue
		}
		if err := s.coord.Submit(s.ctx, ev); err != nil {
			if !errors.Is(err, context.Canceled) {
				zap.L().Warn("ws.submit", zap.String("event", env.Event), zap.Error(err))
			}
			return
		}
	}
}
