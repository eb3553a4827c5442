package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"roomrelay/internal/http/roomhandler"
	"roomrelay/internal/services/room"
	"roomrelay/internal/ws"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files
)

type httpServer struct {
	listenPort  uint16
	publicDir   string
	srv         http.Server
	ln          net.Listener
	roomService room.IRoomService
	wsSrv       *ws.WsServer
	ctx         context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, publicDir string, wsSrv *ws.WsServer, roomService room.IRoomService) *httpServer {
	return &httpServer{
		listenPort:  listenPort,
		publicDir:   publicDir,
		wsSrv:       wsSrv,
		roomService: roomService,
		ctx:         ctx,
	}
}

func (h *httpServer) routes() *gin.Engine {
	routerEngine := gin.New()

	routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	// Login page and its assets
	routerEngine.StaticFile("/", filepath.Join(h.publicDir, "login.html"))
	routerEngine.Static("/static", h.publicDir)

	// websocket endpoint
	routerEngine.GET("/ws", h.wsSrv.Handle)

	// REST API
	rh := roomhandler.New(h.roomService)
	rh.Register(routerEngine)

	return routerEngine
}

// Start blocks serving requests until Dispose is called.
func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	zap.L().Info("http_listening", zap.String("addr", h.ln.Addr().String()))

	h.srv = http.Server{
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := h.srv.Serve(h.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in‑flight requests to finish. Hijacked
// websocket connections are not tracked by http.Server and must be
// closed separately.
func (h *httpServer) Dispose() error {
	// The parent ctx is usually already cancelled at this point.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), 10*time.Second)
	defer cancel()

	// Ask the server to shut down.
	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn’t finish in time
	}
	return nil
}
