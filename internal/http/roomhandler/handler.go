package roomhandler

import (
	"errors"
	"net/http"
	"roomrelay/internal/services/room"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc room.IRoomService
}

func New(svc room.IRoomService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/debug", h.debug)
	r.GET("/rooms", h.list)
	r.GET("/rooms/:id/messages", h.history)
}

// @Summary		Debug snapshot
// @Description	Live rooms, open connections and message store health. Diagnostic only.
// @Tags			Debug
// @Success		200	{object}	room.DebugDTO
// @Failure		503	{object}	ErrorResponse
// @Router			/debug [get]
func (h *Handler) debug(c *gin.Context) {
	dto, err := h.svc.Debug(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

// @Summary		List rooms
// @Description	Current rooms with their members, in creation order.
// @Tags			Rooms
// @Success		200	{array}		chat.Room
// @Failure		503	{object}	ErrorResponse
// @Router			/rooms [get]
func (h *Handler) list(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// @Summary		Room history
// @Description	Latest stored messages of a room, oldest first.
// @Tags			Rooms
// @Param			id		path		string	true	"Room ID"				default(123456)
// @Param			limit	query		int		false	"Max results (0‑200)"	minimum(0)	maximum(200)	default(50)
// @Success		200		{array}		chat.Message
// @Failure		400		{object}	ErrorResponse
// @Failure		500		{object}	ErrorResponse
// @Failure		501		{object}	ErrorResponse
// @Router			/rooms/{id}/messages [get]
func (h *Handler) history(c *gin.Context) {
	var uri HistoryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	msgs, err := h.svc.History(c.Request.Context(), uri.RoomID, q.Limit)
	if err != nil {
		if errors.Is(err, room.ErrHistoryUnsupported) {
			c.JSON(http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
			return
		}
		zap.L().Error("http.history", zap.String("room", uri.RoomID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}
