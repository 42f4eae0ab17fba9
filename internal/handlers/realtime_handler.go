package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/realtime"
)

// RealtimeHandler upgrades authenticated requests to a websocket change feed
type RealtimeHandler struct {
	hub      *realtime.Hub
	policy   realtime.Policy
	upgrader websocket.Upgrader
	baseCtx  context.Context
	log      *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler. Sessions end when baseCtx
// is done.
func NewRealtimeHandler(baseCtx context.Context, hub *realtime.Hub, log *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		policy: realtime.DefaultPolicy,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		baseCtx: baseCtx,
		log:     log.With(zap.String("component", "realtime")),
	}
}

// RegisterRealtimeRoutes registers the websocket endpoint
func (h *RealtimeHandler) RegisterRealtimeRoutes(g *echo.Group) {
	g.GET("/realtime", h.Connect)
}

// Connect serves one websocket session until the client disconnects
func (h *RealtimeHandler) Connect(c echo.Context) error {
	userID := getUserIDFromContext(c)
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithCancel(h.baseCtx)
	defer cancel()
	go func() {
		select {
		case <-c.Request().Context().Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	realtime.NewSession(conn, h.hub, userID, h.policy, h.log).Serve(ctx)
	return nil
}
