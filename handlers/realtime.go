package handlers

import (
	"caresaviour/realtime"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades authenticated requests onto the websocket hub.
type RealtimeHandler struct {
	Hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub}
}

// Connect handles GET /ws. The connection joins the room named after the caller.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := realtime.ServeWS(h.Hub, c.Writer, c.Request, caller.ID); err != nil {
		// The upgrader has already written the HTTP error when the handshake fails.
		utils.GetLogger().Warn("websocket join failed",
			zap.String("room", caller.ID), zap.Error(err))
		return
	}
	getLogger(c).Debug("websocket joined", zap.String("room", caller.ID), zap.String("role", string(caller.Role)))
}
