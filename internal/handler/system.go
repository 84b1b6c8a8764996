package handlers

import (
	"net/http"
	"strings"

	"HelpBeacon/pkg/errors"
	"HelpBeacon/pkg/response"
	"HelpBeacon/pkg/sse"
	"HelpBeacon/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// handleLiveness GET /
func (h *Handlers) handleLiveness(c *gin.Context) {
	c.String(http.StatusOK, "HelpBeacon backend is running")
}

// HealthCheck 健康检查接口，附带各注册表的当前大小（不触发清理）
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"registries": h.stores.Sizes(),
	})
}

// handleStream GET /stream?lat&lng&radiusKm&alertId&clientId
func (h *Handlers) handleStream(c *gin.Context) {
	sub, err := parseSubscription(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.opts.Hub.Serve(c, sub)
}

// handleWebSocket GET /ws，参数与 /stream 相同
func (h *Handlers) handleWebSocket(c *gin.Context) {
	sub, err := parseSubscription(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	websocket.HandleWebSocket(h.opts.Hub, h.opts.WebSocket, c.Writer, c.Request, sub)
}

// parseSubscription 坐标和 alertId 至少提供一个
func parseSubscription(c *gin.Context) (sse.Subscription, error) {
	sub := sse.Subscription{
		Label:    c.Query("clientId"),
		RadiusKm: parseRadius(c.Query("radiusKm")),
	}

	hasCoords := strings.TrimSpace(c.Query("lat")) != "" || strings.TrimSpace(c.Query("lng")) != ""
	if hasCoords {
		center, ok := parsePoint(c)
		if !ok {
			return sse.Subscription{}, errors.Validation("lat and lng must be numbers")
		}
		sub.Center = &center
	}
	if alertID := strings.TrimSpace(c.Query("alertId")); alertID != "" {
		sub.Groups = []string{alertID}
	}
	if sub.Center == nil && len(sub.Groups) == 0 {
		return sse.Subscription{}, errors.Validation("lat/lng or alertId is required")
	}
	return sub, nil
}
