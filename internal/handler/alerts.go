package handlers

import (
	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/logger"
	"HelpBeacon/pkg/response"
	"HelpBeacon/pkg/sse"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleCreateAlert POST /help-alerts
func (h *Handlers) handleCreateAlert(c *gin.Context) {
	var form models.HelpAlertForm
	if err := bindJSON(c, &form); err != nil {
		h.observe("alert.create", err)
		response.Fail(c, err)
		return
	}
	alert, err := h.stores.Alerts.Create(form)
	h.observe("alert.create", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	logger.Debug("help alert created",
		zap.String("alertId", alert.ID),
		zap.String("type", alert.Type),
		zap.String("fromId", alert.FromID))

	p := alert.Point()
	h.publish(sse.Event{Type: sse.EventAlert, Data: alert, Point: &p})
	response.Success(c, "alert", alert)
}

// handleNearbyAlerts GET /help-alerts?lat&lng&radiusKm&excludeId，按时间倒序
func (h *Handlers) handleNearbyAlerts(c *gin.Context) {
	q, err := parseNearby(c, "excludeId")
	if err != nil {
		h.observe("alert.nearby", err)
		response.Fail(c, err)
		return
	}
	alerts, err := h.stores.Alerts.Nearby(q)
	h.observe("alert.nearby", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Data(c, alerts)
}

// handleGetAlert GET /help-alerts/:id
func (h *Handlers) handleGetAlert(c *gin.Context) {
	alert, err := h.stores.Alerts.Get(c.Param("id"))
	h.observe("alert.get", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Data(c, alert)
}

// handleAcceptAlert POST /help-alerts/:id/accept
// 已被接受的警报会被重新分配给新的 helper
func (h *Handlers) handleAcceptAlert(c *gin.Context) {
	var form models.AcceptForm
	if err := bindJSON(c, &form); err != nil {
		h.observe("alert.accept", err)
		response.Fail(c, err)
		return
	}
	alert, err := h.stores.Alerts.Accept(c.Param("id"), form)
	h.observe("alert.accept", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	logger.Debug("help alert accepted",
		zap.String("alertId", alert.ID),
		zap.String("helperId", form.HelperID))

	p := alert.Point()
	h.publish(sse.Event{Type: sse.EventAlertAccepted, Data: alert, Point: &p, Group: alert.ID})
	response.Success(c, "alert", alert)
}

// handleListDirectMessages GET /help-alerts/:id/messages
func (h *Handlers) handleListDirectMessages(c *gin.Context) {
	msgs := h.stores.Direct.List(c.Param("id"))
	h.observe("direct.list", nil)
	response.Data(c, msgs)
}

// handlePostDirectMessage POST /help-alerts/:id/messages
// 不校验警报是否存在
func (h *Handlers) handlePostDirectMessage(c *gin.Context) {
	var form models.DirectMessageForm
	if err := bindJSON(c, &form); err != nil {
		h.observe("direct.post", err)
		response.Fail(c, err)
		return
	}
	msg, err := h.stores.Direct.Post(c.Param("id"), form)
	h.observe("direct.post", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.publish(sse.Event{Type: sse.EventDirectMessage, Data: msg, Group: msg.AlertID})
	response.Success(c, "message", msg)
}
