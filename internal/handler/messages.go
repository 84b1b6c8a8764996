package handlers

import (
	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/response"
	"HelpBeacon/pkg/sse"

	"github.com/gin-gonic/gin"
)

// handlePostMessage POST /messages
func (h *Handlers) handlePostMessage(c *gin.Context) {
	var form models.PublicMessageForm
	if err := bindJSON(c, &form); err != nil {
		h.observe("message.post", err)
		response.Fail(c, err)
		return
	}
	msg, err := h.stores.Messages.Post(form)
	h.observe("message.post", err)
	if err != nil {
		response.Fail(c, err)
		return
	}

	p := msg.Point()
	h.publish(sse.Event{Type: sse.EventMessage, Data: msg, Point: &p})
	response.Success(c, "message", msg)
}

// handleNearbyMessages GET /messages?lat&lng&radiusKm，按时间正序
func (h *Handlers) handleNearbyMessages(c *gin.Context) {
	q, err := parseNearby(c, "")
	if err != nil {
		h.observe("message.nearby", err)
		response.Fail(c, err)
		return
	}
	msgs, err := h.stores.Messages.Nearby(q)
	h.observe("message.nearby", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Data(c, msgs)
}
