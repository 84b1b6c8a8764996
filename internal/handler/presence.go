package handlers

import (
	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/response"

	"github.com/gin-gonic/gin"
)

// handleReportPresence POST /presence
func (h *Handlers) handleReportPresence(c *gin.Context) {
	var form models.PresenceReport
	if err := bindJSON(c, &form); err != nil {
		h.observe("presence.report", err)
		response.Fail(c, err)
		return
	}
	err := h.stores.Presence.Report(form)
	h.observe("presence.report", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Ack(c)
}

// handleNearbyUsers GET /nearby-users?lat&lng&radiusKm&selfId
func (h *Handlers) handleNearbyUsers(c *gin.Context) {
	q, err := parseNearby(c, "selfId")
	if err != nil {
		h.observe("presence.nearby", err)
		response.Fail(c, err)
		return
	}
	users, err := h.stores.Presence.Nearby(q)
	h.observe("presence.nearby", err)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Data(c, users)
}
