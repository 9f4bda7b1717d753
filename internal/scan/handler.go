package scan

import (
	"github.com/gin-gonic/gin"

	"github.com/swiftcheck/backend/pkg/response"
)

// ResolveRequest is the body for POST /scan.
type ResolveRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// Handler validates scanned payloads for the client scanner.
type Handler struct{}

// NewHandler creates a scan handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Resolve handles POST /scan: validates the decoded payload and returns the
// attendee id plus the in-app route to dispatch to. Rejections are 422 so the
// scanner can show "invalid code" and keep scanning.
func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "payload required")
		return
	}
	id, err := ParseCheckInCode(req.Payload)
	if err != nil {
		response.UnprocessableEntity(c, "invalid code")
		return
	}
	response.OK(c, gin.H{
		"attendee_id": id,
		"path":        "/attendee/" + id.String(),
	})
}
