package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// TrackingHandler serves tracking id lookups.
type TrackingHandler struct {
	svc *service.TrackingService
}

func NewTrackingHandler(svc *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{svc: svc}
}

// Lookup returns every record carrying the tracking id in the path.
func (h *TrackingHandler) Lookup(c *gin.Context) {
	result, err := h.svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// History returns the phase timeline of the case behind the tracking id.
func (h *TrackingHandler) History(c *gin.Context) {
	result, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}
