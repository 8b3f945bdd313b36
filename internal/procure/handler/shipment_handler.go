package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// ShipmentHandler serves shipment progression.
type ShipmentHandler struct {
	svc *service.ShipmentService
}

func NewShipmentHandler(svc *service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc}
}

func (h *ShipmentHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "purchase_order_id", "tracking_id")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, items, page, pageSize, total)
}

func (h *ShipmentHandler) Get(c *gin.Context) {
	shipment, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, shipment)
}

func (h *ShipmentHandler) Ship(c *gin.Context) {
	var input service.ShipInput
	_ = c.ShouldBindJSON(&input)
	shipment, err := h.svc.Ship(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, shipment)
}

func (h *ShipmentHandler) MarkInTransit(c *gin.Context) {
	shipment, err := h.svc.MarkInTransit(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, shipment)
}

func (h *ShipmentHandler) Deliver(c *gin.Context) {
	shipment, err := h.svc.Deliver(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, shipment)
}
