package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// OrderHandler serves purchase order progression.
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "supplier_id", "tracking_id")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, items, page, pageSize, total)
}

func (h *OrderHandler) Get(c *gin.Context) {
	po, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, po)
}

func (h *OrderHandler) Send(c *gin.Context) {
	h.advance(c, service.EventSend)
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	h.advance(c, service.EventConfirm)
}

func (h *OrderHandler) BeginProduction(c *gin.Context) {
	h.advance(c, service.EventBeginProduction)
}

func (h *OrderHandler) advance(c *gin.Context, event string) {
	po, err := h.svc.Advance(c.Request.Context(), c.Param("id"), event)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, po)
}
