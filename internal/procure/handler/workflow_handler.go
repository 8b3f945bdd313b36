package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// WorkflowHandler serves the composite procurement operations.
type WorkflowHandler struct {
	svc *service.WorkflowService
}

func NewWorkflowHandler(svc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// CreateRFQ opens an RFQ from the approved request in the path.
func (h *WorkflowHandler) CreateRFQ(c *gin.Context) {
	var input service.RFQInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	rfq, err := h.svc.CreateRFQFromRequest(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, rfq)
}

// CreatePurchaseOrder places an order from the selected quote in the path.
func (h *WorkflowHandler) CreatePurchaseOrder(c *gin.Context) {
	var input service.DeliveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	po, err := h.svc.CreatePurchaseOrderFromQuote(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, po)
}

// CreateInvoice bills the delivered shipment in the path.
func (h *WorkflowHandler) CreateInvoice(c *gin.Context) {
	var input service.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	invoice, err := h.svc.CreateInvoiceFromDelivery(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, invoice)
}

// Status returns the aggregate view of one request's procurement case.
func (h *WorkflowHandler) Status(c *gin.Context) {
	status, err := h.svc.GetWorkflowStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, status)
}
