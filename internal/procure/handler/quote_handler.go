package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// QuoteHandler serves quote intake, evaluation and selection.
type QuoteHandler struct {
	svc *service.QuoteService
}

func NewQuoteHandler(svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

func (h *QuoteHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "rfq_id", "supplier_id")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, items, page, pageSize, total)
}

func (h *QuoteHandler) Get(c *gin.Context) {
	quote, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, quote)
}

// Create records a supplier quote against the RFQ in the path.
func (h *QuoteHandler) Create(c *gin.Context) {
	var input service.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	quote, err := h.svc.Create(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, quote)
}

func (h *QuoteHandler) Evaluate(c *gin.Context) {
	var input service.EvaluationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	quote, err := h.svc.Evaluate(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, quote)
}

func (h *QuoteHandler) Select(c *gin.Context) {
	quote, err := h.svc.Select(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, quote)
}
