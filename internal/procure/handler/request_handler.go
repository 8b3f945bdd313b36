package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// RequestHandler serves purchase request intake and approval.
type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "tracking_id", "search")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, items, page, pageSize, total)
}

func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, request)
}

func (h *RequestHandler) Create(c *gin.Context) {
	var input service.RequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	request, err := h.svc.Create(c.Request.Context(), input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, request)
}

func (h *RequestHandler) Approve(c *gin.Context) {
	request, err := h.svc.Approve(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, request)
}

func (h *RequestHandler) Reject(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)
	request, err := h.svc.Reject(c.Request.Context(), c.Param("id"), GetUserID(c), body.Reason)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, request)
}
