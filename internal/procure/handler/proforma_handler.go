package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// ProformaHandler serves the proforma invoice lifecycle.
type ProformaHandler struct {
	svc *service.ProformaService
}

func NewProformaHandler(svc *service.ProformaService) *ProformaHandler {
	return &ProformaHandler{svc: svc}
}

func (h *ProformaHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "quote_id", "company_id")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, items, page, pageSize, total)
}

func (h *ProformaHandler) Get(c *gin.Context) {
	proforma, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, proforma)
}

// Create prices the selected quote in the path into a draft proforma.
func (h *ProformaHandler) Create(c *gin.Context) {
	var input service.ProformaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	proforma, err := h.svc.Create(c.Request.Context(), c.Param("id"), input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, proforma)
}

func (h *ProformaHandler) Send(c *gin.Context) {
	proforma, err := h.svc.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, proforma)
}

// Accept records customer acceptance and reports how many records the
// tracking promotion touched.
func (h *ProformaHandler) Accept(c *gin.Context) {
	proforma, promoted, err := h.svc.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"proforma": proforma, "promoted_records": promoted})
}

func (h *ProformaHandler) Reject(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)
	proforma, err := h.svc.Reject(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, proforma)
}
