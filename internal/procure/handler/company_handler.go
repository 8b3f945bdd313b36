package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// CompanyHandler serves the company and supplier directory.
type CompanyHandler struct {
	svc *service.CompanyService
}

func NewCompanyHandler(svc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

func (h *CompanyHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "is_supplier", "search")
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, items, page, pageSize, total)
}

func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, company)
}

func (h *CompanyHandler) Create(c *gin.Context) {
	var input service.CompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	company, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	var input service.CompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	company, err := h.svc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, company)
}
