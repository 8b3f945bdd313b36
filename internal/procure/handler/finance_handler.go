package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// FinanceHandler serves payments and finance exports.
type FinanceHandler struct {
	workflow *service.WorkflowService
	report   *service.ReportService
}

func NewFinanceHandler(workflow *service.WorkflowService, report *service.ReportService) *FinanceHandler {
	return &FinanceHandler{workflow: workflow, report: report}
}

// PaymentBody is the settle-invoice request body.
type PaymentBody struct {
	Amount    float64 `json:"amount" binding:"required"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

// Pay settles an amount against the invoice in the path.
func (h *FinanceHandler) Pay(c *gin.Context) {
	var body PaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	invoice, err := h.workflow.ProcessPayment(c.Request.Context(), c.Param("id"), body.Amount, body.Method, body.Reference, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, invoice)
}

// Export streams an xlsx workbook of invoices and payments.
func (h *FinanceHandler) Export(c *gin.Context) {
	filters := GetFilters(c, "status", "tracking_id")
	f, err := h.report.ExportInvoices(c.Request.Context(), filters)
	if err != nil {
		Fail(c, err)
		return
	}

	now := time.Now()
	name := service.ExportFileName("invoices", now.Year(), int(now.Month()), now.Day())
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write export: "+err.Error())
	}
}
