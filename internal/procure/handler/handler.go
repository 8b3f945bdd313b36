package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// Handlers is the handler set wired into the router.
type Handlers struct {
	Request   *RequestHandler
	RFQ       *RFQHandler
	Quote     *QuoteHandler
	Workflow  *WorkflowHandler
	Proforma  *ProformaHandler
	Shipment  *ShipmentHandler
	Order     *OrderHandler
	Finance   *FinanceHandler
	Tracking  *TrackingHandler
	Dashboard *DashboardHandler
	Company   *CompanyHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Request:   NewRequestHandler(svc.Request),
		RFQ:       NewRFQHandler(svc.RFQ),
		Quote:     NewQuoteHandler(svc.Quote),
		Workflow:  NewWorkflowHandler(svc.Workflow),
		Proforma:  NewProformaHandler(svc.Proforma),
		Shipment:  NewShipmentHandler(svc.Shipment),
		Order:     NewOrderHandler(svc.Order),
		Finance:   NewFinanceHandler(svc.Workflow, svc.Report),
		Tracking:  NewTrackingHandler(svc.Tracking),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Company:   NewCompanyHandler(svc.Company),
	}
}

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps a paged collection.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

func List(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Error replies with an application code whose first three digits are the
// HTTP status.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// workflowErrorCodes maps the typed workflow failures onto response codes.
var workflowErrorCodes = map[string]int{
	service.CodeInvalidAmount:       40000,
	service.CodeNotFound:            40400,
	service.CodePreconditionFailed:  40900,
	service.CodeInvalidTransition:   40910,
	service.CodeAlreadyDecided:      40920,
	service.CodeConcurrencyConflict: 40930,
	service.CodeConstraintViolation: 42200,
}

// Fail maps a service error to a response. Typed workflow errors keep
// their code and detail; everything else is an internal error.
func Fail(c *gin.Context, err error) {
	if we := service.AsWorkflowError(err); we != nil {
		code, ok := workflowErrorCodes[we.Code]
		if !ok {
			code = 50000
		}
		c.JSON(code/100, Response{
			Code:    code,
			Message: we.Error(),
			Data: gin.H{
				"error_code": we.Code,
				"entity":     we.Entity,
				"entity_id":  we.EntityID,
				"detail":     we.Detail,
			},
		})
		return
	}
	InternalError(c, err.Error())
}

// GetUserID reads the authenticated user id set by the JWT middleware.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads page/page_size query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}

// GetFilters collects the named query params into a filter map.
func GetFilters(c *gin.Context, names ...string) map[string]string {
	filters := make(map[string]string, len(names))
	for _, name := range names {
		if v := c.Query(name); v != "" {
			filters[name] = v
		}
	}
	return filters
}
