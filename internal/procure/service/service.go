package service

import (
	"github.com/mantispro/satinalma/internal/procure/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the service set assembled at startup.
type Services struct {
	Ledger    *LedgerService
	Tracking  *TrackingService
	Workflow  *WorkflowService
	Request   *RequestService
	RFQ       *RFQService
	Quote     *QuoteService
	Proforma  *ProformaService
	Shipment  *ShipmentService
	Order     *OrderService
	Dashboard *DashboardService
	Report    *ReportService
	Company   *CompanyService
}

// NewServices wires the full service graph. cache may be nil; its absence
// disables the dashboard cache and routes notifications to the log.
func NewServices(db *gorm.DB, repos *repository.Repositories, cache *redis.Client, logger *zap.Logger) *Services {
	var notifier Notifier
	if cache != nil {
		notifier = NewRedisNotifier(cache, "", logger)
	} else {
		notifier = NewLogNotifier(logger)
	}

	ledger := NewLedgerService(db, repos.Sequence, logger)
	tracking := NewTrackingService(db, logger)

	return &Services{
		Ledger:    ledger,
		Tracking:  tracking,
		Workflow:  NewWorkflowService(db, repos, ledger, tracking, notifier, logger),
		Request:   NewRequestService(db, repos, logger),
		RFQ:       NewRFQService(db, repos, notifier, logger),
		Quote:     NewQuoteService(db, repos, logger),
		Proforma:  NewProformaService(db, repos, tracking, notifier, logger),
		Shipment:  NewShipmentService(db, repos, notifier, logger),
		Order:     NewOrderService(db, repos, notifier, logger),
		Dashboard: NewDashboardService(db, cache, logger),
		Report:    NewReportService(db, logger),
		Company:   NewCompanyService(db, repos),
	}
}
