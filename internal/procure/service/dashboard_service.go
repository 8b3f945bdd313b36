package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "satinalma:dashboard:summary"
	dashboardCacheTTL = 30 * time.Second
)

// DashboardSummary is the read-only aggregation over the whole system.
type DashboardSummary struct {
	Requests       map[string]int64 `json:"requests"`
	RFQs           map[string]int64 `json:"rfqs"`
	Quotes         map[string]int64 `json:"quotes"`
	PurchaseOrders map[string]int64 `json:"purchase_orders"`
	Shipments      map[string]int64 `json:"shipments"`
	Invoices       map[string]int64 `json:"invoices"`

	TotalInvoiced    float64 `json:"total_invoiced"`
	TotalPaid        float64 `json:"total_paid"`
	TotalOutstanding float64 `json:"total_outstanding"`
	OverdueInvoices  int64   `json:"overdue_invoices"`

	GeneratedAt time.Time `json:"generated_at"`
}

// DashboardService serves the summary view. Results are cached in redis
// for a short window; a nil client disables caching.
type DashboardService struct {
	db     *gorm.DB
	cache  *redis.Client
	logger *zap.Logger
}

func NewDashboardService(db *gorm.DB, cache *redis.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, cache: cache, logger: logger}
}

// GetSummary returns status counts per entity type and the invoice money
// aggregates. Reads tolerate in-flight writes; no locks are taken.
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var cached DashboardSummary
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	summary := &DashboardSummary{GeneratedAt: time.Now()}
	var err error

	if summary.Requests, err = s.countByStatus(ctx, &entity.Request{}); err != nil {
		return nil, err
	}
	if summary.RFQs, err = s.countByStatus(ctx, &entity.RFQ{}); err != nil {
		return nil, err
	}
	if summary.Quotes, err = s.countByStatus(ctx, &entity.Quote{}); err != nil {
		return nil, err
	}
	if summary.PurchaseOrders, err = s.countByStatus(ctx, &entity.PurchaseOrder{}); err != nil {
		return nil, err
	}
	if summary.Shipments, err = s.countByStatus(ctx, &entity.Shipment{}); err != nil {
		return nil, err
	}
	if summary.Invoices, err = s.countByStatus(ctx, &entity.Invoice{}); err != nil {
		return nil, err
	}

	type moneyRow struct {
		Invoiced    float64
		Paid        float64
		Outstanding float64
	}
	var money moneyRow
	err = s.db.WithContext(ctx).Model(&entity.Invoice{}).
		Select("COALESCE(SUM(total_amount),0) AS invoiced, COALESCE(SUM(paid_amount),0) AS paid, COALESCE(SUM(remaining_amount),0) AS outstanding").
		Where("status <> ?", entity.InvoiceStatusCancelled).
		Scan(&money).Error
	if err != nil {
		return nil, err
	}
	summary.TotalInvoiced = money.Invoiced
	summary.TotalPaid = money.Paid
	summary.TotalOutstanding = money.Outstanding

	err = s.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?",
			entity.InvoiceStatusApproved, time.Now()).
		Count(&summary.OverdueInvoices).Error
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("cache dashboard summary", zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *DashboardService) countByStatus(ctx context.Context, model interface{}) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(model).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
