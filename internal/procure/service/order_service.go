package service

import (
	"context"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService manages purchase order progression with the supplier.
type OrderService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	notifier Notifier
	logger   *zap.Logger
}

func NewOrderService(db *gorm.DB, repos *repository.Repositories, notifier Notifier, logger *zap.Logger) *OrderService {
	return &OrderService{db: db, repos: repos, notifier: notifier, logger: logger}
}

// Advance applies one supplier-side event (send, confirm, begin_production)
// to a purchase order.
func (s *OrderService) Advance(ctx context.Context, poID, event string) (*entity.PurchaseOrder, error) {
	var po *entity.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entity.PurchaseOrder
		if err := tx.Where("id = ?", poID).First(&order).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("purchase_order", poID)
			}
			return err
		}

		next, err := NextPOStatus(order.Status, event, order.ID)
		if err != nil {
			return err
		}
		order.Status = next
		if event == EventSend {
			now := time.Now()
			order.SentAt = &now
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		po = &order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, Event{
			Type:       "purchase_order." + event,
			EntityID:   po.ID,
			TrackingID: po.TrackingID,
			Timestamp:  time.Now(),
		})
	}
	return po, nil
}

// Get loads one purchase order with its items, shipments and invoices.
func (s *OrderService) Get(ctx context.Context, poID string) (*entity.PurchaseOrder, error) {
	po, err := s.repos.PO.FindByIDFull(ctx, poID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("purchase_order", poID)
		}
		return nil, err
	}
	return po, nil
}

// List pages over purchase orders with optional filters.
func (s *OrderService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.repos.PO.FindAll(ctx, page, pageSize, filters)
}
