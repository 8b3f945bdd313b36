package service

import (
	"context"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShipmentService manages shipment progression. Delivering the last open
// shipment of a purchase order advances the order itself to delivered.
type ShipmentService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	notifier Notifier
	logger   *zap.Logger
}

func NewShipmentService(db *gorm.DB, repos *repository.Repositories, notifier Notifier, logger *zap.Logger) *ShipmentService {
	return &ShipmentService{db: db, repos: repos, notifier: notifier, logger: logger}
}

// ShipInput carries the carrier details recorded when a shipment leaves.
type ShipInput struct {
	Carrier               string     `json:"carrier"`
	TrackingNumber        string     `json:"tracking_number"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
}

// Ship marks a preparing shipment as shipped. The owning purchase order is
// advanced to shipped when its state allows it.
func (s *ShipmentService) Ship(ctx context.Context, shipmentID string, input ShipInput) (*entity.Shipment, error) {
	return s.advance(ctx, shipmentID, EventShip, func(shipment *entity.Shipment) {
		now := time.Now()
		shipment.ShippedAt = &now
		if input.Carrier != "" {
			shipment.Carrier = input.Carrier
		}
		if input.TrackingNumber != "" {
			shipment.TrackingNumber = input.TrackingNumber
		}
		if input.EstimatedDeliveryDate != nil {
			shipment.EstimatedDeliveryDate = input.EstimatedDeliveryDate
		}
	})
}

// MarkInTransit records a shipped shipment as in transit.
func (s *ShipmentService) MarkInTransit(ctx context.Context, shipmentID string) (*entity.Shipment, error) {
	return s.advance(ctx, shipmentID, EventTransit, nil)
}

// Deliver marks a shipment as delivered.
func (s *ShipmentService) Deliver(ctx context.Context, shipmentID string) (*entity.Shipment, error) {
	return s.advance(ctx, shipmentID, EventDeliver, func(shipment *entity.Shipment) {
		now := time.Now()
		shipment.ActualDeliveryDate = &now
	})
}

func (s *ShipmentService) advance(ctx context.Context, shipmentID, event string, mutate func(*entity.Shipment)) (*entity.Shipment, error) {
	var shipment *entity.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sh entity.Shipment
		if err := tx.Where("id = ?", shipmentID).First(&sh).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("shipment", shipmentID)
			}
			return err
		}

		next, err := NextShipmentStatus(sh.Status, event, sh.ID)
		if err != nil {
			return err
		}
		sh.Status = next
		if mutate != nil {
			mutate(&sh)
		}
		if err := tx.Save(&sh).Error; err != nil {
			return err
		}

		if err := s.syncOrder(tx, sh.PurchaseOrderID, event); err != nil {
			return err
		}
		shipment = &sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, Event{
			Type:       "shipment." + event,
			EntityID:   shipment.ID,
			TrackingID: shipment.TrackingID,
			Timestamp:  time.Now(),
		})
	}
	return shipment, nil
}

// syncOrder mirrors shipment progress onto the owning purchase order: the
// first shipment leaving moves a production order to shipped, and the last
// delivery moves a shipped order to delivered. Orders whose state does not
// permit the mirror event are left alone.
func (s *ShipmentService) syncOrder(tx *gorm.DB, poID, event string) error {
	var po entity.PurchaseOrder
	if err := tx.Where("id = ?", poID).First(&po).Error; err != nil {
		return err
	}

	switch event {
	case EventShip:
		next, ok := transition(poTransitions, po.Status, EventShip)
		if !ok {
			return nil
		}
		po.Status = next
	case EventDeliver:
		var open int64
		err := tx.Model(&entity.Shipment{}).
			Where("purchase_order_id = ? AND status <> ?", poID, entity.ShipmentStatusDelivered).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return nil
		}
		next, ok := transition(poTransitions, po.Status, EventAllShipmentsDelivered)
		if !ok {
			return nil
		}
		po.Status = next
	default:
		return nil
	}

	return tx.Save(&po).Error
}

// Get loads one shipment with its items.
func (s *ShipmentService) Get(ctx context.Context, shipmentID string) (*entity.Shipment, error) {
	shipment, err := s.repos.Shipment.FindByID(ctx, shipmentID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("shipment", shipmentID)
		}
		return nil, err
	}
	return shipment, nil
}

// List pages over shipments with optional filters.
func (s *ShipmentService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Shipment, int64, error) {
	return s.repos.Shipment.FindAll(ctx, page, pageSize, filters)
}
