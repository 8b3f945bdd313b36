package service

import (
	"context"
	"errors"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TrackingService propagates an accepted proforma's number down the
// Request -> PurchaseOrder -> {Shipment, Invoice} -> Payment graph so that
// every record of a procurement case carries one tracking id. All updates
// run in one transaction; a partial propagation never survives.
type TrackingService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTrackingService(db *gorm.DB, logger *zap.Logger) *TrackingService {
	return &TrackingService{db: db, logger: logger}
}

// Promote rewrites the tracking id of the request and every descendant to
// newTrackingID, the accepted proforma's number. Returns the count of rows
// updated. Idempotent: a second run with the same id reports zero.
func (s *TrackingService) Promote(ctx context.Context, requestID, newTrackingID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		count, err = s.PromoteTx(tx, requestID, newTrackingID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// PromoteTx runs the promotion inside the caller's transaction. The target
// proforma must exist, be accepted, and be linked to the request through
// its quote's RFQ.
func (s *TrackingService) PromoteTx(tx *gorm.DB, requestID, newTrackingID string) (int64, error) {
	var request entity.Request
	if err := tx.Where("id = ?", requestID).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrEntityNotFound("request", requestID)
		}
		return 0, err
	}

	var proforma entity.ProformaInvoice
	if err := tx.Where("proforma_number = ?", newTrackingID).First(&proforma).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrEntityNotFound("proforma_invoice", newTrackingID)
		}
		return 0, err
	}
	if proforma.Status != entity.ProformaStatusAccepted {
		return 0, ErrPrecondition("proforma_invoice", proforma.ID,
			"tracking promotion requires an accepted proforma, status is "+string(proforma.Status))
	}

	// The proforma must belong to this request via quote -> rfq -> request.
	var linked int64
	err := tx.Model(&entity.Quote{}).
		Joins("JOIN proc_rfqs ON proc_rfqs.id = proc_quotes.rfq_id").
		Where("proc_quotes.id = ? AND proc_rfqs.request_id = ?", proforma.QuoteID, requestID).
		Count(&linked).Error
	if err != nil {
		return 0, err
	}
	if linked == 0 {
		return 0, ErrPrecondition("proforma_invoice", proforma.ID,
			"proforma is not linked to request "+requestID)
	}

	// Collect owned row sets first, then apply batched updates. The
	// tracking_id <> ? filter keeps reruns at zero affected rows.
	var poIDs []string
	if err := tx.Model(&entity.PurchaseOrder{}).
		Where("request_id = ?", requestID).
		Pluck("id", &poIDs).Error; err != nil {
		return 0, err
	}
	var invoiceIDs []string
	if len(poIDs) > 0 {
		if err := tx.Model(&entity.Invoice{}).
			Where("purchase_order_id IN ?", poIDs).
			Pluck("id", &invoiceIDs).Error; err != nil {
			return 0, err
		}
	}

	var total int64

	res := tx.Model(&entity.Request{}).
		Where("id = ? AND (tracking_id <> ? OR tracking_phase <> ?)",
			requestID, newTrackingID, entity.TrackingPhaseProformaApproved).
		Updates(map[string]interface{}{
			"tracking_id":     newTrackingID,
			"proforma_number": newTrackingID,
			"tracking_phase":  entity.TrackingPhaseProformaApproved,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	total += res.RowsAffected

	if len(poIDs) > 0 {
		res = tx.Model(&entity.PurchaseOrder{}).
			Where("id IN ? AND tracking_id <> ?", poIDs, newTrackingID).
			Update("tracking_id", newTrackingID)
		if res.Error != nil {
			return 0, res.Error
		}
		total += res.RowsAffected

		res = tx.Model(&entity.Shipment{}).
			Where("purchase_order_id IN ? AND tracking_id <> ?", poIDs, newTrackingID).
			Update("tracking_id", newTrackingID)
		if res.Error != nil {
			return 0, res.Error
		}
		total += res.RowsAffected

		res = tx.Model(&entity.Invoice{}).
			Where("purchase_order_id IN ? AND tracking_id <> ?", poIDs, newTrackingID).
			Update("tracking_id", newTrackingID)
		if res.Error != nil {
			return 0, res.Error
		}
		total += res.RowsAffected
	}

	if len(invoiceIDs) > 0 {
		res = tx.Model(&entity.Payment{}).
			Where("invoice_id IN ? AND tracking_id <> ?", invoiceIDs, newTrackingID).
			Update("tracking_id", newTrackingID)
		if res.Error != nil {
			return 0, res.Error
		}
		total += res.RowsAffected
	}

	s.logger.Info("tracking promoted",
		zap.String("request_id", requestID),
		zap.String("tracking_id", newTrackingID),
		zap.Int64("rows", total))

	return total, nil
}

// Lookup returns every record currently carrying trackingID, grouped by
// entity type. Read-only.
func (s *TrackingService) Lookup(ctx context.Context, trackingID string) (map[string]interface{}, error) {
	db := s.db.WithContext(ctx)

	// A request stays findable by its original number after a proforma
	// acceptance rewrote its tracking id.
	var requests []entity.Request
	if err := db.Where("tracking_id = ? OR request_number = ?", trackingID, trackingID).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	effectiveID := trackingID
	if len(requests) == 1 && requests[0].TrackingID != trackingID {
		effectiveID = requests[0].TrackingID
	}

	var orders []entity.PurchaseOrder
	if err := db.Where("tracking_id = ?", effectiveID).Find(&orders).Error; err != nil {
		return nil, err
	}
	var shipments []entity.Shipment
	if err := db.Where("tracking_id = ?", effectiveID).Find(&shipments).Error; err != nil {
		return nil, err
	}
	var invoices []entity.Invoice
	if err := db.Where("tracking_id = ?", effectiveID).Find(&invoices).Error; err != nil {
		return nil, err
	}
	var payments []entity.Payment
	if err := db.Where("tracking_id = ?", effectiveID).Find(&payments).Error; err != nil {
		return nil, err
	}

	if len(requests) == 0 && len(orders) == 0 && len(shipments) == 0 &&
		len(invoices) == 0 && len(payments) == 0 {
		return nil, ErrEntityNotFound("tracking", trackingID)
	}

	return map[string]interface{}{
		"tracking_id":     effectiveID,
		"requests":        requests,
		"purchase_orders": orders,
		"shipments":       shipments,
		"invoices":        invoices,
		"payments":        payments,
	}, nil
}

// TrackingPhaseEntry is one step of a procurement case's timeline.
type TrackingPhaseEntry struct {
	Phase      string     `json:"phase"`
	TrackingID string     `json:"tracking_id"`
	Status     string     `json:"status"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Detail     string     `json:"detail"`
}

// TrackingHistory shows a case's phase timeline, including the tracking id
// handover when a proforma was accepted.
type TrackingHistory struct {
	OriginalRequestID string               `json:"original_request_id"`
	CurrentTrackingID string               `json:"current_tracking_id"`
	TrackingPhase     string               `json:"tracking_phase"`
	History           []TrackingPhaseEntry `json:"history"`
}

// History builds the phase timeline of a case from the timestamps of its
// graph. trackingID may be the original request number or the promoted
// proforma number.
func (s *TrackingService) History(ctx context.Context, trackingID string) (*TrackingHistory, error) {
	db := s.db.WithContext(ctx)

	var request entity.Request
	err := db.Where("request_number = ?", trackingID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Where("tracking_id = ?", trackingID).First(&request).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntityNotFound("tracking", trackingID)
	}
	if err != nil {
		return nil, err
	}

	result := &TrackingHistory{
		OriginalRequestID: request.RequestNumber,
		CurrentTrackingID: request.TrackingID,
		TrackingPhase:     request.TrackingPhase,
	}

	created := request.CreatedAt
	result.History = append(result.History, TrackingPhaseEntry{
		Phase:      "request",
		TrackingID: request.RequestNumber,
		Status:     string(request.Status),
		Timestamp:  &created,
		Detail:     "case opened as " + request.RequestNumber,
	})
	if request.ApprovedAt != nil {
		result.History = append(result.History, TrackingPhaseEntry{
			Phase:      "request_approved",
			TrackingID: request.RequestNumber,
			Status:     string(entity.RequestStatusApproved),
			Timestamp:  request.ApprovedAt,
			Detail:     "request approved",
		})
	}

	if request.ProformaNumber != nil {
		var proforma entity.ProformaInvoice
		err := db.Where("proforma_number = ?", *request.ProformaNumber).First(&proforma).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			proformaCreated := proforma.CreatedAt
			result.History = append(result.History, TrackingPhaseEntry{
				Phase:      "proforma",
				TrackingID: proforma.ProformaNumber,
				Status:     string(proforma.Status),
				Timestamp:  &proformaCreated,
				Detail:     "proforma " + proforma.ProformaNumber + " issued",
			})
			if proforma.Status == entity.ProformaStatusAccepted {
				result.History = append(result.History, TrackingPhaseEntry{
					Phase:      "proforma_approved",
					TrackingID: proforma.ProformaNumber,
					Status:     string(proforma.Status),
					Timestamp:  proforma.AcceptedAt,
					Detail:     "tracking id changed " + request.RequestNumber + " -> " + proforma.ProformaNumber,
				})
			}
		}
	}

	var orders []entity.PurchaseOrder
	if err := db.Where("request_id = ?", request.ID).
		Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, po := range orders {
		poCreated := po.CreatedAt
		result.History = append(result.History, TrackingPhaseEntry{
			Phase:      "purchase_order",
			TrackingID: po.TrackingID,
			Status:     string(po.Status),
			Timestamp:  &poCreated,
			Detail:     "purchase order " + po.PONumber + " placed",
		})

		var shipments []entity.Shipment
		if err := db.Where("purchase_order_id = ?", po.ID).
			Order("created_at ASC").Find(&shipments).Error; err != nil {
			return nil, err
		}
		for _, shp := range shipments {
			if shp.ShippedAt != nil {
				result.History = append(result.History, TrackingPhaseEntry{
					Phase:      "shipment",
					TrackingID: shp.TrackingID,
					Status:     string(shp.Status),
					Timestamp:  shp.ShippedAt,
					Detail:     "shipment " + shp.ShipmentNumber + " dispatched",
				})
			}
			if shp.Status == entity.ShipmentStatusDelivered {
				result.History = append(result.History, TrackingPhaseEntry{
					Phase:      "shipment_delivered",
					TrackingID: shp.TrackingID,
					Status:     string(shp.Status),
					Timestamp:  shp.ActualDeliveryDate,
					Detail:     "shipment " + shp.ShipmentNumber + " delivered",
				})
			}
		}

		var payments []entity.Payment
		if err := db.
			Joins("JOIN proc_invoices ON proc_invoices.id = proc_payments.invoice_id").
			Where("proc_invoices.purchase_order_id = ?", po.ID).
			Order("proc_payments.created_at ASC").
			Find(&payments).Error; err != nil {
			return nil, err
		}
		for _, pay := range payments {
			payCreated := pay.CreatedAt
			result.History = append(result.History, TrackingPhaseEntry{
				Phase:      "payment",
				TrackingID: pay.TrackingID,
				Status:     string(pay.Status),
				Timestamp:  &payCreated,
				Detail:     "payment " + pay.PaymentNumber + " applied",
			})
		}
	}

	return result, nil
}
