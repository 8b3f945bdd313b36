package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkflowService composes the multi-entity procurement operations. Each
// operation is one transaction boundary; notification events fire only
// after the commit.
type WorkflowService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	ledger   *LedgerService
	tracking *TrackingService
	notifier Notifier
	logger   *zap.Logger
}

func NewWorkflowService(db *gorm.DB, repos *repository.Repositories, ledger *LedgerService, tracking *TrackingService, notifier Notifier, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		db:       db,
		repos:    repos,
		ledger:   ledger,
		tracking: tracking,
		notifier: notifier,
		logger:   logger,
	}
}

// retryBackoff is the single internal retry delay on lock contention.
const retryBackoff = 5 * time.Millisecond

// isConcurrencyConflict reports lock contention surfaced by the database.
func isConcurrencyConflict(err error) bool {
	if err == nil {
		return false
	}
	if IsCode(err, CodeConcurrencyConflict) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}

// runTx executes fn in a transaction, retrying once on lock contention
// before surfacing the conflict to the caller.
func (s *WorkflowService) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if !isConcurrencyConflict(err) {
		return err
	}

	s.logger.Warn("transaction hit lock contention, retrying once", zap.Error(err))
	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return ctx.Err()
	}

	err = s.db.WithContext(ctx).Transaction(fn)
	if err != nil && isConcurrencyConflict(err) && AsWorkflowError(err) == nil {
		return ErrConcurrency("transaction", "", err.Error())
	}
	return err
}

func (s *WorkflowService) notify(ctx context.Context, eventType, entityID, trackingID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, Event{
		Type:       eventType,
		EntityID:   entityID,
		TrackingID: trackingID,
		Timestamp:  time.Now(),
	})
}

// RFQInput carries the commercial terms of a new RFQ.
type RFQInput struct {
	SupplierIDs   []string   `json:"supplier_ids"`
	Deadline      *time.Time `json:"deadline"`
	PaymentTerms  string     `json:"payment_terms"`
	DeliveryTerms string     `json:"delivery_terms"`
}

// CreateRFQFromRequest opens an RFQ for an approved request, copying its
// line items, and moves the request to rfq_created.
func (s *WorkflowService) CreateRFQFromRequest(ctx context.Context, requestID string, input RFQInput, createdBy string) (*entity.RFQ, error) {
	var rfq *entity.RFQ
	var trackingID string
	err := s.runTx(ctx, func(tx *gorm.DB) error {
		var request entity.Request
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).Where("id = ?", requestID).First(&request).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("request", requestID)
			}
			return err
		}

		if request.Status != entity.RequestStatusApproved {
			return ErrPrecondition("request", requestID,
				"rfq creation requires an approved request, status is "+string(request.Status))
		}
		trackingID = request.TrackingID

		number, err := s.repos.Sequence.Next(tx, entity.DocTypeRFQ)
		if err != nil {
			return err
		}

		rfq = &entity.RFQ{
			ID:            uuid.New().String()[:32],
			RFQNumber:     number,
			RequestID:     &request.ID,
			Title:         request.Title,
			Status:        entity.RFQStatusDraft,
			Deadline:      input.Deadline,
			PaymentTerms:  input.PaymentTerms,
			DeliveryTerms: input.DeliveryTerms,
			CreatedBy:     createdBy,
		}
		for i, item := range request.Items {
			itemID := item.ID
			rfq.Items = append(rfq.Items, entity.RFQItem{
				ID:            uuid.New().String()[:32],
				RFQID:         rfq.ID,
				RequestItemID: &itemID,
				ProductName:   item.ProductName,
				Quantity:      item.Quantity,
				Unit:          item.Unit,
				Brand:         item.Brand,
				SortOrder:     i,
			})
		}
		if err := tx.Create(rfq).Error; err != nil {
			return err
		}

		next, err := NextRequestStatus(request.Status, EventCreateRFQ, request.ID)
		if err != nil {
			return err
		}
		request.Status = next
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "rfq.created", rfq.ID, trackingID)
	return rfq, nil
}

// DeliveryInput carries the delivery terms of a new purchase order.
type DeliveryInput struct {
	Address string     `json:"address"`
	Date    *time.Time `json:"date"`
	Terms   string     `json:"terms"`
}

// CreatePurchaseOrderFromQuote places an order with the supplier of a
// selected quote: PO items are copied from the quote, an initial shipment
// is opened in preparing, the RFQ completes, and the originating request
// moves to order_placed.
func (s *WorkflowService) CreatePurchaseOrderFromQuote(ctx context.Context, quoteID string, delivery DeliveryInput, createdBy string) (*entity.PurchaseOrder, error) {
	var po *entity.PurchaseOrder
	err := s.runTx(ctx, func(tx *gorm.DB) error {
		var quote entity.Quote
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).Where("id = ?", quoteID).First(&quote).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("quote", quoteID)
			}
			return err
		}

		if quote.Status != entity.QuoteStatusSelected {
			return ErrPrecondition("quote", quoteID,
				"purchase order requires a selected quote, status is "+string(quote.Status))
		}

		var rfq entity.RFQ
		if err := tx.Where("id = ?", quote.RFQID).First(&rfq).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("rfq", quote.RFQID)
			}
			return err
		}
		if rfq.RequestID == nil {
			return ErrPrecondition("rfq", rfq.ID, "rfq has no originating request")
		}

		var request entity.Request
		if err := tx.Where("id = ?", *rfq.RequestID).First(&request).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("request", *rfq.RequestID)
			}
			return err
		}

		poNumber, err := s.repos.Sequence.Next(tx, entity.DocTypePO)
		if err != nil {
			return err
		}

		selectedQuoteID := quote.ID
		po = &entity.PurchaseOrder{
			ID:              uuid.New().String()[:32],
			PONumber:        poNumber,
			RequestID:       request.ID,
			SupplierID:      quote.SupplierID,
			QuoteID:         &selectedQuoteID,
			Status:          entity.POStatusDraft,
			Currency:        quote.Currency,
			TrackingID:      request.TrackingID,
			DeliveryAddress: delivery.Address,
			DeliveryDate:    delivery.Date,
			Terms:           delivery.Terms,
			CreatedBy:       createdBy,
		}
		var total float64
		for i, item := range quote.Items {
			itemID := item.ID
			po.Items = append(po.Items, entity.PurchaseOrderItem{
				ID:              uuid.New().String()[:32],
				PurchaseOrderID: po.ID,
				QuoteItemID:     &itemID,
				ProductName:     item.ProductName,
				Quantity:        item.Quantity,
				Unit:            item.Unit,
				UnitPrice:       item.UnitPrice,
				TotalPrice:      item.TotalPrice,
				Currency:        item.Currency,
				SortOrder:       i,
			})
			total += item.TotalPrice
		}
		po.TotalAmount = round2(total)
		if err := tx.Create(po).Error; err != nil {
			return err
		}

		shipmentNumber, err := s.repos.Sequence.Next(tx, entity.DocTypeShipment)
		if err != nil {
			return err
		}
		shipment := entity.Shipment{
			ID:              uuid.New().String()[:32],
			ShipmentNumber:  shipmentNumber,
			PurchaseOrderID: po.ID,
			Status:          entity.ShipmentStatusPreparing,
			Destination:     delivery.Address,
			TrackingID:      request.TrackingID,
			CreatedBy:       createdBy,
		}
		if err := tx.Create(&shipment).Error; err != nil {
			return err
		}
		po.Shipments = append(po.Shipments, shipment)

		nextRFQ, err := NextRFQStatus(rfq.Status, EventComplete, rfq.ID)
		if err != nil {
			return err
		}
		rfq.Status = nextRFQ
		if err := tx.Save(&rfq).Error; err != nil {
			return err
		}

		nextReq, err := NextRequestStatus(request.Status, EventPlaceOrder, request.ID)
		if err != nil {
			return err
		}
		request.Status = nextReq
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "purchase_order.created", po.ID, po.TrackingID)
	return po, nil
}

// InvoiceInput carries the billing fields of a delivery invoice.
type InvoiceInput struct {
	TaxRate               float64    `json:"tax_rate"`
	DueDate               *time.Time `json:"due_date"`
	SupplierInvoiceNumber string     `json:"supplier_invoice_number"`
	PaymentTerms          string     `json:"payment_terms"`
}

// CreateInvoiceFromDelivery bills a delivered shipment. The subtotal is the
// owning purchase order's total; tax and totals follow the ledger rules and
// the invoice opens approved with the full balance remaining.
func (s *WorkflowService) CreateInvoiceFromDelivery(ctx context.Context, shipmentID string, input InvoiceInput, createdBy string) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := s.runTx(ctx, func(tx *gorm.DB) error {
		var shipment entity.Shipment
		if err := tx.Where("id = ?", shipmentID).First(&shipment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("shipment", shipmentID)
			}
			return err
		}

		if shipment.Status != entity.ShipmentStatusDelivered {
			return ErrPrecondition("shipment", shipmentID,
				"invoicing requires a delivered shipment, status is "+string(shipment.Status))
		}

		var po entity.PurchaseOrder
		if err := tx.Where("id = ?", shipment.PurchaseOrderID).First(&po).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("purchase_order", shipment.PurchaseOrderID)
			}
			return err
		}

		number, err := s.repos.Sequence.Next(tx, entity.DocTypeInvoice)
		if err != nil {
			return err
		}

		subtotal := round2(po.TotalAmount)
		taxAmount, totalAmount := RecomputeTotals(subtotal, input.TaxRate)
		now := time.Now()
		shipID := shipment.ID
		invoice = &entity.Invoice{
			ID:                    uuid.New().String()[:32],
			InvoiceNumber:         number,
			PurchaseOrderID:       po.ID,
			ShipmentID:            &shipID,
			Status:                entity.InvoiceStatusApproved,
			SupplierInvoiceNumber: input.SupplierInvoiceNumber,
			InvoiceDate:           &now,
			DueDate:               input.DueDate,
			Subtotal:              subtotal,
			TaxRate:               input.TaxRate,
			TaxAmount:             taxAmount,
			TotalAmount:           totalAmount,
			PaidAmount:            0,
			RemainingAmount:       totalAmount,
			Currency:              po.Currency,
			PaymentTerms:          input.PaymentTerms,
			TrackingID:            po.TrackingID,
			CreatedBy:             createdBy,
		}
		return tx.Create(invoice).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "invoice.created", invoice.ID, invoice.TrackingID)
	return invoice, nil
}

// ProcessPayment settles amount against the invoice through the ledger.
// When the invoice becomes fully paid and no sibling invoice of the owning
// request remains open, the request completes.
func (s *WorkflowService) ProcessPayment(ctx context.Context, invoiceID string, amount float64, method, reference, createdBy string) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	var requestCompleted string
	err := s.runTx(ctx, func(tx *gorm.DB) error {
		requestCompleted = ""
		var err error
		invoice, err = s.ledger.ApplyPaymentTx(tx, invoiceID, amount, method, reference, createdBy)
		if err != nil {
			return err
		}
		if invoice.Status != entity.InvoiceStatusPaid {
			return nil
		}

		var po entity.PurchaseOrder
		if err := tx.Where("id = ?", invoice.PurchaseOrderID).First(&po).Error; err != nil {
			return err
		}
		var request entity.Request
		if err := tx.Where("id = ?", po.RequestID).First(&request).Error; err != nil {
			return err
		}
		if request.Status != entity.RequestStatusOrderPlaced {
			return nil
		}

		// Any other invoice of the request's orders still carrying a
		// balance keeps the request open.
		var open int64
		err = tx.Model(&entity.Invoice{}).
			Joins("JOIN proc_purchase_orders ON proc_purchase_orders.id = proc_invoices.purchase_order_id").
			Where("proc_purchase_orders.request_id = ?", request.ID).
			Where("proc_invoices.status NOT IN ?", []entity.InvoiceStatus{
				entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled,
			}).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return nil
		}

		next, err := NextRequestStatus(request.Status, EventComplete, request.ID)
		if err != nil {
			return err
		}
		request.Status = next
		if err := tx.Save(&request).Error; err != nil {
			return err
		}
		requestCompleted = request.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "payment.applied", invoice.ID, invoice.TrackingID)
	if invoice.Status == entity.InvoiceStatusPaid {
		s.notify(ctx, "invoice.paid", invoice.ID, invoice.TrackingID)
	}
	if requestCompleted != "" {
		s.notify(ctx, "request.completed", requestCompleted, invoice.TrackingID)
	}
	return invoice, nil
}

// WorkflowStatus is the read-only aggregate view of one procurement case.
type WorkflowStatus struct {
	Request        *entity.Request        `json:"request"`
	RFQs           []entity.RFQ           `json:"rfqs"`
	Quotes         []entity.Quote         `json:"quotes"`
	PurchaseOrders []entity.PurchaseOrder `json:"purchase_orders"`
	Shipments      []entity.Shipment      `json:"shipments"`
	Invoices       []entity.Invoice       `json:"invoices"`
	Payments       []entity.Payment       `json:"payments"`
}

// GetWorkflowStatus assembles the full state of a request's case with
// explicit queries. No mutation, no locking.
func (s *WorkflowService) GetWorkflowStatus(ctx context.Context, requestID string) (*WorkflowStatus, error) {
	request, err := s.repos.Request.FindByID(ctx, requestID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("request", requestID)
		}
		return nil, err
	}

	db := s.db.WithContext(ctx)
	status := &WorkflowStatus{Request: request}

	if err := db.Where("request_id = ?", requestID).Find(&status.RFQs).Error; err != nil {
		return nil, err
	}
	if len(status.RFQs) > 0 {
		rfqIDs := make([]string, 0, len(status.RFQs))
		for _, rfq := range status.RFQs {
			rfqIDs = append(rfqIDs, rfq.ID)
		}
		if err := db.Where("rfq_id IN ?", rfqIDs).Find(&status.Quotes).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Where("request_id = ?", requestID).Find(&status.PurchaseOrders).Error; err != nil {
		return nil, err
	}
	if len(status.PurchaseOrders) > 0 {
		poIDs := make([]string, 0, len(status.PurchaseOrders))
		for _, po := range status.PurchaseOrders {
			poIDs = append(poIDs, po.ID)
		}
		if err := db.Where("purchase_order_id IN ?", poIDs).Find(&status.Shipments).Error; err != nil {
			return nil, err
		}
		if err := db.Where("purchase_order_id IN ?", poIDs).Find(&status.Invoices).Error; err != nil {
			return nil, err
		}
	}
	if len(status.Invoices) > 0 {
		invoiceIDs := make([]string, 0, len(status.Invoices))
		for _, inv := range status.Invoices {
			invoiceIDs = append(invoiceIDs, inv.ID)
		}
		if err := db.Where("invoice_id IN ?", invoiceIDs).Find(&status.Payments).Error; err != nil {
			return nil, err
		}
	}

	return status, nil
}
