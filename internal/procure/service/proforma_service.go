package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProformaService manages customer-facing proforma invoices derived from
// selected quotes. Acceptance promotes the proforma number to the tracking
// id of the whole case.
type ProformaService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	tracking *TrackingService
	notifier Notifier
	logger   *zap.Logger
}

func NewProformaService(db *gorm.DB, repos *repository.Repositories, tracking *TrackingService, notifier Notifier, logger *zap.Logger) *ProformaService {
	return &ProformaService{db: db, repos: repos, tracking: tracking, notifier: notifier, logger: logger}
}

// ProformaInput creates a proforma from a selected quote.
type ProformaInput struct {
	CompanyID     string     `json:"company_id" binding:"required"`
	ProfitMargin  float64    `json:"profit_margin" binding:"required"`
	TaxRate       float64    `json:"tax_rate"`
	ValidUntil    *time.Time `json:"valid_until"`
	PaymentTerms  string     `json:"payment_terms"`
	DeliveryTerms string     `json:"delivery_terms"`
	Notes         string     `json:"notes"`
}

// Create prices a selected quote's items with the profit markup and opens
// the proforma in draft. Margins below the floor are rejected outright.
func (s *ProformaService) Create(ctx context.Context, quoteID string, input ProformaInput, createdBy string) (*entity.ProformaInvoice, error) {
	if input.ProfitMargin < entity.MinProfitMargin {
		return nil, ErrConstraint("proforma_invoice", "",
			fmt.Sprintf("profit margin %.2f%% is below the %.1f%% minimum", input.ProfitMargin, entity.MinProfitMargin))
	}

	var proforma *entity.ProformaInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
				"proforma requires a selected quote, status is "+string(quote.Status))
		}

		number, err := s.repos.Sequence.Next(tx, entity.DocTypeProforma)
		if err != nil {
			return err
		}

		proforma = &entity.ProformaInvoice{
			ID:             uuid.New().String()[:32],
			ProformaNumber: number,
			QuoteID:        quote.ID,
			CompanyID:      input.CompanyID,
			Status:         entity.ProformaStatusDraft,
			ProfitMargin:   input.ProfitMargin,
			TaxRate:        input.TaxRate,
			Currency:       quote.Currency,
			ValidUntil:     input.ValidUntil,
			PaymentTerms:   input.PaymentTerms,
			DeliveryTerms:  input.DeliveryTerms,
			CreatedBy:      createdBy,
			Notes:          input.Notes,
		}

		markup := 1 + input.ProfitMargin/100
		var subtotal float64
		for i, item := range quote.Items {
			quoteItemID := item.ID
			unitPrice := item.UnitPrice * markup
			lineTotal := round2(item.Quantity * unitPrice)
			proforma.Items = append(proforma.Items, entity.ProformaInvoiceItem{
				ID:                uuid.New().String()[:32],
				ProformaInvoiceID: proforma.ID,
				QuoteItemID:       &quoteItemID,
				ProductName:       item.ProductName,
				Quantity:          item.Quantity,
				Unit:              item.Unit,
				UnitPrice:         unitPrice,
				OriginalUnitPrice: item.UnitPrice,
				LineTotal:         lineTotal,
				SortOrder:         i,
			})
			subtotal += lineTotal
		}
		proforma.Subtotal = round2(subtotal)
		proforma.TaxAmount, proforma.TotalAmount = RecomputeTotals(proforma.Subtotal, input.TaxRate)

		return tx.Create(proforma).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("proforma created",
		zap.String("proforma_id", proforma.ID),
		zap.String("proforma_number", proforma.ProformaNumber),
		zap.Float64("margin", proforma.ProfitMargin))
	return proforma, nil
}

// Send marks a draft proforma as sent to the customer.
func (s *ProformaService) Send(ctx context.Context, proformaID string) (*entity.ProformaInvoice, error) {
	var proforma *entity.ProformaInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p entity.ProformaInvoice
		if err := tx.Where("id = ?", proformaID).First(&p).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("proforma_invoice", proformaID)
			}
			return err
		}

		next, err := NextProformaStatus(p.Status, EventSend, p.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		p.Status = next
		p.SentAt = &now
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		proforma = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, Event{
			Type:      "proforma.sent",
			EntityID:  proforma.ID,
			Timestamp: time.Now(),
		})
	}
	return proforma, nil
}

// Accept records customer acceptance and promotes the proforma number to
// the case's tracking id in the same transaction. A failed promotion rolls
// back the acceptance.
func (s *ProformaService) Accept(ctx context.Context, proformaID string) (*entity.ProformaInvoice, int64, error) {
	var proforma *entity.ProformaInvoice
	var promoted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p entity.ProformaInvoice
		if err := tx.Where("id = ?", proformaID).First(&p).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("proforma_invoice", proformaID)
			}
			return err
		}

		next, err := NextProformaStatus(p.Status, EventAccept, p.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		p.Status = next
		p.AcceptedAt = &now
		if err := tx.Save(&p).Error; err != nil {
			return err
		}

		// Resolve the originating request through quote -> rfq.
		var quote entity.Quote
		if err := tx.Where("id = ?", p.QuoteID).First(&quote).Error; err != nil {
			return err
		}
		var rfq entity.RFQ
		if err := tx.Where("id = ?", quote.RFQID).First(&rfq).Error; err != nil {
			return err
		}
		if rfq.RequestID == nil {
			return ErrPrecondition("proforma_invoice", p.ID,
				"proforma's quote has no originating request")
		}

		promoted, err = s.tracking.PromoteTx(tx, *rfq.RequestID, p.ProformaNumber)
		if err != nil {
			return err
		}
		proforma = &p
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, Event{
			Type:       "proforma.accepted",
			EntityID:   proforma.ID,
			TrackingID: proforma.ProformaNumber,
			Timestamp:  time.Now(),
		})
	}
	return proforma, promoted, nil
}

// Reject records customer rejection.
func (s *ProformaService) Reject(ctx context.Context, proformaID, reason string) (*entity.ProformaInvoice, error) {
	var proforma *entity.ProformaInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p entity.ProformaInvoice
		if err := tx.Where("id = ?", proformaID).First(&p).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("proforma_invoice", proformaID)
			}
			return err
		}

		next, err := NextProformaStatus(p.Status, EventReject, p.ID)
		if err != nil {
			return err
		}
		p.Status = next
		if reason != "" {
			p.Notes = reason
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		proforma = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proforma, nil
}

// Get loads one proforma with its items.
func (s *ProformaService) Get(ctx context.Context, proformaID string) (*entity.ProformaInvoice, error) {
	proforma, err := s.repos.Proforma.FindByID(ctx, proformaID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("proforma_invoice", proformaID)
		}
		return nil, err
	}
	return proforma, nil
}

// List pages over proformas with optional filters.
func (s *ProformaService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProformaInvoice, int64, error) {
	return s.repos.Proforma.FindAll(ctx, page, pageSize, filters)
}
