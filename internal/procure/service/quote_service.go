package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteService manages supplier quote intake, evaluation and selection.
type QuoteService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewQuoteService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *QuoteService {
	return &QuoteService{db: db, repos: repos, logger: logger}
}

// QuoteItemInput is one priced line of an incoming quote.
type QuoteItemInput struct {
	RFQItemID           *string `json:"rfq_item_id"`
	ProductName         string  `json:"product_name" binding:"required"`
	Quantity            float64 `json:"quantity" binding:"required,gt=0"`
	Unit                string  `json:"unit"`
	UnitPrice           float64 `json:"unit_price" binding:"required,gt=0"`
	TechnicalCompliance *bool   `json:"technical_compliance"`
	ComplianceNotes     string  `json:"compliance_notes"`
}

// QuoteInput is an incoming supplier quote for an RFQ.
type QuoteInput struct {
	SupplierID string           `json:"supplier_id" binding:"required"`
	Currency   string           `json:"currency"`
	ValidUntil *time.Time       `json:"valid_until"`
	Items      []QuoteItemInput `json:"items" binding:"required,min=1"`
	Notes      string           `json:"notes"`
}

// Create records a received quote against a sent RFQ and moves the RFQ to
// responses_received on the first response.
func (s *QuoteService) Create(ctx context.Context, rfqID string, input QuoteInput, receivedBy string) (*entity.Quote, error) {
	var quote *entity.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rfq entity.RFQ
		if err := tx.Where("id = ?", rfqID).First(&rfq).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("rfq", rfqID)
			}
			return err
		}
		if rfq.Status != entity.RFQStatusSent && rfq.Status != entity.RFQStatusResponsesReceived {
			return ErrPrecondition("rfq", rfqID,
				"quotes are accepted only for a sent rfq, status is "+string(rfq.Status))
		}

		var duplicates int64
		if err := tx.Model(&entity.Quote{}).
			Where("rfq_id = ? AND supplier_id = ?", rfq.ID, input.SupplierID).
			Count(&duplicates).Error; err != nil {
			return err
		}
		if duplicates > 0 {
			return ErrConstraint("quote", rfqID,
				"supplier "+input.SupplierID+" already quoted this rfq")
		}

		number, err := s.repos.Sequence.Next(tx, entity.DocTypeQuote)
		if err != nil {
			return err
		}

		currency := input.Currency
		if currency == "" {
			currency = "USD"
		}
		quote = &entity.Quote{
			ID:          uuid.New().String()[:32],
			QuoteNumber: number,
			RFQID:       rfq.ID,
			SupplierID:  input.SupplierID,
			Status:      entity.QuoteStatusReceived,
			Currency:    currency,
			ValidUntil:  input.ValidUntil,
			ReceivedBy:  receivedBy,
			Notes:       input.Notes,
		}
		var total float64
		for i, item := range input.Items {
			unit := item.Unit
			if unit == "" {
				unit = "pcs"
			}
			compliance := true
			if item.TechnicalCompliance != nil {
				compliance = *item.TechnicalCompliance
			}
			lineTotal := round2(item.Quantity * item.UnitPrice)
			quote.Items = append(quote.Items, entity.QuoteItem{
				ID:                  uuid.New().String()[:32],
				QuoteID:             quote.ID,
				RFQItemID:           item.RFQItemID,
				ProductName:         item.ProductName,
				Quantity:            item.Quantity,
				Unit:                unit,
				UnitPrice:           item.UnitPrice,
				TotalPrice:          lineTotal,
				Currency:            currency,
				TechnicalCompliance: compliance,
				ComplianceNotes:     item.ComplianceNotes,
				SortOrder:           i,
			})
			total += lineTotal
		}
		quote.TotalAmount = round2(total)
		if err := tx.Create(quote).Error; err != nil {
			return err
		}

		if rfq.Status == entity.RFQStatusSent {
			next, err := NextRFQStatus(rfq.Status, EventMarkResponses, rfq.ID)
			if err != nil {
				return err
			}
			rfq.Status = next
			return tx.Save(&rfq).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote received",
		zap.String("quote_id", quote.ID),
		zap.String("rfq_id", rfqID),
		zap.Float64("total", quote.TotalAmount))
	return quote, nil
}

// EvaluationInput carries the four 0-10 review scores.
type EvaluationInput struct {
	PriceScore    float64 `json:"price_score" binding:"min=0,max=10"`
	QualityScore  float64 `json:"quality_score" binding:"min=0,max=10"`
	DeliveryScore float64 `json:"delivery_score" binding:"min=0,max=10"`
	ServiceScore  float64 `json:"service_score" binding:"min=0,max=10"`
	Notes         string  `json:"notes"`
}

// Evaluate scores a quote and moves it under review. The overall score is
// the plain average of the four dimension scores.
func (s *QuoteService) Evaluate(ctx context.Context, quoteID string, input EvaluationInput) (*entity.Quote, error) {
	var quote *entity.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q entity.Quote
		if err := tx.Where("id = ?", quoteID).First(&q).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("quote", quoteID)
			}
			return err
		}

		next, err := NextQuoteStatus(q.Status, EventEvaluate, q.ID)
		if err != nil {
			return err
		}

		overall := (input.PriceScore + input.QualityScore + input.DeliveryScore + input.ServiceScore) / 4
		q.Status = next
		q.PriceScore = &input.PriceScore
		q.QualityScore = &input.QualityScore
		q.DeliveryScore = &input.DeliveryScore
		q.ServiceScore = &input.ServiceScore
		q.OverallScore = &overall
		q.EvaluationNotes = input.Notes
		if err := tx.Save(&q).Error; err != nil {
			return err
		}
		quote = &q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Select picks the winning quote of an RFQ and rejects every sibling in
// the same transaction. The RFQ's quotes are locked first, so under
// concurrent select attempts exactly one caller wins and the loser fails
// already_decided.
func (s *QuoteService) Select(ctx context.Context, quoteID, selectedBy string) (*entity.Quote, error) {
	var quote *entity.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target entity.Quote
		if err := tx.Where("id = ?", quoteID).First(&target).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("quote", quoteID)
			}
			return err
		}

		var siblings []entity.Quote
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("rfq_id = ?", target.RFQID).
			Order("created_at ASC").
			Find(&siblings).Error; err != nil {
			return err
		}

		for _, sibling := range siblings {
			if sibling.Status == entity.QuoteStatusSelected {
				return ErrAlreadyDecided("rfq", target.RFQID,
					"quote "+sibling.ID+" is already selected")
			}
		}

		next, err := NextQuoteStatus(target.Status, EventSelect, target.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		target.Status = next
		target.SelectedAt = &now
		target.SelectedBy = &selectedBy
		if err := tx.Save(&target).Error; err != nil {
			return err
		}

		for _, sibling := range siblings {
			if sibling.ID == target.ID || sibling.Status == entity.QuoteStatusRejected {
				continue
			}
			rejected, err := NextQuoteStatus(sibling.Status, EventReject, sibling.ID)
			if err != nil {
				return err
			}
			if err := tx.Model(&entity.Quote{}).
				Where("id = ?", sibling.ID).
				Update("status", rejected).Error; err != nil {
				return err
			}
		}

		quote = &target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote selected",
		zap.String("quote_id", quote.ID),
		zap.String("rfq_id", quote.RFQID))
	return quote, nil
}

// Get loads one quote with its items.
func (s *QuoteService) Get(ctx context.Context, quoteID string) (*entity.Quote, error) {
	quote, err := s.repos.Quote.FindByID(ctx, quoteID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("quote", quoteID)
		}
		return nil, err
	}
	return quote, nil
}

// List pages over quotes with optional filters.
func (s *QuoteService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Quote, int64, error) {
	return s.repos.Quote.FindAll(ctx, page, pageSize, filters)
}
