package service

import (
	"context"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RFQService manages the RFQ lifecycle after creation. New RFQs are opened
// by the workflow orchestrator from approved requests.
type RFQService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	notifier Notifier
	logger   *zap.Logger
}

func NewRFQService(db *gorm.DB, repos *repository.Repositories, notifier Notifier, logger *zap.Logger) *RFQService {
	return &RFQService{db: db, repos: repos, notifier: notifier, logger: logger}
}

// Send marks a draft RFQ as sent to suppliers, opening it for quotes.
func (s *RFQService) Send(ctx context.Context, rfqID string) (*entity.RFQ, error) {
	var rfq *entity.RFQ
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r entity.RFQ
		if err := tx.Where("id = ?", rfqID).First(&r).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("rfq", rfqID)
			}
			return err
		}

		next, err := NextRFQStatus(r.Status, EventSend, r.ID)
		if err != nil {
			return err
		}
		r.Status = next
		if err := tx.Save(&r).Error; err != nil {
			return err
		}
		rfq = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, Event{
			Type:      "rfq.sent",
			EntityID:  rfq.ID,
			Timestamp: time.Now(),
		})
	}
	return rfq, nil
}

// Get loads one RFQ with its items and received quotes.
func (s *RFQService) Get(ctx context.Context, rfqID string) (*entity.RFQ, error) {
	rfq, err := s.repos.RFQ.FindByID(ctx, rfqID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("rfq", rfqID)
		}
		return nil, err
	}
	return rfq, nil
}

// List pages over RFQs with optional filters.
func (s *RFQService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.RFQ, int64, error) {
	return s.repos.RFQ.FindAll(ctx, page, pageSize, filters)
}
