package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestService manages purchase request intake and approval.
type RequestService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewRequestService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *RequestService {
	return &RequestService{db: db, repos: repos, logger: logger}
}

// RequestItemInput is one requested line.
type RequestItemInput struct {
	ProductName string  `json:"product_name" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Unit        string  `json:"unit"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Notes       string  `json:"notes"`
}

// RequestInput is a new purchase request.
type RequestInput struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Items       []RequestItemInput `json:"items"`
	Notes       string             `json:"notes"`
}

// Create opens a pending request. Its number doubles as the initial
// tracking id until a proforma is accepted.
func (s *RequestService) Create(ctx context.Context, input RequestInput, requestedBy string) (*entity.Request, error) {
	var request *entity.Request
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repos.Sequence.Next(tx, entity.DocTypeRequest)
		if err != nil {
			return err
		}

		request = &entity.Request{
			ID:            uuid.New().String()[:32],
			RequestNumber: number,
			Title:         input.Title,
			Description:   input.Description,
			Status:        entity.RequestStatusPending,
			TrackingID:    number,
			TrackingPhase: entity.TrackingPhaseRequest,
			RequestedBy:   requestedBy,
			Notes:         input.Notes,
		}
		for i, item := range input.Items {
			unit := item.Unit
			if unit == "" {
				unit = "pcs"
			}
			request.Items = append(request.Items, entity.RequestItem{
				ID:          uuid.New().String()[:32],
				RequestID:   request.ID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Unit:        unit,
				Brand:       item.Brand,
				Model:       item.Model,
				Notes:       item.Notes,
				SortOrder:   i,
			})
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request created",
		zap.String("request_id", request.ID),
		zap.String("request_number", request.RequestNumber))
	return request, nil
}

// Approve moves a pending request to approved. A request without line
// items cannot be approved.
func (s *RequestService) Approve(ctx context.Context, requestID, approvedBy string) (*entity.Request, error) {
	var request *entity.Request
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req entity.Request
		if err := tx.Preload("Items").Where("id = ?", requestID).First(&req).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("request", requestID)
			}
			return err
		}

		if len(req.Items) == 0 {
			return ErrPrecondition("request", requestID, "approval requires at least one line item")
		}
		next, err := NextRequestStatus(req.Status, EventApprove, req.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		req.Status = next
		req.ApprovedBy = &approvedBy
		req.ApprovedAt = &now
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		request = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Reject moves a pending request to its terminal rejected state.
func (s *RequestService) Reject(ctx context.Context, requestID, rejectedBy, reason string) (*entity.Request, error) {
	var request *entity.Request
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req entity.Request
		if err := tx.Where("id = ?", requestID).First(&req).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEntityNotFound("request", requestID)
			}
			return err
		}

		next, err := NextRequestStatus(req.Status, EventReject, req.ID)
		if err != nil {
			return err
		}
		req.Status = next
		req.ApprovedBy = &rejectedBy
		if reason != "" {
			req.Notes = reason
		}
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		request = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Get loads one request with its items.
func (s *RequestService) Get(ctx context.Context, requestID string) (*entity.Request, error) {
	request, err := s.repos.Request.FindByID(ctx, requestID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("request", requestID)
		}
		return nil, err
	}
	return request, nil
}

// List pages over requests with optional filters.
func (s *RequestService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Request, int64, error) {
	return s.repos.Request.FindAll(ctx, page, pageSize, filters)
}
