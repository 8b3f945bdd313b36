package repository

import (
	"context"
	"errors"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"gorm.io/gorm"
)

// RequestRepository persists purchase requests.
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// FindAll lists requests with pagination and filters.
func (r *RequestRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Request, int64, error) {
	var items []entity.Request
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Request{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if trackingID := filters["tracking_id"]; trackingID != "" {
		query = query.Where("tracking_id = ?", trackingID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("title ILIKE ? OR request_number ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID finds a request with its line items.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entity.Request, error) {
	var req entity.Request
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByNumber finds a request by its human number.
func (r *RequestRepository) FindByNumber(ctx context.Context, number string) (*entity.Request, error) {
	var req entity.Request
	err := r.db.WithContext(ctx).
		Where("request_number = ?", number).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByTrackingID finds a request by its current tracking id.
func (r *RequestRepository) FindByTrackingID(ctx context.Context, trackingID string) (*entity.Request, error) {
	var req entity.Request
	err := r.db.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create creates a request with its items.
func (r *RequestRepository) Create(ctx context.Context, req *entity.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Update saves a request.
func (r *RequestRepository) Update(ctx context.Context, req *entity.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}
