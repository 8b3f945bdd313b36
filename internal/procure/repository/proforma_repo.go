package repository

import (
	"context"
	"errors"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"gorm.io/gorm"
)

// ProformaRepository persists proforma invoices.
type ProformaRepository struct {
	db *gorm.DB
}

func NewProformaRepository(db *gorm.DB) *ProformaRepository {
	return &ProformaRepository{db: db}
}

func (r *ProformaRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProformaInvoice, int64, error) {
	var items []entity.ProformaInvoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProformaInvoice{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if quoteID := filters["quote_id"]; quoteID != "" {
		query = query.Where("quote_id = ?", quoteID)
	}
	if companyID := filters["company_id"]; companyID != "" {
		query = query.Where("company_id = ?", companyID)
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

// FindByID finds a proforma invoice with its priced items.
func (r *ProformaRepository) FindByID(ctx context.Context, id string) (*entity.ProformaInvoice, error) {
	var proforma entity.ProformaInvoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&proforma).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &proforma, nil
}

// FindByNumber finds a proforma invoice by its human number.
func (r *ProformaRepository) FindByNumber(ctx context.Context, number string) (*entity.ProformaInvoice, error) {
	var proforma entity.ProformaInvoice
	err := r.db.WithContext(ctx).
		Where("proforma_number = ?", number).
		First(&proforma).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &proforma, nil
}

func (r *ProformaRepository) Create(ctx context.Context, proforma *entity.ProformaInvoice) error {
	return r.db.WithContext(ctx).Create(proforma).Error
}

func (r *ProformaRepository) Update(ctx context.Context, proforma *entity.ProformaInvoice) error {
	return r.db.WithContext(ctx).Save(proforma).Error
}
