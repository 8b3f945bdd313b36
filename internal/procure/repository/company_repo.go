package repository

import (
	"context"
	"errors"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"gorm.io/gorm"
)

// CompanyRepository persists companies and suppliers.
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Company, int64, error) {
	var items []entity.Company
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Company{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if supplier := filters["is_supplier"]; supplier == "true" {
		query = query.Where("is_supplier = ?", true)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) Update(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}
