package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"gorm.io/gorm"
)

// CompanyService manages the companies and suppliers directory.
type CompanyService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewCompanyService(db *gorm.DB, repos *repository.Repositories) *CompanyService {
	return &CompanyService{db: db, repos: repos}
}

// CompanyInput creates or updates a directory entry.
type CompanyInput struct {
	Code       string `json:"code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	TaxNumber  string `json:"tax_number"`
	IsSupplier bool   `json:"is_supplier"`
}

func (s *CompanyService) Create(ctx context.Context, input CompanyInput) (*entity.Company, error) {
	company := &entity.Company{
		ID:         uuid.New().String()[:32],
		Code:       input.Code,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		TaxNumber:  input.TaxNumber,
		IsSupplier: input.IsSupplier,
		Status:     "active",
	}
	if err := s.repos.Company.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id string, input CompanyInput) (*entity.Company, error) {
	company, err := s.repos.Company.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("company", id)
		}
		return nil, err
	}
	company.Code = input.Code
	company.Name = input.Name
	company.Email = input.Email
	company.Phone = input.Phone
	company.Address = input.Address
	company.TaxNumber = input.TaxNumber
	company.IsSupplier = input.IsSupplier
	if err := s.repos.Company.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) Get(ctx context.Context, id string) (*entity.Company, error) {
	company, err := s.repos.Company.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrEntityNotFound("company", id)
		}
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Company, int64, error) {
	return s.repos.Company.FindAll(ctx, page, pageSize, filters)
}
