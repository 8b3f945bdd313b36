package entity

import "time"

// Company is a supplier or customer party.
type Company struct {
	ID   string `json:"id" gorm:"primaryKey;size:32"`
	Code string `json:"code" gorm:"size:32;uniqueIndex"`
	Name string `json:"name" gorm:"size:200;not null"`

	Email     string `json:"email" gorm:"size:200"`
	Phone     string `json:"phone" gorm:"size:50"`
	Address   string `json:"address" gorm:"size:500"`
	TaxNumber string `json:"tax_number" gorm:"size:50"`

	IsSupplier bool   `json:"is_supplier" gorm:"default:true"`
	Status     string `json:"status" gorm:"size:20;default:active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Company) TableName() string {
	return "proc_companies"
}
