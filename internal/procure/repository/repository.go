package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories collects the procurement repositories.
type Repositories struct {
	Sequence *SequenceRepository
	Request  *RequestRepository
	RFQ      *RFQRepository
	Quote    *QuoteRepository
	PO       *PurchaseOrderRepository
	Shipment *ShipmentRepository
	Invoice  *InvoiceRepository
	Proforma *ProformaRepository
	Company  *CompanyRepository
}

// NewRepositories creates the repository collection.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Sequence: NewSequenceRepository(db),
		Request:  NewRequestRepository(db),
		RFQ:      NewRFQRepository(db),
		Quote:    NewQuoteRepository(db),
		PO:       NewPurchaseOrderRepository(db),
		Shipment: NewShipmentRepository(db),
		Invoice:  NewInvoiceRepository(db),
		Proforma: NewProformaRepository(db),
		Company:  NewCompanyRepository(db),
	}
}
