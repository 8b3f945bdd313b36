package entity

import "time"

// ProformaStatus is the closed set of proforma invoice states.
type ProformaStatus string

const (
	ProformaStatusDraft    ProformaStatus = "draft"
	ProformaStatusSent     ProformaStatus = "sent"
	ProformaStatusAccepted ProformaStatus = "accepted"
	ProformaStatusRejected ProformaStatus = "rejected"
	ProformaStatusExpired  ProformaStatus = "expired"
)

// MinProfitMargin is the lowest markup (percent) a proforma may quote.
const MinProfitMargin = 2.5

// ProformaInvoice quotes a marked-up price derived from a selected quote.
// Its acceptance promotes its number to the canonical tracking id of the
// whole procurement case.
type ProformaInvoice struct {
	ID             string         `json:"id" gorm:"primaryKey;size:32"`
	ProformaNumber string         `json:"proforma_number" gorm:"size:32;uniqueIndex;not null"`
	QuoteID        string         `json:"quote_id" gorm:"size:32;not null;index"`
	CompanyID      string         `json:"company_id" gorm:"size:32;not null;index"`
	Status         ProformaStatus `json:"status" gorm:"size:20;default:draft"`

	ProfitMargin float64 `json:"profit_margin" gorm:"type:decimal(5,2);not null"`
	TaxRate      float64 `json:"tax_rate" gorm:"type:decimal(5,2);default:0"`
	Subtotal     float64 `json:"subtotal" gorm:"type:decimal(15,2);default:0"`
	TaxAmount    float64 `json:"tax_amount" gorm:"type:decimal(15,2);default:0"`
	TotalAmount  float64 `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	Currency     string  `json:"currency" gorm:"size:10;default:USD"`

	ValidUntil    *time.Time `json:"valid_until"`
	PaymentTerms  string     `json:"payment_terms" gorm:"size:200"`
	DeliveryTerms string     `json:"delivery_terms" gorm:"size:200"`
	SentAt        *time.Time `json:"sent_at"`
	AcceptedAt    *time.Time `json:"accepted_at"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Items []ProformaInvoiceItem `json:"items,omitempty" gorm:"foreignKey:ProformaInvoiceID"`
	Quote *Quote                `json:"quote,omitempty" gorm:"foreignKey:QuoteID"`
}

func (ProformaInvoice) TableName() string {
	return "proc_proforma_invoices"
}

// ProformaInvoiceItem prices one quote line with the profit markup applied:
// unit price = original unit price * (1 + margin/100).
type ProformaInvoiceItem struct {
	ID                string  `json:"id" gorm:"primaryKey;size:32"`
	ProformaInvoiceID string  `json:"proforma_invoice_id" gorm:"size:32;not null;index"`
	QuoteItemID       *string `json:"quote_item_id" gorm:"size:32"`
	ProductName       string  `json:"product_name" gorm:"size:200;not null"`

	Quantity          float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit              string  `json:"unit" gorm:"size:20;default:pcs"`
	UnitPrice         float64 `json:"unit_price" gorm:"type:decimal(12,4);not null"`
	OriginalUnitPrice float64 `json:"original_unit_price" gorm:"type:decimal(12,4);not null"`
	LineTotal         float64 `json:"line_total" gorm:"type:decimal(15,2);not null"`

	Brand          string `json:"brand" gorm:"size:100"`
	Specifications string `json:"specifications" gorm:"type:text"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProformaInvoiceItem) TableName() string {
	return "proc_proforma_items"
}
