package entity

import "time"

// InvoiceStatus is the closed set of invoice states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusApproved  InvoiceStatus = "approved"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// PaymentStatus is the closed set of payment states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Invoice bills a delivered purchase order. The financial invariants
// (total = subtotal + tax, remaining = total - paid) are maintained by the
// ledger; the columns only ever hold recomputed values.
type Invoice struct {
	ID              string        `json:"id" gorm:"primaryKey;size:32"`
	InvoiceNumber   string        `json:"invoice_number" gorm:"size:32;uniqueIndex;not null"`
	PurchaseOrderID string        `json:"purchase_order_id" gorm:"size:32;not null;index"`
	ShipmentID      *string       `json:"shipment_id" gorm:"size:32"`
	Status          InvoiceStatus `json:"status" gorm:"size:20;default:draft"`

	SupplierInvoiceNumber string     `json:"supplier_invoice_number" gorm:"size:100"`
	InvoiceDate           *time.Time `json:"invoice_date"`
	DueDate               *time.Time `json:"due_date"`

	Subtotal        float64 `json:"subtotal" gorm:"type:decimal(15,2);not null"`
	TaxRate         float64 `json:"tax_rate" gorm:"type:decimal(5,2);default:0"`
	TaxAmount       float64 `json:"tax_amount" gorm:"type:decimal(15,2);default:0"`
	TotalAmount     float64 `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	PaidAmount      float64 `json:"paid_amount" gorm:"type:decimal(15,2);default:0"`
	RemainingAmount float64 `json:"remaining_amount" gorm:"type:decimal(15,2);default:0"`
	Currency        string  `json:"currency" gorm:"size:10;default:USD"`

	PaymentTerms string `json:"payment_terms" gorm:"size:200"`
	TrackingID   string `json:"tracking_id" gorm:"size:32;index"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string {
	return "proc_invoices"
}

// Payment settles part or all of an invoice balance.
type Payment struct {
	ID            string        `json:"id" gorm:"primaryKey;size:32"`
	PaymentNumber string        `json:"payment_number" gorm:"size:32;uniqueIndex;not null"`
	InvoiceID     string        `json:"invoice_id" gorm:"size:32;not null;index"`
	Status        PaymentStatus `json:"status" gorm:"size:20;default:pending"`

	Amount      float64    `json:"amount" gorm:"type:decimal(15,2);not null"`
	Currency    string     `json:"currency" gorm:"size:10;default:USD"`
	Method      string     `json:"method" gorm:"size:50"`
	PaymentDate *time.Time `json:"payment_date"`

	TransactionReference string `json:"transaction_reference" gorm:"size:200"`
	TrackingID           string `json:"tracking_id" gorm:"size:32;index"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "proc_payments"
}
