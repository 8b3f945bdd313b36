package entity

import "time"

// QuoteStatus is the closed set of supplier quote states.
type QuoteStatus string

const (
	QuoteStatusReceived    QuoteStatus = "received"
	QuoteStatusUnderReview QuoteStatus = "under_review"
	QuoteStatusSelected    QuoteStatus = "selected"
	QuoteStatusRejected    QuoteStatus = "rejected"
)

// Quote is a supplier's priced response to an RFQ. At most one quote per
// RFQ may be selected; selecting one rejects its siblings.
type Quote struct {
	ID          string      `json:"id" gorm:"primaryKey;size:32"`
	QuoteNumber string      `json:"quote_number" gorm:"size:32;uniqueIndex;not null"`
	RFQID       string      `json:"rfq_id" gorm:"size:32;not null;index"`
	SupplierID  string      `json:"supplier_id" gorm:"size:32;not null;index"`
	Status      QuoteStatus `json:"status" gorm:"size:20;default:received"`

	TotalAmount float64 `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	Currency    string  `json:"currency" gorm:"size:10;default:USD"`

	// Evaluation scores, each 0-10
	PriceScore      *float64 `json:"price_score" gorm:"type:decimal(4,1)"`
	QualityScore    *float64 `json:"quality_score" gorm:"type:decimal(4,1)"`
	DeliveryScore   *float64 `json:"delivery_score" gorm:"type:decimal(4,1)"`
	ServiceScore    *float64 `json:"service_score" gorm:"type:decimal(4,1)"`
	OverallScore    *float64 `json:"overall_score" gorm:"type:decimal(4,1)"`
	EvaluationNotes string   `json:"evaluation_notes" gorm:"type:text"`

	ValidUntil *time.Time `json:"valid_until"`
	SelectedAt *time.Time `json:"selected_at"`
	SelectedBy *string    `json:"selected_by" gorm:"size:32"`
	ReceivedBy string     `json:"received_by" gorm:"size:32"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Notes      string     `json:"notes" gorm:"type:text"`

	Items    []QuoteItem `json:"items,omitempty" gorm:"foreignKey:QuoteID"`
	RFQ      *RFQ        `json:"rfq,omitempty" gorm:"foreignKey:RFQID"`
	Supplier *Company    `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Quote) TableName() string {
	return "proc_quotes"
}

// QuoteItem is a priced line of a supplier quote.
type QuoteItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	QuoteID     string  `json:"quote_id" gorm:"size:32;not null;index"`
	RFQItemID   *string `json:"rfq_item_id" gorm:"size:32"`
	ProductName string  `json:"product_name" gorm:"size:200;not null"`

	Quantity   float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit       string  `json:"unit" gorm:"size:20;default:pcs"`
	UnitPrice  float64 `json:"unit_price" gorm:"type:decimal(12,4);not null"`
	TotalPrice float64 `json:"total_price" gorm:"type:decimal(15,2);not null"`
	Currency   string  `json:"currency" gorm:"size:10;default:USD"`

	TechnicalCompliance bool   `json:"technical_compliance" gorm:"default:true"`
	ComplianceNotes     string `json:"compliance_notes" gorm:"type:text"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuoteItem) TableName() string {
	return "proc_quote_items"
}
