package entity

import "time"

// RFQStatus is the closed set of request-for-quote states.
type RFQStatus string

const (
	RFQStatusDraft             RFQStatus = "draft"
	RFQStatusSent              RFQStatus = "sent"
	RFQStatusResponsesReceived RFQStatus = "responses_received"
	RFQStatusCompleted         RFQStatus = "completed"
)

// RFQ is a request for quotation sent to suppliers. RequestID is nullable:
// an RFQ may also be opened ad hoc without an originating request.
type RFQ struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	RFQNumber string    `json:"rfq_number" gorm:"size:32;uniqueIndex;not null"`
	RequestID *string   `json:"request_id" gorm:"size:32;index"`
	Title     string    `json:"title" gorm:"size:200"`
	Status    RFQStatus `json:"status" gorm:"size:20;default:draft"`

	Deadline      *time.Time `json:"deadline"`
	PaymentTerms  string     `json:"payment_terms" gorm:"size:200"`
	DeliveryTerms string     `json:"delivery_terms" gorm:"size:200"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items  []RFQItem `json:"items,omitempty" gorm:"foreignKey:RFQID"`
	Quotes []Quote   `json:"quotes,omitempty" gorm:"foreignKey:RFQID"`
}

func (RFQ) TableName() string {
	return "proc_rfqs"
}

// RFQItem is copied from the originating request's line items.
type RFQItem struct {
	ID            string  `json:"id" gorm:"primaryKey;size:32"`
	RFQID         string  `json:"rfq_id" gorm:"size:32;not null;index"`
	RequestItemID *string `json:"request_item_id" gorm:"size:32"`
	ProductName   string  `json:"product_name" gorm:"size:200;not null"`
	Description   string  `json:"description" gorm:"type:text"`
	Quantity      float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit          string  `json:"unit" gorm:"size:20;default:pcs"`
	Brand         string  `json:"brand" gorm:"size:100"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RFQItem) TableName() string {
	return "proc_rfq_items"
}
