package entity

import "time"

// RequestStatus is the closed set of purchase request states.
type RequestStatus string

const (
	RequestStatusPending     RequestStatus = "pending"
	RequestStatusApproved    RequestStatus = "approved"
	RequestStatusRejected    RequestStatus = "rejected"
	RequestStatusRFQCreated  RequestStatus = "rfq_created"
	RequestStatusOrderPlaced RequestStatus = "order_placed"
	RequestStatusCompleted   RequestStatus = "completed"
)

// Tracking phases carried on the request.
const (
	TrackingPhaseRequest          = "request_phase"
	TrackingPhaseProformaApproved = "proforma_approved"
)

// Request is the originating purchase need. Its number doubles as the
// tracking id until an accepted proforma takes over.
type Request struct {
	ID            string        `json:"id" gorm:"primaryKey;size:32"`
	RequestNumber string        `json:"request_number" gorm:"size:32;uniqueIndex;not null"`
	Title         string        `json:"title" gorm:"size:200;not null"`
	Description   string        `json:"description" gorm:"type:text"`
	Status        RequestStatus `json:"status" gorm:"size:20;default:pending"`

	// Tracking
	TrackingID     string  `json:"tracking_id" gorm:"size:32;index"`
	ProformaNumber *string `json:"proforma_number" gorm:"size:32"`
	TrackingPhase  string  `json:"tracking_phase" gorm:"size:32;default:request_phase"`

	// Management
	RequestedBy string     `json:"requested_by" gorm:"size:32"`
	ApprovedBy  *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt  *time.Time `json:"approved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Notes       string     `json:"notes" gorm:"type:text"`

	Items []RequestItem `json:"items,omitempty" gorm:"foreignKey:RequestID"`
}

func (Request) TableName() string {
	return "proc_requests"
}

// RequestItem is a request line item.
type RequestItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	RequestID   string  `json:"request_id" gorm:"size:32;not null;index"`
	ProductName string  `json:"product_name" gorm:"size:200;not null"`
	Quantity    float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit        string  `json:"unit" gorm:"size:20;default:pcs"`
	Brand       string  `json:"brand" gorm:"size:100"`
	Model       string  `json:"model" gorm:"size:100"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RequestItem) TableName() string {
	return "proc_request_items"
}
