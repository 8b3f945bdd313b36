package entity

import "time"

// POStatus is the closed set of purchase order states.
type POStatus string

const (
	POStatusDraft      POStatus = "draft"
	POStatusSent       POStatus = "sent"
	POStatusConfirmed  POStatus = "confirmed"
	POStatusProduction POStatus = "production"
	POStatusShipped    POStatus = "shipped"
	POStatusDelivered  POStatus = "delivered"
)

// PurchaseOrder is placed with the supplier of the selected quote.
type PurchaseOrder struct {
	ID         string   `json:"id" gorm:"primaryKey;size:32"`
	PONumber   string   `json:"po_number" gorm:"size:32;uniqueIndex;not null"`
	RequestID  string   `json:"request_id" gorm:"size:32;not null;index"`
	SupplierID string   `json:"supplier_id" gorm:"size:32;not null;index"`
	QuoteID    *string  `json:"quote_id" gorm:"size:32"`
	Status     POStatus `json:"status" gorm:"size:20;default:draft"`

	TotalAmount float64 `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	Currency    string  `json:"currency" gorm:"size:10;default:USD"`
	TrackingID  string  `json:"tracking_id" gorm:"size:32;index"`

	DeliveryAddress string     `json:"delivery_address" gorm:"size:500"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	Terms           string     `json:"terms" gorm:"size:500"`
	SentAt          *time.Time `json:"sent_at"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items     []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:PurchaseOrderID"`
	Shipments []Shipment          `json:"shipments,omitempty" gorm:"foreignKey:PurchaseOrderID"`
	Invoices  []Invoice           `json:"invoices,omitempty" gorm:"foreignKey:PurchaseOrderID"`
	Supplier  *Company            `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (PurchaseOrder) TableName() string {
	return "proc_purchase_orders"
}

// PurchaseOrderItem is copied from the selected quote's items.
type PurchaseOrderItem struct {
	ID              string  `json:"id" gorm:"primaryKey;size:32"`
	PurchaseOrderID string  `json:"purchase_order_id" gorm:"size:32;not null;index"`
	QuoteItemID     *string `json:"quote_item_id" gorm:"size:32"`
	ProductName     string  `json:"product_name" gorm:"size:200;not null"`

	Quantity   float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit       string  `json:"unit" gorm:"size:20;default:pcs"`
	UnitPrice  float64 `json:"unit_price" gorm:"type:decimal(12,4);not null"`
	TotalPrice float64 `json:"total_price" gorm:"type:decimal(15,2);not null"`
	Currency   string  `json:"currency" gorm:"size:10;default:USD"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseOrderItem) TableName() string {
	return "proc_po_items"
}
