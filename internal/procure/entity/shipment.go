package entity

import "time"

// ShipmentStatus is the closed set of shipment states.
type ShipmentStatus string

const (
	ShipmentStatusPreparing ShipmentStatus = "preparing"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

// Shipment moves goods of a purchase order. Delivering a PO's last open
// shipment advances the PO itself to delivered.
type Shipment struct {
	ID              string         `json:"id" gorm:"primaryKey;size:32"`
	ShipmentNumber  string         `json:"shipment_number" gorm:"size:32;uniqueIndex;not null"`
	PurchaseOrderID string         `json:"purchase_order_id" gorm:"size:32;not null;index"`
	Status          ShipmentStatus `json:"status" gorm:"size:20;default:preparing"`

	Carrier        string `json:"carrier" gorm:"size:100"`
	TrackingNumber string `json:"tracking_number" gorm:"size:100"`
	Destination    string `json:"destination" gorm:"size:500"`
	TrackingID     string `json:"tracking_id" gorm:"size:32;index"`

	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
	ActualDeliveryDate    *time.Time `json:"actual_delivery_date"`
	ShippedAt             *time.Time `json:"shipped_at"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []ShipmentItem `json:"items,omitempty" gorm:"foreignKey:ShipmentID"`
}

func (Shipment) TableName() string {
	return "proc_shipments"
}

// ShipmentItem references a PO line with the received condition.
type ShipmentItem struct {
	ID                  string  `json:"id" gorm:"primaryKey;size:32"`
	ShipmentID          string  `json:"shipment_id" gorm:"size:32;not null;index"`
	PurchaseOrderItemID string  `json:"purchase_order_item_id" gorm:"size:32"`
	Quantity            float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Condition           string  `json:"condition" gorm:"size:20;default:good"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShipmentItem) TableName() string {
	return "proc_shipment_items"
}
