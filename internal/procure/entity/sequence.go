package entity

// Document type prefixes. The formatted number PREFIX-YYYY-NNN is a stable
// external contract used as a natural key by humans and other subsystems.
const (
	DocTypeRequest  = "REQ"
	DocTypeRFQ      = "RFQ"
	DocTypeQuote    = "QT"
	DocTypePO       = "PO"
	DocTypeShipment = "SHP"
	DocTypeInvoice  = "INV"
	DocTypePayment  = "PAY"
	DocTypeProforma = "PRF"
)

// DocumentSequence is the atomic counter row behind document numbering,
// scoped by (doc_type, year). Incremented under a row lock; never reset.
type DocumentSequence struct {
	DocType   string `json:"doc_type" gorm:"primaryKey;size:10"`
	Year      int    `json:"year" gorm:"primaryKey"`
	LastValue int64  `json:"last_value" gorm:"not null;default:0"`
}

func (DocumentSequence) TableName() string {
	return "proc_doc_sequences"
}
