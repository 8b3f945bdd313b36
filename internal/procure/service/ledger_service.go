package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService owns the financial invariants of invoices:
// total = subtotal + tax, remaining = total - paid. Balance updates run
// under a row lock so concurrent payments cannot overdraw a shrinking
// balance.
type LedgerService struct {
	db     *gorm.DB
	seq    *repository.SequenceRepository
	logger *zap.Logger
}

func NewLedgerService(db *gorm.DB, seq *repository.SequenceRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{db: db, seq: seq, logger: logger}
}

// round2 rounds to cents. Applied at every ledger write boundary so that
// float drift never accumulates into stored columns.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecomputeTotals derives tax and total from subtotal and tax rate. Pure
// and idempotent: unchanged inputs yield unchanged outputs.
func RecomputeTotals(subtotal, taxRate float64) (taxAmount, totalAmount float64) {
	taxAmount = round2(subtotal * taxRate / 100)
	totalAmount = round2(subtotal + taxAmount)
	return taxAmount, totalAmount
}

// ApplyPayment settles amount against the invoice in its own transaction.
func (s *LedgerService) ApplyPayment(ctx context.Context, invoiceID string, amount float64, method, reference, createdBy string) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = s.ApplyPaymentTx(tx, invoiceID, amount, method, reference, createdBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// ApplyPaymentTx settles amount against the invoice inside the caller's
// transaction. The invoice row is locked first; the payment record is
// created completed, paid and remaining amounts are recomputed, and the
// invoice flips to paid when the balance reaches zero.
func (s *LedgerService) ApplyPaymentTx(tx *gorm.DB, invoiceID string, amount float64, method, reference, createdBy string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", invoiceID).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEntityNotFound("invoice", invoiceID)
		}
		return nil, err
	}

	if invoice.Status != entity.InvoiceStatusApproved {
		return nil, ErrPrecondition("invoice", invoiceID,
			"payments require an approved invoice, status is "+string(invoice.Status))
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount("invoice", invoiceID, "payment amount must be positive")
	}
	if amount > invoice.RemainingAmount {
		return nil, ErrInvalidAmount("invoice", invoiceID, "payment amount exceeds remaining balance")
	}

	number, err := s.seq.Next(tx, entity.DocTypePayment)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := entity.Payment{
		ID:                   uuid.New().String()[:32],
		PaymentNumber:        number,
		InvoiceID:            invoice.ID,
		Status:               entity.PaymentStatusCompleted,
		Amount:               round2(amount),
		Currency:             invoice.Currency,
		Method:               method,
		PaymentDate:          &now,
		TransactionReference: reference,
		TrackingID:           invoice.TrackingID,
		CreatedBy:            createdBy,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, err
	}

	invoice.PaidAmount = round2(invoice.PaidAmount + amount)
	invoice.RemainingAmount = round2(invoice.TotalAmount - invoice.PaidAmount)
	if invoice.RemainingAmount <= 0 {
		next, err := NextInvoiceStatus(invoice.Status, EventFullyPaid, invoice.ID)
		if err != nil {
			return nil, err
		}
		invoice.Status = next
		invoice.RemainingAmount = 0
	}
	if err := tx.Save(&invoice).Error; err != nil {
		return nil, err
	}

	s.logger.Info("payment applied",
		zap.String("invoice_id", invoice.ID),
		zap.String("payment_number", number),
		zap.Float64("amount", amount),
		zap.Float64("remaining", invoice.RemainingAmount))

	invoice.Payments = append(invoice.Payments, payment)
	return &invoice, nil
}
