package service

import (
	"context"
	"testing"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"github.com/mantispro/satinalma/internal/procure/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRecomputeTotals(t *testing.T) {
	tax, total := RecomputeTotals(1000, 18)
	if tax != 180 {
		t.Errorf("tax = %v, want 180", tax)
	}
	if total != 1180 {
		t.Errorf("total = %v, want 1180", total)
	}

	// idempotent: same inputs, same outputs
	tax2, total2 := RecomputeTotals(1000, 18)
	if tax2 != tax || total2 != total {
		t.Errorf("second call diverged: %v/%v vs %v/%v", tax2, total2, tax, total)
	}

	// zero rate
	tax, total = RecomputeTotals(500, 0)
	if tax != 0 || total != 500 {
		t.Errorf("zero rate: tax=%v total=%v", tax, total)
	}

	// rounding at the cent boundary
	tax, total = RecomputeTotals(99.99, 18)
	if tax != 18.00 {
		t.Errorf("rounded tax = %v, want 18.00", tax)
	}
	if total != 117.99 {
		t.Errorf("rounded total = %v, want 117.99", total)
	}
}

func setupLedgerTest(t *testing.T) (*gorm.DB, *LedgerService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	seq := repository.NewSequenceRepository(db)
	return db, NewLedgerService(db, seq, zap.NewNop())
}

func seedApprovedInvoice(t *testing.T, db *gorm.DB, subtotal, taxRate float64) *entity.Invoice {
	t.Helper()
	tax, total := RecomputeTotals(subtotal, taxRate)
	invoice := &entity.Invoice{
		ID:              testutil.NewID(),
		InvoiceNumber:   "INV-2025-900",
		PurchaseOrderID: testutil.NewID(),
		Status:          entity.InvoiceStatusApproved,
		Subtotal:        subtotal,
		TaxRate:         taxRate,
		TaxAmount:       tax,
		TotalAmount:     total,
		RemainingAmount: total,
		Currency:        "USD",
		TrackingID:      "REQ-2025-001",
	}
	if err := db.Create(invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return invoice
}

func TestApplyPaymentPartialThenFull(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	ctx := context.Background()
	invoice := seedApprovedInvoice(t, db, 1000, 18)

	// partial payment leaves the invoice approved
	updated, err := ledger.ApplyPayment(ctx, invoice.ID, 500, "wire", "TX-1", "test-user-001")
	if err != nil {
		t.Fatalf("ApplyPayment(500): %v", err)
	}
	if updated.PaidAmount != 500 {
		t.Errorf("paid = %v, want 500", updated.PaidAmount)
	}
	if updated.RemainingAmount != 680 {
		t.Errorf("remaining = %v, want 680", updated.RemainingAmount)
	}
	if updated.Status != entity.InvoiceStatusApproved {
		t.Errorf("status = %s, want approved", updated.Status)
	}

	// the settling payment flips it to paid
	updated, err = ledger.ApplyPayment(ctx, invoice.ID, 680, "wire", "TX-2", "test-user-001")
	if err != nil {
		t.Fatalf("ApplyPayment(680): %v", err)
	}
	if updated.RemainingAmount != 0 {
		t.Errorf("remaining = %v, want 0", updated.RemainingAmount)
	}
	if updated.Status != entity.InvoiceStatusPaid {
		t.Errorf("status = %s, want paid", updated.Status)
	}

	// total == subtotal + tax and remaining == total - paid hold in storage
	var stored entity.Invoice
	if err := db.First(&stored, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if stored.TotalAmount != stored.Subtotal+stored.TaxAmount {
		t.Errorf("total %v != subtotal %v + tax %v", stored.TotalAmount, stored.Subtotal, stored.TaxAmount)
	}
	if stored.RemainingAmount != stored.TotalAmount-stored.PaidAmount {
		t.Errorf("remaining %v != total %v - paid %v", stored.RemainingAmount, stored.TotalAmount, stored.PaidAmount)
	}

	// both payments persisted completed with tracking ids
	var payments []entity.Payment
	if err := db.Where("invoice_id = ?", invoice.ID).Order("created_at ASC").Find(&payments).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(payments))
	}
	for _, p := range payments {
		if p.Status != entity.PaymentStatusCompleted {
			t.Errorf("payment %s status = %s, want completed", p.PaymentNumber, p.Status)
		}
		if p.TrackingID != invoice.TrackingID {
			t.Errorf("payment %s tracking = %s, want %s", p.PaymentNumber, p.TrackingID, invoice.TrackingID)
		}
	}
}

func TestApplyPaymentRejectsBadAmounts(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	ctx := context.Background()
	invoice := seedApprovedInvoice(t, db, 1000, 18)

	if _, err := ledger.ApplyPayment(ctx, invoice.ID, 500, "wire", "TX-1", "test-user-001"); err != nil {
		t.Fatalf("ApplyPayment(500): %v", err)
	}

	// over-balance payment fails and mutates nothing
	_, err := ledger.ApplyPayment(ctx, invoice.ID, 2000, "wire", "TX-2", "test-user-001")
	if !IsCode(err, CodeInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}

	var stored entity.Invoice
	if err := db.First(&stored, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if stored.RemainingAmount != 680 {
		t.Errorf("remaining after rejected payment = %v, want 680", stored.RemainingAmount)
	}
	var count int64
	db.Model(&entity.Payment{}).Where("invoice_id = ?", invoice.ID).Count(&count)
	if count != 1 {
		t.Errorf("payments = %d, want 1 (rejected payment must not persist)", count)
	}

	// non-positive amounts fail the same way
	if _, err := ledger.ApplyPayment(ctx, invoice.ID, 0, "wire", "TX-3", "test-user-001"); !IsCode(err, CodeInvalidAmount) {
		t.Errorf("zero amount: expected invalid_amount, got %v", err)
	}
	if _, err := ledger.ApplyPayment(ctx, invoice.ID, -50, "wire", "TX-4", "test-user-001"); !IsCode(err, CodeInvalidAmount) {
		t.Errorf("negative amount: expected invalid_amount, got %v", err)
	}
}

func TestApplyPaymentRequiresApprovedInvoice(t *testing.T) {
	db, ledger := setupLedgerTest(t)
	ctx := context.Background()

	invoice := seedApprovedInvoice(t, db, 100, 0)
	db.Model(&entity.Invoice{}).Where("id = ?", invoice.ID).Update("status", entity.InvoiceStatusDraft)

	_, err := ledger.ApplyPayment(ctx, invoice.ID, 50, "wire", "TX-1", "test-user-001")
	if !IsCode(err, CodePreconditionFailed) {
		t.Errorf("expected precondition_failed, got %v", err)
	}

	_, err = ledger.ApplyPayment(ctx, "missing-invoice", 50, "wire", "TX-1", "test-user-001")
	if !IsCode(err, CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}
