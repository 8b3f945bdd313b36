package service

import (
	"context"
	"testing"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/testutil"
	"gorm.io/gorm"
)

// buildTrackedCase walks a request to one PO, one delivered shipment, one
// invoice and one payment, then an accepted-pending proforma.
func buildTrackedCase(t *testing.T, db *gorm.DB, svc *Services) (request *entity.Request, proforma *entity.ProformaInvoice) {
	t.Helper()
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	customer := testutil.SeedCompany(t, db, "CUST-001", "Buyer Corp")
	request = testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quote := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplier.ID, entity.QuoteStatusSelected, 10, 100)

	po, err := svc.Workflow.CreatePurchaseOrderFromQuote(ctx, quote.ID, DeliveryInput{}, "test-user-001")
	if err != nil {
		t.Fatalf("CreatePurchaseOrderFromQuote: %v", err)
	}
	shipmentID := po.Shipments[0].ID
	if _, err := svc.Shipment.Ship(ctx, shipmentID, ShipInput{}); err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if _, err := svc.Shipment.Deliver(ctx, shipmentID); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	invoice, err := svc.Workflow.CreateInvoiceFromDelivery(ctx, shipmentID, InvoiceInput{TaxRate: 18}, "test-user-001")
	if err != nil {
		t.Fatalf("CreateInvoiceFromDelivery: %v", err)
	}
	if _, err := svc.Workflow.ProcessPayment(ctx, invoice.ID, 500, "wire", "TX-1", "test-user-001"); err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}

	proforma, err = svc.Proforma.Create(ctx, quote.ID, ProformaInput{
		CompanyID:    customer.ID,
		ProfitMargin: 5.0,
	}, "test-user-001")
	if err != nil {
		t.Fatalf("Proforma.Create: %v", err)
	}
	if _, err := svc.Proforma.Send(ctx, proforma.ID); err != nil {
		t.Fatalf("Proforma.Send: %v", err)
	}
	return request, proforma
}

func TestPromoteRewritesWholeGraph(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()
	request, proforma := buildTrackedCase(t, db, svc)

	// acceptance runs the promotion in its own transaction
	if _, _, err := svc.Proforma.Accept(ctx, proforma.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	want := proforma.ProformaNumber

	var reloaded entity.Request
	db.First(&reloaded, "id = ?", request.ID)
	if reloaded.TrackingID != want || reloaded.ProformaNumber == nil || *reloaded.ProformaNumber != want {
		t.Errorf("request tracking=%s proforma=%v, want both %s", reloaded.TrackingID, reloaded.ProformaNumber, want)
	}

	// no descendant shows a mixed tracking id
	var stale int64
	db.Model(&entity.PurchaseOrder{}).Where("request_id = ? AND tracking_id <> ?", request.ID, want).Count(&stale)
	if stale != 0 {
		t.Errorf("purchase orders with stale tracking: %d", stale)
	}
	var shipments []entity.Shipment
	db.Find(&shipments)
	for _, s := range shipments {
		if s.TrackingID != want {
			t.Errorf("shipment %s tracking = %s, want %s", s.ShipmentNumber, s.TrackingID, want)
		}
	}
	var invoices []entity.Invoice
	db.Find(&invoices)
	for _, inv := range invoices {
		if inv.TrackingID != want {
			t.Errorf("invoice %s tracking = %s, want %s", inv.InvoiceNumber, inv.TrackingID, want)
		}
	}
	var payments []entity.Payment
	db.Find(&payments)
	if len(payments) == 0 {
		t.Fatalf("expected seeded payment")
	}
	for _, p := range payments {
		if p.TrackingID != want {
			t.Errorf("payment %s tracking = %s, want %s", p.PaymentNumber, p.TrackingID, want)
		}
	}
}

func TestPromoteIsIdempotent(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()
	request, proforma := buildTrackedCase(t, db, svc)

	_, promoted, err := svc.Proforma.Accept(ctx, proforma.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	// request + po + shipment + invoice + payment
	if promoted != 5 {
		t.Errorf("first promotion touched %d rows, want 5", promoted)
	}

	// a second run with the same id reports zero additional changes
	again, err := svc.Tracking.Promote(ctx, request.ID, proforma.ProformaNumber)
	if err != nil {
		t.Fatalf("second Promote: %v", err)
	}
	if again != 0 {
		t.Errorf("second promotion touched %d rows, want 0", again)
	}
}

func TestPromoteGuards(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()
	request, proforma := buildTrackedCase(t, db, svc)

	// a proforma that is not accepted cannot promote
	_, err := svc.Tracking.Promote(ctx, request.ID, proforma.ProformaNumber)
	if !IsCode(err, CodePreconditionFailed) {
		t.Fatalf("unaccepted proforma: expected precondition_failed, got %v", err)
	}

	// a proforma from an unrelated case cannot promote this request
	other := testutil.SeedRequest(t, db, "REQ-2025-099", entity.RequestStatusApproved, 1)
	if _, _, err := svc.Proforma.Accept(ctx, proforma.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	_, err = svc.Tracking.Promote(ctx, other.ID, proforma.ProformaNumber)
	if !IsCode(err, CodePreconditionFailed) {
		t.Errorf("unlinked request: expected precondition_failed, got %v", err)
	}

	_, err = svc.Tracking.Promote(ctx, "missing", proforma.ProformaNumber)
	if !IsCode(err, CodeNotFound) {
		t.Errorf("missing request: expected not_found, got %v", err)
	}
	_, err = svc.Tracking.Promote(ctx, request.ID, "PRF-2025-404")
	if !IsCode(err, CodeNotFound) {
		t.Errorf("missing proforma: expected not_found, got %v", err)
	}
}

func TestTrackingLookup(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()
	request, proforma := buildTrackedCase(t, db, svc)

	if _, _, err := svc.Proforma.Accept(ctx, proforma.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	result, err := svc.Tracking.Lookup(ctx, proforma.ProformaNumber)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	requests := result["requests"].([]entity.Request)
	if len(requests) != 1 || requests[0].ID != request.ID {
		t.Errorf("lookup requests = %+v", requests)
	}

	// the original request number keeps resolving to the promoted graph
	byNumber, err := svc.Tracking.Lookup(ctx, request.RequestNumber)
	if err != nil {
		t.Fatalf("Lookup by request number: %v", err)
	}
	if byNumber["tracking_id"] != proforma.ProformaNumber {
		t.Errorf("tracking_id = %v, want %s", byNumber["tracking_id"], proforma.ProformaNumber)
	}
	orders := byNumber["purchase_orders"].([]entity.PurchaseOrder)
	if len(orders) != 1 {
		t.Errorf("expected 1 purchase order via request number, got %d", len(orders))
	}

	if _, err := svc.Tracking.Lookup(ctx, "REQ-1900-000"); !IsCode(err, CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestTrackingHistoryTimeline(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()
	request, proforma := buildTrackedCase(t, db, svc)

	if _, _, err := svc.Proforma.Accept(ctx, proforma.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	history, err := svc.Tracking.History(ctx, request.RequestNumber)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if history.OriginalRequestID != request.RequestNumber {
		t.Errorf("original id = %s, want %s", history.OriginalRequestID, request.RequestNumber)
	}
	if history.CurrentTrackingID != proforma.ProformaNumber {
		t.Errorf("current id = %s, want %s", history.CurrentTrackingID, proforma.ProformaNumber)
	}
	if history.TrackingPhase != entity.TrackingPhaseProformaApproved {
		t.Errorf("phase = %s, want %s", history.TrackingPhase, entity.TrackingPhaseProformaApproved)
	}

	phases := make(map[string]TrackingPhaseEntry, len(history.History))
	for _, e := range history.History {
		phases[e.Phase] = e
	}
	for _, want := range []string{
		"request", "proforma", "proforma_approved",
		"purchase_order", "shipment", "shipment_delivered", "payment",
	} {
		if _, ok := phases[want]; !ok {
			t.Errorf("phase %s missing from timeline %+v", want, history.History)
		}
	}
	if e := phases["request"]; e.TrackingID != request.RequestNumber {
		t.Errorf("request phase tracking id = %s, want %s", e.TrackingID, request.RequestNumber)
	}
	if e := phases["proforma_approved"]; e.TrackingID != proforma.ProformaNumber || e.Timestamp == nil {
		t.Errorf("handover entry = %+v, want proforma number with a timestamp", e)
	}

	// the promoted id resolves to the same timeline
	byProforma, err := svc.Tracking.History(ctx, proforma.ProformaNumber)
	if err != nil {
		t.Fatalf("History by proforma number: %v", err)
	}
	if byProforma.OriginalRequestID != request.RequestNumber {
		t.Errorf("by proforma: original id = %s, want %s", byProforma.OriginalRequestID, request.RequestNumber)
	}

	if _, err := svc.Tracking.History(ctx, "REQ-1900-000"); !IsCode(err, CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}
