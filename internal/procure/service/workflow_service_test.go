package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"github.com/mantispro/satinalma/internal/procure/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupWorkflowTest(t *testing.T) (*gorm.DB, *Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewServices(db, repos, nil, zap.NewNop())
}

func TestCreateRFQFromApprovedRequest(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusApproved, 2)

	rfq, err := svc.Workflow.CreateRFQFromRequest(ctx, request.ID, RFQInput{
		PaymentTerms: "net 30",
	}, "test-user-001")
	if err != nil {
		t.Fatalf("CreateRFQFromRequest: %v", err)
	}

	wantNumber := fmt.Sprintf("RFQ-%d-001", time.Now().Year())
	if rfq.RFQNumber != wantNumber {
		t.Errorf("rfq number = %s, want %s on an empty sequence", rfq.RFQNumber, wantNumber)
	}
	if rfq.Status != entity.RFQStatusDraft {
		t.Errorf("rfq status = %s, want draft", rfq.Status)
	}
	if len(rfq.Items) != 2 {
		t.Errorf("rfq items = %d, want 2 copied from the request", len(rfq.Items))
	}
	for i, item := range rfq.Items {
		if item.RequestItemID == nil || *item.RequestItemID != request.Items[i].ID {
			t.Errorf("rfq item %d not linked to request item", i)
		}
	}

	var reloaded entity.Request
	if err := db.First(&reloaded, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if reloaded.Status != entity.RequestStatusRFQCreated {
		t.Errorf("request status = %s, want rfq_created", reloaded.Status)
	}
}

func TestCreateRFQRequiresApprovedRequest(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusPending, 1)

	_, err := svc.Workflow.CreateRFQFromRequest(ctx, request.ID, RFQInput{}, "test-user-001")
	if !IsCode(err, CodePreconditionFailed) {
		t.Fatalf("expected precondition_failed, got %v", err)
	}

	// nothing persisted, request untouched
	var count int64
	db.Model(&entity.RFQ{}).Count(&count)
	if count != 0 {
		t.Errorf("rfqs = %d, want 0 after failed creation", count)
	}

	_, err = svc.Workflow.CreateRFQFromRequest(ctx, "missing-request", RFQInput{}, "test-user-001")
	if !IsCode(err, CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestCreatePurchaseOrderFromQuote(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quote := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplier.ID, entity.QuoteStatusSelected, 10, 100)

	po, err := svc.Workflow.CreatePurchaseOrderFromQuote(ctx, quote.ID, DeliveryInput{
		Address: "Warehouse 7",
	}, "test-user-001")
	if err != nil {
		t.Fatalf("CreatePurchaseOrderFromQuote: %v", err)
	}

	if po.TotalAmount != 1000 {
		t.Errorf("po total = %v, want 1000 (sum of quote line totals)", po.TotalAmount)
	}
	if want := fmt.Sprintf("PO-%d-001", time.Now().Year()); po.PONumber != want {
		t.Errorf("po number = %s, want %s", po.PONumber, want)
	}
	if po.TrackingID != request.TrackingID {
		t.Errorf("po tracking = %s, want request's %s", po.TrackingID, request.TrackingID)
	}
	if len(po.Shipments) != 1 || po.Shipments[0].Status != entity.ShipmentStatusPreparing {
		t.Fatalf("expected one initial shipment in preparing, got %+v", po.Shipments)
	}

	var reloadedRFQ entity.RFQ
	db.First(&reloadedRFQ, "id = ?", rfq.ID)
	if reloadedRFQ.Status != entity.RFQStatusCompleted {
		t.Errorf("rfq status = %s, want completed", reloadedRFQ.Status)
	}
	var reloadedReq entity.Request
	db.First(&reloadedReq, "id = ?", request.ID)
	if reloadedReq.Status != entity.RequestStatusOrderPlaced {
		t.Errorf("request status = %s, want order_placed", reloadedReq.Status)
	}
}

func TestCreatePurchaseOrderRequiresSelectedQuote(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quote := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplier.ID, entity.QuoteStatusReceived, 10, 100)

	_, err := svc.Workflow.CreatePurchaseOrderFromQuote(ctx, quote.ID, DeliveryInput{}, "test-user-001")
	if !IsCode(err, CodePreconditionFailed) {
		t.Fatalf("expected precondition_failed, got %v", err)
	}
}

func TestCreateInvoiceFromDelivery(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quote := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplier.ID, entity.QuoteStatusSelected, 10, 100)

	po, err := svc.Workflow.CreatePurchaseOrderFromQuote(ctx, quote.ID, DeliveryInput{}, "test-user-001")
	if err != nil {
		t.Fatalf("CreatePurchaseOrderFromQuote: %v", err)
	}
	shipmentID := po.Shipments[0].ID

	// invoicing an undelivered shipment fails
	_, err = svc.Workflow.CreateInvoiceFromDelivery(ctx, shipmentID, InvoiceInput{TaxRate: 18}, "test-user-001")
	if !IsCode(err, CodePreconditionFailed) {
		t.Fatalf("expected precondition_failed for preparing shipment, got %v", err)
	}

	if _, err := svc.Shipment.Ship(ctx, shipmentID, ShipInput{Carrier: "DHL"}); err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if _, err := svc.Shipment.Deliver(ctx, shipmentID); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	invoice, err := svc.Workflow.CreateInvoiceFromDelivery(ctx, shipmentID, InvoiceInput{TaxRate: 18}, "test-user-001")
	if err != nil {
		t.Fatalf("CreateInvoiceFromDelivery: %v", err)
	}
	if invoice.Subtotal != 1000 {
		t.Errorf("subtotal = %v, want 1000 from the po total", invoice.Subtotal)
	}
	if invoice.TaxAmount != 180 || invoice.TotalAmount != 1180 {
		t.Errorf("tax/total = %v/%v, want 180/1180", invoice.TaxAmount, invoice.TotalAmount)
	}
	if invoice.RemainingAmount != invoice.TotalAmount {
		t.Errorf("remaining = %v, want full total", invoice.RemainingAmount)
	}
	if invoice.Status != entity.InvoiceStatusApproved {
		t.Errorf("status = %s, want approved", invoice.Status)
	}
}

func TestProcessPaymentCompletesRequest(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
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

	// partial payment keeps the request open
	updated, err := svc.Workflow.ProcessPayment(ctx, invoice.ID, 500, "wire", "TX-1", "test-user-001")
	if err != nil {
		t.Fatalf("ProcessPayment(500): %v", err)
	}
	if updated.Status != entity.InvoiceStatusApproved {
		t.Errorf("invoice status = %s, want approved", updated.Status)
	}
	var reloadedReq entity.Request
	db.First(&reloadedReq, "id = ?", request.ID)
	if reloadedReq.Status != entity.RequestStatusOrderPlaced {
		t.Errorf("request status = %s, want order_placed after partial payment", reloadedReq.Status)
	}

	// settling the balance completes the invoice and the request
	updated, err = svc.Workflow.ProcessPayment(ctx, invoice.ID, 680, "wire", "TX-2", "test-user-001")
	if err != nil {
		t.Fatalf("ProcessPayment(680): %v", err)
	}
	if updated.Status != entity.InvoiceStatusPaid {
		t.Errorf("invoice status = %s, want paid", updated.Status)
	}
	db.First(&reloadedReq, "id = ?", request.ID)
	if reloadedReq.Status != entity.RequestStatusCompleted {
		t.Errorf("request status = %s, want completed", reloadedReq.Status)
	}
}

type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) Notify(ctx context.Context, event Event) {
	n.events = append(n.events, event)
}

func TestRFQCreatedEventCarriesTrackingID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	logger := zap.NewNop()
	ledger := NewLedgerService(db, repos.Sequence, logger)
	tracking := NewTrackingService(db, logger)
	notifier := &recordingNotifier{}
	workflow := NewWorkflowService(db, repos, ledger, tracking, notifier, logger)
	ctx := context.Background()

	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusApproved, 1)

	rfq, err := workflow.CreateRFQFromRequest(ctx, request.ID, RFQInput{}, "test-user-001")
	if err != nil {
		t.Fatalf("CreateRFQFromRequest: %v", err)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("events = %d, want 1", len(notifier.events))
	}
	event := notifier.events[0]
	if event.Type != "rfq.created" || event.EntityID != rfq.ID {
		t.Errorf("event = %+v, want rfq.created for %s", event, rfq.ID)
	}
	if event.TrackingID != request.TrackingID {
		t.Errorf("event tracking id = %q, want %q", event.TrackingID, request.TrackingID)
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}
}

func TestGetWorkflowStatusAggregatesCase(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quote := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplier.ID, entity.QuoteStatusSelected, 10, 100)

	if _, err := svc.Workflow.CreatePurchaseOrderFromQuote(ctx, quote.ID, DeliveryInput{}, "test-user-001"); err != nil {
		t.Fatalf("CreatePurchaseOrderFromQuote: %v", err)
	}

	status, err := svc.Workflow.GetWorkflowStatus(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetWorkflowStatus: %v", err)
	}
	if status.Request == nil || status.Request.ID != request.ID {
		t.Fatalf("status request missing")
	}
	if len(status.RFQs) != 1 || len(status.Quotes) != 1 {
		t.Errorf("rfqs/quotes = %d/%d, want 1/1", len(status.RFQs), len(status.Quotes))
	}
	if len(status.PurchaseOrders) != 1 || len(status.Shipments) != 1 {
		t.Errorf("pos/shipments = %d/%d, want 1/1", len(status.PurchaseOrders), len(status.Shipments))
	}

	if _, err := svc.Workflow.GetWorkflowStatus(ctx, "missing"); !IsCode(err, CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}
