package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/testutil"
)

func TestQuoteIntakeMarksResponses(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusSent)

	quote, err := svc.Quote.Create(ctx, rfq.ID, QuoteInput{
		SupplierID: supplier.ID,
		Items: []QuoteItemInput{{
			ProductName: "Widget 1",
			Quantity:    10,
			UnitPrice:   99.5,
		}},
	}, "test-user-001")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if want := fmt.Sprintf("QT-%d-001", time.Now().Year()); quote.QuoteNumber != want {
		t.Errorf("quote number = %s, want %s", quote.QuoteNumber, want)
	}
	if quote.TotalAmount != 995 {
		t.Errorf("total = %v, want 995", quote.TotalAmount)
	}

	var reloaded entity.RFQ
	db.First(&reloaded, "id = ?", rfq.ID)
	if reloaded.Status != entity.RFQStatusResponsesReceived {
		t.Errorf("rfq status = %s, want responses_received", reloaded.Status)
	}

	// one quote per supplier per rfq
	_, err = svc.Quote.Create(ctx, rfq.ID, QuoteInput{
		SupplierID: supplier.ID,
		Items:      []QuoteItemInput{{ProductName: "Widget 1", Quantity: 10, UnitPrice: 90}},
	}, "test-user-001")
	if !IsCode(err, CodeConstraintViolation) {
		t.Errorf("duplicate supplier: expected constraint_violation, got %v", err)
	}

	// a draft rfq does not accept quotes
	draft := testutil.SeedRFQ(t, db, "RFQ-2025-002", &request.ID, entity.RFQStatusDraft)
	_, err = svc.Quote.Create(ctx, draft.ID, QuoteInput{
		SupplierID: supplier.ID,
		Items:      []QuoteItemInput{{ProductName: "Widget 1", Quantity: 1, UnitPrice: 1}},
	}, "test-user-001")
	if !IsCode(err, CodePreconditionFailed) {
		t.Errorf("draft rfq: expected precondition_failed, got %v", err)
	}
}

func TestQuoteEvaluationAveragesScores(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplier := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quote := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplier.ID, entity.QuoteStatusReceived, 10, 100)

	evaluated, err := svc.Quote.Evaluate(ctx, quote.ID, EvaluationInput{
		PriceScore:    8,
		QualityScore:  7,
		DeliveryScore: 9,
		ServiceScore:  6,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if evaluated.Status != entity.QuoteStatusUnderReview {
		t.Errorf("status = %s, want under_review", evaluated.Status)
	}
	if evaluated.OverallScore == nil || *evaluated.OverallScore != 7.5 {
		t.Errorf("overall = %v, want 7.5", evaluated.OverallScore)
	}

	// re-evaluation is allowed while under review
	evaluated, err = svc.Quote.Evaluate(ctx, quote.ID, EvaluationInput{
		PriceScore: 10, QualityScore: 10, DeliveryScore: 10, ServiceScore: 10,
	})
	if err != nil {
		t.Fatalf("re-Evaluate: %v", err)
	}
	if *evaluated.OverallScore != 10 {
		t.Errorf("overall = %v, want 10", *evaluated.OverallScore)
	}
}

func TestSelectRejectsSiblings(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplierA := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	supplierB := testutil.SeedCompany(t, db, "SUP-002", "Globex Steel")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quoteA := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplierA.ID, entity.QuoteStatusReceived, 10, 100)
	quoteB := testutil.SeedQuote(t, db, "QT-2025-002", rfq.ID, supplierB.ID, entity.QuoteStatusReceived, 10, 95)

	selected, err := svc.Quote.Select(ctx, quoteA.ID, "test-user-001")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if selected.Status != entity.QuoteStatusSelected || selected.SelectedAt == nil {
		t.Errorf("winner: status=%s selected_at=%v", selected.Status, selected.SelectedAt)
	}

	var sibling entity.Quote
	db.First(&sibling, "id = ?", quoteB.ID)
	if sibling.Status != entity.QuoteStatusRejected {
		t.Errorf("sibling status = %s, want rejected in the same transaction", sibling.Status)
	}

	// selection is decided once per rfq
	_, err = svc.Quote.Select(ctx, quoteB.ID, "test-user-001")
	if !IsCode(err, CodeAlreadyDecided) {
		t.Errorf("second select: expected already_decided, got %v", err)
	}
	_, err = svc.Quote.Select(ctx, quoteA.ID, "test-user-001")
	if !IsCode(err, CodeAlreadyDecided) {
		t.Errorf("re-select winner: expected already_decided, got %v", err)
	}
}

func TestConcurrentSelectSingleWinner(t *testing.T) {
	db, svc := setupWorkflowTest(t)
	ctx := context.Background()

	supplierA := testutil.SeedCompany(t, db, "SUP-001", "Acme Metals")
	supplierB := testutil.SeedCompany(t, db, "SUP-002", "Globex Steel")
	request := testutil.SeedRequest(t, db, "REQ-2025-001", entity.RequestStatusRFQCreated, 1)
	rfq := testutil.SeedRFQ(t, db, "RFQ-2025-001", &request.ID, entity.RFQStatusResponsesReceived)
	quoteA := testutil.SeedQuote(t, db, "QT-2025-001", rfq.ID, supplierA.ID, entity.QuoteStatusReceived, 10, 100)
	quoteB := testutil.SeedQuote(t, db, "QT-2025-002", rfq.ID, supplierB.ID, entity.QuoteStatusReceived, 10, 95)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	ids := []string{quoteA.ID, quoteB.ID}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Quote.Select(ctx, ids[i], "test-user-001")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		if err == nil {
			winners++
			continue
		}
		if !IsCode(err, CodeAlreadyDecided) {
			t.Errorf("loser %d: expected already_decided, got %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	var selectedCount int64
	db.Model(&entity.Quote{}).
		Where("rfq_id = ? AND status = ?", rfq.ID, entity.QuoteStatusSelected).
		Count(&selectedCount)
	if selectedCount != 1 {
		t.Fatalf("selected quotes = %d, want exactly 1", selectedCount)
	}
}
