package service

import (
	"testing"

	"github.com/mantispro/satinalma/internal/procure/entity"
)

func TestRequestTransitions(t *testing.T) {
	cases := []struct {
		from    entity.RequestStatus
		event   string
		want    entity.RequestStatus
		wantErr bool
	}{
		{entity.RequestStatusPending, EventApprove, entity.RequestStatusApproved, false},
		{entity.RequestStatusPending, EventReject, entity.RequestStatusRejected, false},
		{entity.RequestStatusApproved, EventCreateRFQ, entity.RequestStatusRFQCreated, false},
		{entity.RequestStatusRFQCreated, EventPlaceOrder, entity.RequestStatusOrderPlaced, false},
		{entity.RequestStatusOrderPlaced, EventComplete, entity.RequestStatusCompleted, false},
		// rejected is terminal
		{entity.RequestStatusRejected, EventApprove, "", true},
		// no skipping stages
		{entity.RequestStatusPending, EventCreateRFQ, "", true},
		{entity.RequestStatusApproved, EventComplete, "", true},
		{entity.RequestStatusCompleted, EventApprove, "", true},
	}

	for _, tc := range cases {
		got, err := NextRequestStatus(tc.from, tc.event, "req-1")
		if tc.wantErr {
			if err == nil {
				t.Errorf("NextRequestStatus(%s, %s): expected error, got %s", tc.from, tc.event, got)
			} else if !IsCode(err, CodeInvalidTransition) {
				t.Errorf("NextRequestStatus(%s, %s): expected invalid_transition, got %v", tc.from, tc.event, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NextRequestStatus(%s, %s): unexpected error %v", tc.from, tc.event, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NextRequestStatus(%s, %s) = %s, want %s", tc.from, tc.event, got, tc.want)
		}
	}
}

func TestQuoteTransitions(t *testing.T) {
	// select straight from received and from under_review both work
	if got, err := NextQuoteStatus(entity.QuoteStatusReceived, EventSelect, "q-1"); err != nil || got != entity.QuoteStatusSelected {
		t.Errorf("select from received: got %s, err %v", got, err)
	}
	if got, err := NextQuoteStatus(entity.QuoteStatusUnderReview, EventSelect, "q-1"); err != nil || got != entity.QuoteStatusSelected {
		t.Errorf("select from under_review: got %s, err %v", got, err)
	}
	// rejected is terminal
	if _, err := NextQuoteStatus(entity.QuoteStatusRejected, EventSelect, "q-1"); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("select from rejected: expected invalid_transition, got %v", err)
	}
}

func TestPOTransitionsFollowSupplyChain(t *testing.T) {
	order := []struct {
		event string
		want  entity.POStatus
	}{
		{EventSend, entity.POStatusSent},
		{EventConfirm, entity.POStatusConfirmed},
		{EventBeginProduction, entity.POStatusProduction},
		{EventShip, entity.POStatusShipped},
		{EventAllShipmentsDelivered, entity.POStatusDelivered},
	}

	status := entity.POStatusDraft
	for _, step := range order {
		next, err := NextPOStatus(status, step.event, "po-1")
		if err != nil {
			t.Fatalf("NextPOStatus(%s, %s): %v", status, step.event, err)
		}
		if next != step.want {
			t.Fatalf("NextPOStatus(%s, %s) = %s, want %s", status, step.event, next, step.want)
		}
		status = next
	}

	// draft cannot jump to delivered
	if _, err := NextPOStatus(entity.POStatusDraft, EventAllShipmentsDelivered, "po-1"); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("expected invalid_transition, got %v", err)
	}
}

func TestShipmentTransitions(t *testing.T) {
	// deliver works from shipped and in_transit
	if got, err := NextShipmentStatus(entity.ShipmentStatusShipped, EventDeliver, "shp-1"); err != nil || got != entity.ShipmentStatusDelivered {
		t.Errorf("deliver from shipped: got %s, err %v", got, err)
	}
	if got, err := NextShipmentStatus(entity.ShipmentStatusInTransit, EventDeliver, "shp-1"); err != nil || got != entity.ShipmentStatusDelivered {
		t.Errorf("deliver from in_transit: got %s, err %v", got, err)
	}
	// but not straight from preparing
	if _, err := NextShipmentStatus(entity.ShipmentStatusPreparing, EventDeliver, "shp-1"); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("deliver from preparing: expected invalid_transition, got %v", err)
	}
}

func TestInvoiceTransitions(t *testing.T) {
	if got, err := NextInvoiceStatus(entity.InvoiceStatusApproved, EventFullyPaid, "inv-1"); err != nil || got != entity.InvoiceStatusPaid {
		t.Errorf("fully_paid from approved: got %s, err %v", got, err)
	}
	// cancel allowed from non-terminal states only
	if got, err := NextInvoiceStatus(entity.InvoiceStatusDraft, EventCancel, "inv-1"); err != nil || got != entity.InvoiceStatusCancelled {
		t.Errorf("cancel from draft: got %s, err %v", got, err)
	}
	if _, err := NextInvoiceStatus(entity.InvoiceStatusPaid, EventCancel, "inv-1"); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("cancel from paid: expected invalid_transition, got %v", err)
	}
}

func TestInvalidTransitionCarriesEntityID(t *testing.T) {
	_, err := NextProformaStatus(entity.ProformaStatusAccepted, EventSend, "prf-42")
	we := AsWorkflowError(err)
	if we == nil {
		t.Fatalf("expected WorkflowError, got %v", err)
	}
	if we.Code != CodeInvalidTransition {
		t.Errorf("code = %s, want %s", we.Code, CodeInvalidTransition)
	}
	if we.EntityID != "prf-42" {
		t.Errorf("entity id = %s, want prf-42", we.EntityID)
	}
}
