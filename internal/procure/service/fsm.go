package service

import (
	"github.com/mantispro/satinalma/internal/procure/entity"
)

// Workflow events accepted by the transition tables.
const (
	EventApprove               = "approve"
	EventReject                = "reject"
	EventCreateRFQ             = "create_rfq"
	EventPlaceOrder            = "place_order"
	EventComplete              = "complete"
	EventEvaluate              = "evaluate"
	EventSelect                = "select"
	EventSend                  = "send"
	EventConfirm               = "confirm"
	EventBeginProduction       = "begin_production"
	EventShip                  = "ship"
	EventTransit               = "transit"
	EventDeliver               = "deliver"
	EventAllShipmentsDelivered = "all_shipments_delivered"
	EventFullyPaid             = "fully_paid"
	EventCancel                = "cancel"
	EventAccept                = "accept"
	EventMarkResponses         = "mark_responses"
)

// transition applies one transition table lookup. The zero nextState means
// the (state, event) pair has no rule; callers translate that into an
// invalid_transition error with no mutation performed.
func transition[S ~string](table map[S]map[string]S, current S, event string) (S, bool) {
	events, ok := table[current]
	if !ok {
		return "", false
	}
	next, ok := events[event]
	return next, ok
}

var requestTransitions = map[entity.RequestStatus]map[string]entity.RequestStatus{
	entity.RequestStatusPending: {
		EventApprove: entity.RequestStatusApproved,
		EventReject:  entity.RequestStatusRejected,
	},
	entity.RequestStatusApproved: {
		EventCreateRFQ: entity.RequestStatusRFQCreated,
	},
	entity.RequestStatusRFQCreated: {
		EventPlaceOrder: entity.RequestStatusOrderPlaced,
	},
	entity.RequestStatusOrderPlaced: {
		EventComplete: entity.RequestStatusCompleted,
	},
}

var quoteTransitions = map[entity.QuoteStatus]map[string]entity.QuoteStatus{
	entity.QuoteStatusReceived: {
		EventEvaluate: entity.QuoteStatusUnderReview,
		EventSelect:   entity.QuoteStatusSelected,
		EventReject:   entity.QuoteStatusRejected,
	},
	entity.QuoteStatusUnderReview: {
		EventEvaluate: entity.QuoteStatusUnderReview,
		EventSelect:   entity.QuoteStatusSelected,
		EventReject:   entity.QuoteStatusRejected,
	},
	entity.QuoteStatusSelected: {
		EventReject: entity.QuoteStatusRejected,
	},
}

var rfqTransitions = map[entity.RFQStatus]map[string]entity.RFQStatus{
	entity.RFQStatusDraft: {
		EventSend: entity.RFQStatusSent,
	},
	entity.RFQStatusSent: {
		EventMarkResponses: entity.RFQStatusResponsesReceived,
		EventComplete:      entity.RFQStatusCompleted,
	},
	entity.RFQStatusResponsesReceived: {
		EventMarkResponses: entity.RFQStatusResponsesReceived,
		EventComplete:      entity.RFQStatusCompleted,
	},
}

var poTransitions = map[entity.POStatus]map[string]entity.POStatus{
	entity.POStatusDraft: {
		EventSend: entity.POStatusSent,
	},
	entity.POStatusSent: {
		EventConfirm: entity.POStatusConfirmed,
	},
	entity.POStatusConfirmed: {
		EventBeginProduction: entity.POStatusProduction,
	},
	entity.POStatusProduction: {
		EventShip: entity.POStatusShipped,
	},
	entity.POStatusShipped: {
		EventAllShipmentsDelivered: entity.POStatusDelivered,
	},
}

var shipmentTransitions = map[entity.ShipmentStatus]map[string]entity.ShipmentStatus{
	entity.ShipmentStatusPreparing: {
		EventShip: entity.ShipmentStatusShipped,
	},
	entity.ShipmentStatusShipped: {
		EventTransit: entity.ShipmentStatusInTransit,
		EventDeliver: entity.ShipmentStatusDelivered,
	},
	entity.ShipmentStatusInTransit: {
		EventDeliver: entity.ShipmentStatusDelivered,
	},
}

var invoiceTransitions = map[entity.InvoiceStatus]map[string]entity.InvoiceStatus{
	entity.InvoiceStatusDraft: {
		EventApprove: entity.InvoiceStatusApproved,
		EventCancel:  entity.InvoiceStatusCancelled,
	},
	entity.InvoiceStatusApproved: {
		EventFullyPaid: entity.InvoiceStatusPaid,
		EventCancel:    entity.InvoiceStatusCancelled,
	},
}

var proformaTransitions = map[entity.ProformaStatus]map[string]entity.ProformaStatus{
	entity.ProformaStatusDraft: {
		EventSend:   entity.ProformaStatusSent,
		EventReject: entity.ProformaStatusRejected,
	},
	entity.ProformaStatusSent: {
		EventAccept: entity.ProformaStatusAccepted,
		EventReject: entity.ProformaStatusRejected,
		EventCancel: entity.ProformaStatusExpired,
	},
}

// NextRequestStatus resolves a request event or fails invalid_transition.
func NextRequestStatus(current entity.RequestStatus, event, requestID string) (entity.RequestStatus, error) {
	next, ok := transition(requestTransitions, current, event)
	if !ok {
		return "", newWorkflowError(CodeInvalidTransition, "request", requestID,
			"no transition for event "+event+" from status "+string(current))
	}
	return next, nil
}

// NextQuoteStatus resolves a quote event or fails invalid_transition.
func NextQuoteStatus(current entity.QuoteStatus, event, quoteID string) (entity.QuoteStatus, error) {
	next, ok := transition(quoteTransitions, current, event)
	if !ok {
		return "", newWorkflowError(CodeInvalidTransition, "quote", quoteID,
			"no transition for event "+event+" from status "+string(current))
	}
	return next, nil
}

// NextRFQStatus resolves an RFQ event or fails invalid_transition.
func NextRFQStatus(current entity.RFQStatus, event, rfqID string) (entity.RFQStatus, error) {
	next, ok := transition(rfqTransitions, current, event)
	if !ok {
		return "", newWorkflowError(CodeInvalidTransition, "rfq", rfqID,
			"no transition for event "+event+" from status "+string(current))
	}
	return next, nil
}

// NextPOStatus resolves a purchase order event or fails invalid_transition.
func NextPOStatus(current entity.POStatus, event, poID string) (entity.POStatus, error) {
	next, ok := transition(poTransitions, current, event)
	if !ok {
		return "", newWorkflowError(CodeInvalidTransition, "purchase_order", poID,
			"no transition for event "+event+" from status "+string(current))
	}
	return next, nil
}

// NextShipmentStatus resolves a shipment event or fails invalid_transition.
func NextShipmentStatus(current entity.ShipmentStatus, event, shipmentID string) (entity.ShipmentStatus, error) {
	next, ok := transition(shipmentTransitions, current, event)
	if !ok {
		return "", newWorkflowError(CodeInvalidTransition, "shipment", shipmentID,
			"no transition for event "+event+" from status "+string(current))
	}
	return next, nil
}

// NextInvoiceStatus resolves an invoice event or fails invalid_transition.
func NextInvoiceStatus(current entity.InvoiceStatus, event, invoiceID string) (entity.InvoiceStatus, error) {
	next, ok := transition(invoiceTransitions, current, event)
	if !ok {
		return "", newWorkflowError(CodeInvalidTransition, "invoice", invoiceID,
			"no transition for event "+event+" from status "+string(current))
	}
	return next, nil
}

// NextProformaStatus resolves a proforma event or fails invalid_transition.
func NextProformaStatus(current entity.ProformaStatus, event, proformaID string) (entity.ProformaStatus, error) {
	next, ok := transition(proformaTransitions, current, event)
	if !ok {
		return "", newWorkflowError(CodeInvalidTransition, "proforma_invoice", proformaID,
			"no transition for event "+event+" from status "+string(current))
	}
	return next, nil
}
