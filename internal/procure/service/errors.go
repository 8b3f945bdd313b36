package service

import (
	"errors"
	"fmt"
)

// Workflow error codes. Every failed operation surfaces exactly one of
// these, with the entity id and the violated rule attached.
const (
	CodePreconditionFailed  = "precondition_failed"
	CodeInvalidTransition   = "invalid_transition"
	CodeInvalidAmount       = "invalid_amount"
	CodeNotFound            = "not_found"
	CodeConstraintViolation = "constraint_violation"
	CodeConcurrencyConflict = "concurrency_conflict"
	CodeAlreadyDecided      = "already_decided"
)

// WorkflowError is the typed failure of a workflow operation. The enclosing
// transaction is always rolled back before one of these is returned.
type WorkflowError struct {
	Code     string `json:"code"`
	Entity   string `json:"entity"`
	EntityID string `json:"entity_id"`
	Detail   string `json:"detail"`
}

func (e *WorkflowError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Code, e.Entity, e.EntityID, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Entity, e.Detail)
}

func newWorkflowError(code, entity, entityID, detail string) *WorkflowError {
	return &WorkflowError{Code: code, Entity: entity, EntityID: entityID, Detail: detail}
}

// ErrPrecondition reports an entity not in a state permitting the operation.
func ErrPrecondition(entity, id, detail string) *WorkflowError {
	return newWorkflowError(CodePreconditionFailed, entity, id, detail)
}

// ErrInvalidAmount reports a non-positive or over-balance payment amount.
func ErrInvalidAmount(entity, id, detail string) *WorkflowError {
	return newWorkflowError(CodeInvalidAmount, entity, id, detail)
}

// ErrEntityNotFound reports a missing referenced entity.
func ErrEntityNotFound(entity, id string) *WorkflowError {
	return newWorkflowError(CodeNotFound, entity, id, "record not found")
}

// ErrConstraint reports a violated business constraint.
func ErrConstraint(entity, id, detail string) *WorkflowError {
	return newWorkflowError(CodeConstraintViolation, entity, id, detail)
}

// ErrConcurrency reports lock contention or a stale read detected mid-write.
func ErrConcurrency(entity, id, detail string) *WorkflowError {
	return newWorkflowError(CodeConcurrencyConflict, entity, id, detail)
}

// ErrAlreadyDecided reports a decision that was already made, such as
// selecting a second quote on an RFQ that has a winner.
func ErrAlreadyDecided(entity, id, detail string) *WorkflowError {
	return newWorkflowError(CodeAlreadyDecided, entity, id, detail)
}

// IsCode reports whether err is a WorkflowError with the given code.
func IsCode(err error, code string) bool {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}

// AsWorkflowError unwraps err to a WorkflowError, or nil.
func AsWorkflowError(err error) *WorkflowError {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we
	}
	return nil
}
