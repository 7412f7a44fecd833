package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the entity's current status
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStorage is returned when a database write fails mid-operation
	ErrStorage = errors.New("storage failure")

	// ErrProposalNotPending is returned when a lifecycle action requires a
	// pending proposal
	ErrProposalNotPending = errors.New("proposal is not pending")

	// ErrProposalAlreadyConverted is returned when acting on a proposal that
	// has already been converted to a project
	ErrProposalAlreadyConverted = errors.New("proposal already converted to a project")

	// ErrProjectExistsForProposal is returned when deleting a proposal that
	// still has a project
	ErrProjectExistsForProposal = errors.New("proposal has an associated project")

	// ErrLegalReviewComplete is returned when updating legal status after a
	// terminal legal decision
	ErrLegalReviewComplete = errors.New("legal review already resolved")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
)
