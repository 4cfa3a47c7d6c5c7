// Package services defines the business logic for ingestion, visits,
// ratings, lists, and users. This file centralizes common service-level
// error values so that they can be consistently returned by service
// methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer. None of them is fatal: every
// failure is either skip-and-continue (ingestion) or reject-and-report
// (workflow).
package services

import "errors"

var (
	// ErrAuthenticationRequired is returned when a workflow transition is
	// attempted without a current-user identity ("must log in").
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrRestroomNotFound indicates that the referenced restroom does not
	// exist.
	ErrRestroomNotFound = errors.New("restroom not found")

	// ErrVisitNotFound indicates that the referenced check-in does not
	// exist.
	ErrVisitNotFound = errors.New("check-in not found")

	// ErrNotVisitOwner is returned when a user attempts to rate a visit
	// that belongs to somebody else.
	ErrNotVisitOwner = errors.New("check-in belongs to another user")

	// ErrAlreadyRated is returned when a visit already has its one rating.
	// At-most-one-rating-per-visit is a hard invariant.
	ErrAlreadyRated = errors.New("check-in already rated")

	// ErrScoreOutOfRange is returned when a rating score falls outside the
	// configured bounds.
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrNotRated is returned when a rating is requested for a visit that
	// is still in its CheckedIn state.
	ErrNotRated = errors.New("check-in not yet rated")

	// ErrListNotFound indicates that the referenced list does not exist or
	// is not visible to the current user.
	ErrListNotFound = errors.New("list not found")

	// ErrDuplicateListItem is returned when the duplicate policy forbids
	// re-adding a restroom the user already has on the list.
	ErrDuplicateListItem = errors.New("restroom already on list")

	// ErrEmailTaken is returned when a registration reuses an email that
	// already resolves to an account.
	ErrEmailTaken = errors.New("email already registered")
)
