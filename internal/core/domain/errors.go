package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Membership errors
var (
	ErrSemesterNotFound     = errors.New("semester not found")
	ErrNextSemesterNotFound = errors.New("next semester not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrRunInProgress        = errors.New("a status run is already in progress for this organization and semester")
)

// Rule configuration errors
var (
	ErrEventTypeNotFound   = errors.New("event type not found")
	ErrRuleNotFound        = errors.New("rule not found")
	ErrRequirementNotFound = errors.New("active requirement not found")
)

// Exemption errors
var (
	ErrExemptionNotFound = errors.New("exemption not found")
	ErrExemptionActive   = errors.New("member already has an open exemption")
	ErrInvalidDuration   = errors.New("exemption duration must be at least one semester")
)
