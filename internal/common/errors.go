// Package common defines the sentinel errors shared across the service
// layers. Callers should use errors.Is to match these values; the transport
// layer maps them to response codes without exposing store internals.
package common

import "errors"

var (
	// Validation errors, raised before any store access.
	ErrValidation = errors.New("validation error")

	// Member-specific errors.
	ErrDuplicateMemberID  = errors.New("duplicate member id")
	ErrMemberNotFound     = errors.New("member not found")
	ErrCredentialMismatch = errors.New("id or password do not match")

	// Room-specific errors.
	ErrRoomNotFound        = errors.New("room not found")
	ErrInvalidRoomPassword = errors.New("invalid room password")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Anything unexpected from a store or cache call. Details are logged
	// internally and never surfaced to the caller.
	ErrInternal = errors.New("internal error")
)
