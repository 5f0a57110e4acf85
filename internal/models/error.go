package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountBlocked  = errors.New("account is blocked")
	ErrAccountPending  = errors.New("admin request is pending approval")
	ErrAccountRejected = errors.New("admin request was rejected")

	// Catalog errors
	ErrPurchaseRequired = errors.New("premium book requires purchase")
)
