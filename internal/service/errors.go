package service

import "errors"

// Sentinel errors the handlers map onto HTTP status codes.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("record not found")
	ErrDuplicateOrderID      = errors.New("order ID already exists")
	ErrNotPending            = errors.New("transaction is not in PENDING state")
	ErrRejectionNoteRequired = errors.New("rejection note is required")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrEmailTaken            = errors.New("email already registered")
	ErrSetupDisabled         = errors.New("setup endpoint is disabled in production")
)
