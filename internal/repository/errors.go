// Package repository contains the data access layer: one repo per entity
// family, raw parameterized SQL, manual row mapping. Sentinel errors defined
// here form the closed set of failure kinds handlers branch on; they are
// never matched by message string.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists signals a unique violation on the user email column.
var ErrEmailExists = errors.New("email already exists")

// Per-entity not-found sentinels. Each maps to HTTP 404.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrCoWorkerNotFound = errors.New("co-worker not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrBillNotFound     = errors.New("bill not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrPaymentNotFound  = errors.New("payment not found")
)
