// Package repository implements MySQL persistence for the platform's
// collections: events (with embedded ticket types), users,
// registrations, payments and refresh tokens. Sentinel errors defined
// here let higher layers distinguish failure scenarios without
// inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrSoldOut is returned when a conditional ticket decrement finds
// fewer tickets available than requested. The guarded UPDATE makes this
// safe under concurrent registrations for the same ticket type.
var ErrSoldOut = errors.New("not enough tickets available")

// ErrEmailExists is returned when a user registration collides with an
// existing email address.
var ErrEmailExists = errors.New("email already exists")
