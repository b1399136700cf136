// Package repository contains data access logic separated from HTTP handlers.
// Storage errors are returned verbatim; the sentinel values below let
// handlers map the expected outcomes to status codes.
package repository

import "errors"

// ErrItemNotFound is returned when no item matches the requested
// identifier, including identifiers that are not valid ObjectIDs.
// Handlers translate it into an HTTP 404 response.
var ErrItemNotFound = errors.New("item not found")
