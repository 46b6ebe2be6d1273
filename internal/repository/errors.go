// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no row. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrNameExists is returned when creating a hospital whose display name
// or username collides with an existing row.
var ErrNameExists = errors.New("hospital name or username already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062) on any unique index.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
