// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request failed validation.
var ErrValidation = errors.New("validation failed")

// ErrNotConfigured indicates a required collaborator (URL, credential) is absent.
var ErrNotConfigured = errors.New("not configured")
