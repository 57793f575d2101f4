// Package common defines shared constants and sentinel errors used across
// the dataloader and security services. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// CSV ingestion errors. ErrSchemaInvalid and ErrMalformedInput are the
	// internal classes, both reported to callers as ErrInvalidFormat.
	ErrInvalidFormat  = errors.New("invalid format")
	ErrSchemaInvalid  = errors.New("schema invalid")
	ErrMalformedInput = errors.New("malformed input")
)
