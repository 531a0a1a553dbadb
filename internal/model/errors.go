package model

import "errors"

// Request processing failures. Everything a caller can observe collapses to one
// of these; internal diagnostic detail stays in the logs.
var (
	// ErrMalformedCredential indicates the Authorization header did not carry a
	// "Bearer " credential at all.
	ErrMalformedCredential = errors.New("invalid authorization format")

	// ErrUnauthorized covers every token validation failure (expired, bad
	// signature, malformed claims). The causes are deliberately not distinguished
	// past the verifier boundary.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidPayload indicates the request body was not parsable JSON.
	ErrInvalidPayload = errors.New("invalid JSON format")

	// ErrMissingField indicates a required body field was absent.
	ErrMissingField = errors.New("missing required fields: userId, data")

	// ErrStorage indicates a downstream store read or write failed. Retryable by
	// the caller; a retried ingest creates a new record with a new identifier.
	ErrStorage = errors.New("database error")
)
