package utils

import "fmt"

// AuthError indicates that acquiring an OAuth token failed.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(format string, args ...interface{}) error {
	return &AuthError{Message: fmt.Sprintf(format, args...)}
}

// APIError carries the HTTP status and response body of a failed
// source API request.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("source API request failed | Status Code: %d | Response: %s", e.Status, e.Body)
}

func NewAPIError(status int, body string) error {
	return &APIError{Status: status, Body: body}
}

// StoreError wraps a destination store failure with the operation
// that produced it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// ConfigError indicates a required setting is absent or invalid. It is
// fatal at startup, before any scope is processed.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func NewConfigError(format string, args ...interface{}) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}
