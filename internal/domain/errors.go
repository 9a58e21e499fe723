package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the BFF.
//
// The first four mirror the failure classes of a call to the remote API:
// nothing came back (ErrNetwork), an HTTP error status came back
// (ErrHTTPStatus), a 2xx came back with success=false (ErrApplication), or a
// 2xx came back that does not match the expected envelope (ErrMalformed).

// ErrNetwork indicates the remote API produced no response at all.
type ErrNetwork struct {
	Op  string
	Err error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network error [%s]: %v", e.Op, e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrHTTPStatus indicates the remote API answered with a non-2xx status.
// Message carries the envelope message when the body could be decoded.
type ErrHTTPStatus struct {
	Op      string
	Status  int
	Message string
}

func (e *ErrHTTPStatus) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Op, e.Status)
}

// ErrApplication indicates a 2xx response carrying success=false.
type ErrApplication struct {
	Op      string
	Message string
}

func (e *ErrApplication) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

// ErrMalformed indicates a response that does not match the envelope contract.
type ErrMalformed struct {
	Op     string
	Reason string
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Op, e.Reason)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrExternalService indicates a failure in a third-party service call
// (currency rates, object storage).
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input). Message is shown
// to the user as is.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrForbidden indicates the session lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates there is no usable session.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// Generic notification strings.
const (
	MsgConnectionFailed = "No se pudo conectar al servidor"
	MsgServiceDown      = "El servicio no está disponible. Inténtelo más tarde."
	MsgForbidden        = "No tiene permisos para realizar esta acción."
	MsgSessionExpired   = "Su sesión expiró. Ingrese nuevamente."
)

// UserMessage converts any error into the single string shown to the user.
// The remote API's own message wins when it sent one; otherwise fallback is
// used, except for failures that have a fixed wording of their own.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var (
		network     *ErrNetwork
		status      *ErrHTTPStatus
		app         *ErrApplication
		validation  *ErrValidation
		forbidden   *ErrForbidden
		circuitOpen *ErrCircuitOpen
		unauth      *ErrUnauthorized
	)

	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &app):
		if app.Message != "" {
			return app.Message
		}
	case errors.As(err, &status):
		if status.Message != "" {
			return status.Message
		}
	case errors.As(err, &network):
		return MsgConnectionFailed
	case errors.As(err, &circuitOpen):
		return MsgServiceDown
	case errors.As(err, &forbidden):
		return MsgForbidden
	case errors.As(err, &unauth):
		return MsgSessionExpired
	}
	return fallback
}
