package openstack

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrEndpointNotFound  = errors.New("service endpoint not found in catalog")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrTokenRequired     = errors.New("auth token is required")
	ErrConfigRequired    = errors.New("config is required")
	ErrNoInstancePort    = errors.New("instance has no network port")
	ErrNoExternalNetwork = errors.New("no external network available")
	ErrUnexpectedPayload = errors.New("unexpected response payload")
)

// AuthHint is attached to every 401 so the operator can tell an expired
// token apart from a proxy that drops the auth headers.
const AuthHint = "the token may have expired, or X-Auth-Token is not allowed/exposed by the endpoint's cross-origin configuration"

// GatewayError is a failed upstream call. StatusCode is 0 when the request
// never produced a response.
type GatewayError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Message    string `json:"message"     yaml:"message"`
	Method     string `json:"method"      yaml:"method"`
	URL        string `json:"url"         yaml:"url"`
	Err        error  `json:"-"           yaml:"-"`
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
	}

	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Unwrap returns the transport cause, if any.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AuthError is a 401 from any service.
type AuthError struct {
	Gateway *GatewayError
	Hint    string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s (%s)", e.Gateway.Error(), e.Hint)
}

// Unwrap exposes the underlying GatewayError to errors.As.
func (e *AuthError) Unwrap() error {
	return e.Gateway
}

// ValidationError is a request rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidRequest.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RequireID rejects an empty resource id. Adapters call it before building a
// URL, since an empty path segment would address the whole collection.
func RequireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(field, "is required")
	}

	return nil
}

// EndpointNotFound wraps ErrEndpointNotFound with the missing service type.
func EndpointNotFound(serviceType string) error {
	return fmt.Errorf("%w: %s", ErrEndpointNotFound, serviceType)
}

// StatusCode returns the upstream status code carried by err, or 0.
func StatusCode(err error) int {
	gwErr := &GatewayError{}
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the upstream reported 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsEndpointNotFound checks if a required service is missing from the catalog.
func IsEndpointNotFound(err error) bool {
	return errors.Is(err, ErrEndpointNotFound)
}
