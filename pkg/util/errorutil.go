package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies application errors independently of their wording.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthFailed
	KindUnauthenticated
	KindForbidden
	// KindLegacy marks errors whose status is derived from the message text.
	KindLegacy
)

// Messages shared by the service and the transport layer.
const (
	MsgNoPermission      = "don't have permission"
	MsgBadCredentials    = "user or password incorrect"
	MsgPermissionDenied  = "permission denied"
	MsgInvalidToken      = "invalid token"
	MsgFieldsRequired    = "all fields are required"
	MsgEmailExists       = "email already exists"
	MsgInternal          = "internal server error"
	codeValidationFailed = "VALIDATION_FAILED"
)

// DomainError standardizes application errors. A non-zero Status overrides
// the status derived from Kind.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Status  int
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// HTTPStatus resolves the status code for the error.
func (e *DomainError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	if e.Kind == KindLegacy {
		return LegacyStatusFromMessage(e.Message)
	}
	return StatusFor(e.Kind)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict, KindAuthFailed:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindLegacy:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// LegacyStatusFromMessage reproduces the message-sniffing classification used by
// older clients of this API.
func LegacyStatusFromMessage(message string) int {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, MsgNoPermission):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, code, message string, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindValidation, codeValidationFailed, message, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Details: details,
	}
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(KindConflict, "CONFLICT", message, details)
}

// NewAuthFailed is returned for every login failure so callers cannot tell
// which credential was wrong.
func NewAuthFailed() error {
	return NewDomainError(KindAuthFailed, "AUTH_FAILED", MsgBadCredentials, nil)
}

func NewUnauthenticated(message string) error {
	return NewDomainError(KindUnauthenticated, "UNAUTHENTICATED", message, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(KindForbidden, "FORBIDDEN", message, nil)
}

// NewPermissionDenied is the policy denial error.
func NewPermissionDenied() error {
	return NewForbidden(MsgNoPermission)
}

// NewLegacy wraps a bare message whose status is decided by its wording.
func NewLegacy(message string) error {
	return NewDomainError(KindLegacy, "ERROR", message, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:    KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: MsgInternal,
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromStatus(fiberErr.Code, fiberErr.Message)
	}
	de, _ := NewInternalError(err).(*DomainError)
	return de
}

func fromStatus(status int, message string) *DomainError {
	kind := KindInternal
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = KindValidation
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusUnauthorized:
		kind = KindUnauthenticated
	case http.StatusForbidden:
		kind = KindForbidden
	case http.StatusConflict:
		kind = KindConflict
	}
	return &DomainError{Kind: kind, Code: codeFor(kind), Message: message, Status: status}
}

func codeFor(kind Kind) string {
	switch kind {
	case KindValidation:
		return codeValidationFailed
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Kind == kind
}

func MapError(err error) error {
	return ToDomainError(err)
}
