// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidMatchInput ErrorCode = "INVALID_MATCH_INPUT"

	ErrCodeCandidateNotFound     ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeProfileLookupFailed   ErrorCode = "PROFILE_LOOKUP_FAILED"
	ErrCodeCatalogLoadFailed     ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogSearchFailed   ErrorCode = "CATALOG_SEARCH_FAILED"
	ErrCodeCatalogEmpty          ErrorCode = "CATALOG_EMPTY"
	ErrCodeCatalogIndexNotFound  ErrorCode = "CATALOG_INDEX_NOT_FOUND"
	ErrCodeSearchTimeout         ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeQueryTimeout          ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseConnection    ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeNotificationSend      ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeExternalService       ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound      ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRuleViolation ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeAuthentication        ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the internal error shape every worker converts to before
// it reaches the BPMN layer.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair that is propagated as an error variable.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// BPMNError is what a worker throws back to the process engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 2. Constructors
// ==========================

func NewInvalidMatchInputError(details string) *StandardError {
	return newError(ErrCodeInvalidMatchInput, "Invalid matching input", details, false, nil)
}

func NewCandidateNotFoundError(candidateID string) *StandardError {
	return newError(ErrCodeCandidateNotFound, "Candidate profile not found",
		fmt.Sprintf("candidateId: %s", candidateID), false, nil)
}

func NewProfileLookupFailedError(candidateID string, err error) *StandardError {
	return newError(ErrCodeProfileLookupFailed, "Candidate profile lookup failed",
		fmt.Sprintf("candidateId: %s, error: %v", candidateID, err), true, err)
}

func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Internship catalog could not be loaded",
		fmt.Sprintf("source: %s, error: %v", source, err), true, err)
}

func NewCatalogSearchFailedError(index string, err error) *StandardError {
	return newError(ErrCodeCatalogSearchFailed, "Internship search failed",
		fmt.Sprintf("index: %s, error: %v", index, err), true, err)
}

func NewCatalogIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeCatalogIndexNotFound, "Internship index not found",
		fmt.Sprintf("index: %s", index), false, nil)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Internship search timeout",
		fmt.Sprintf("index: %s", index), true, nil)
}

func NewQueryTimeoutError(query string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("query: %s", query), true, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnection, "Database connection error", err.Error(), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSend, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %v", channel, err), true, err)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRuleViolation, message, details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false, nil)
}

// ==========================
// 3. BPMN Mapping
// ==========================

// BPMNErrorMapping lists the codes modelled as error boundary events.
// Anything else is thrown with its internal code.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidMatchInput:    "INVALID_MATCH_INPUT",
	ErrCodeCandidateNotFound:    "CANDIDATE_NOT_FOUND",
	ErrCodeProfileLookupFailed:  "PROFILE_LOOKUP_FAILED",
	ErrCodeCatalogLoadFailed:    "CATALOG_UNAVAILABLE",
	ErrCodeCatalogSearchFailed:  "CATALOG_UNAVAILABLE",
	ErrCodeCatalogIndexNotFound: "CATALOG_UNAVAILABLE",
	ErrCodeSearchTimeout:        "CATALOG_UNAVAILABLE",
	ErrCodeQueryTimeout:         "DATABASE_UNAVAILABLE",
	ErrCodeDatabaseConnection:   "DATABASE_UNAVAILABLE",
	ErrCodeNotificationSend:     "NOTIFICATION_FAILED",
}

// GetRetryCount returns how many retries a code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileLookupFailed,
		ErrCodeCatalogLoadFailed,
		ErrCodeCatalogSearchFailed,
		ErrCodeDatabaseConnection,
		ErrCodeNotificationSend,
		ErrCodeExternalService:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError maps a StandardError to its BPMN form.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode reports whether code is worth retrying.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CANDIDATE") || strings.Contains(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "SEARCH"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
