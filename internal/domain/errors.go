package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrBusy         = fmt.Errorf("a turn is already in flight")
	ErrUnknownAgent = fmt.Errorf("unknown agent identifier")
	ErrDecodeFailed = fmt.Errorf("response decode failed")

	// Provider errors.
	ErrProviderError = fmt.Errorf("provider error")
	ErrRateLimit     = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid   = fmt.Errorf("authentication failed")

	// Infra errors.
	ErrConfigLoad = fmt.Errorf("failed to load configuration")
	ErrAuditWrite = fmt.Errorf("audit sink write failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g. "Classifier.Classify")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring.
type ErrorCode string

const (
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeBusy          ErrorCode = "BUSY"
	CodeUnknownAgent  ErrorCode = "UNKNOWN_AGENT"
	CodeDecodeFailed  ErrorCode = "DECODE_FAILED"
	CodeProviderError ErrorCode = "PROVIDER_ERROR"
	CodeRateLimit     ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid   ErrorCode = "AUTH_INVALID"
	CodeConfigLoad    ErrorCode = "CONFIG_LOAD"
	CodeAuditWrite    ErrorCode = "AUDIT_WRITE"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrInvalidInput:  CodeInvalidInput,
	ErrBusy:          CodeBusy,
	ErrUnknownAgent:  CodeUnknownAgent,
	ErrDecodeFailed:  CodeDecodeFailed,
	ErrProviderError: CodeProviderError,
	ErrRateLimit:     CodeRateLimit,
	ErrAuthInvalid:   CodeAuthInvalid,
	ErrConfigLoad:    CodeConfigLoad,
	ErrAuditWrite:    CodeAuditWrite,
}

// ErrorCodeOf returns the machine-parseable error code for the given error,
// walking the error chain with errors.Is. Returns CodeUnknown when no
// sentinel matches.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}
