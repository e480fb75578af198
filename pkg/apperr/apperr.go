package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason    = "reason"
	MetaStage     = "stage"
	MetaField     = "field"
	MetaEndpoint  = "endpoint"
	MetaURL       = "url"
	MetaContextID = "context_id"
	MetaStatus    = "status_code"
	MetaAttempts  = "attempts"

	StageTransport = "transport"
	StageReadiness = "readiness"
	StageSession   = "session"
	StageAnalysis  = "analysis"

	CodeInternal              = "internal"
	CodeInvalidArgument       = "invalid_argument"
	CodeConnectionUnavailable = "connection_unavailable"
	CodeTimeout               = "timeout"
	CodeRemoteRejected        = "remote_rejected"
	CodeServiceUnavailable    = "service_unavailable"
	CodeNoActiveContext       = "no_active_context"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapWithReason(op, code string, err error, reason string) error {
	return Wrap(op, code, err, map[string]any{
		MetaReason: reason,
	})
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, fmt.Errorf("%s", reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

// CodeOf returns the code of the outermost *Error in err's chain,
// or "" when err carries no taxonomy code.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return ""
}

func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Retriable reports whether the caller may reasonably retry the failed
// operation. Only transport-class failures qualify; remote rejections and
// local precondition violations do not.
func Retriable(err error) bool {
	switch CodeOf(err) {
	case CodeConnectionUnavailable, CodeTimeout:
		return true
	default:
		return false
	}
}
