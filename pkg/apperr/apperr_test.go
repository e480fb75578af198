package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap("Request", CodeConnectionUnavailable, cause, map[string]any{
		MetaEndpoint: "/health",
	})

	if err.Error() != "Request: connection refused" {
		t.Errorf("message = %q", err.Error())
	}

	if !errors.Is(err, cause) {
		t.Error("wrapped cause is not reachable via errors.Is")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "direct",
			err:  WrapErrorWithReason("Navigate", CodeNoActiveContext, "no_active_context"),
			want: CodeNoActiveContext,
		},
		{
			name: "wrapped_in_plain_error",
			err:  fmt.Errorf("capture: %w", WrapErrorWithReason("Request", CodeTimeout, "request_timeout")),
			want: CodeTimeout,
		},
		{
			name: "plain_error",
			err:  errors.New("boom"),
			want: "",
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetriable(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{CodeConnectionUnavailable, true},
		{CodeTimeout, true},
		{CodeRemoteRejected, false},
		{CodeServiceUnavailable, false},
		{CodeNoActiveContext, false},
		{CodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := WrapErrorWithReason("op", tt.code, "reason")

			if got := Retriable(err); got != tt.want {
				t.Errorf("Retriable(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
