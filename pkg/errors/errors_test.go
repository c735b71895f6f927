package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeInvalidAddress, "bad address: %s", "xyz"),
			want: "INVALID_ADDRESS: bad address: xyz",
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodeNetwork, stderrors.New("connection refused"), "fetch failed"),
			want: "NETWORK_ERROR: fetch failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs_MatchesCode(t *testing.T) {
	err := New(ErrCodeUnsupportedAddress, "taproot addresses are not supported")

	if !Is(err, ErrCodeUnsupportedAddress) {
		t.Error("expected Is to match UNSUPPORTED_ADDRESS")
	}
	if Is(err, ErrCodeInvalidAddress) {
		t.Error("expected Is not to match INVALID_ADDRESS")
	}

	// Wrapped in a plain error, the code should still be found.
	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, ErrCodeUnsupportedAddress) {
		t.Error("expected Is to unwrap and match")
	}
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	err := Wrap(ErrCodeTimeout, cause, "request timed out")

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeAddressNotFound, "address not found upstream")
	if got := UserMessage(err); got != "address not found upstream" {
		t.Errorf("UserMessage() = %q", got)
	}

	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"InvalidAddress", New(ErrCodeInvalidAddress, "bad"), http.StatusBadRequest},
		{"UnsupportedAddress", New(ErrCodeUnsupportedAddress, "taproot"), http.StatusBadRequest},
		{"AddressNotFound", New(ErrCodeAddressNotFound, "missing"), http.StatusNotFound},
		{"SessionNotFound", New(ErrCodeSessionNotFound, "missing"), http.StatusNotFound},
		{"RateLimitedCode", New(ErrCodeRateLimited, "throttled"), http.StatusServiceUnavailable},
		{"RateLimitedType", &RateLimitedError{RetryAfter: 30}, http.StatusServiceUnavailable},
		{"Timeout", New(ErrCodeTimeout, "deadline"), http.StatusGatewayTimeout},
		{"Network", New(ErrCodeNetwork, "refused"), http.StatusServiceUnavailable},
		{"UpstreamForwarded", &UpstreamError{Status: 502}, http.StatusBadGateway},
		{"MalformedPage", New(ErrCodeInvalidPage, "bad json"), http.StatusBadGateway},
		{"Unknown", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRateLimitedError_Error(t *testing.T) {
	e := &RateLimitedError{RetryAfter: 5}
	if e.Error() != "rate limited: retry after 5 seconds" {
		t.Errorf("unexpected message: %s", e.Error())
	}
	if (&RateLimitedError{}).Error() != "rate limited" {
		t.Error("expected bare message without RetryAfter")
	}
}

func TestUpstreamError_WrappedCodeDetection(t *testing.T) {
	err := Wrap(ErrCodeUpstream, &UpstreamError{Status: 451, Detail: "unavailable"}, "ledger API rejected request")
	if got := HTTPStatus(err); got != 451 {
		t.Errorf("expected upstream status to be forwarded, got %d", got)
	}
}
