package httpapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/internal/errutil"
)

type errorResponse struct {
	Error        string            `json:"error"`
	Code         string            `json:"code,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	AttemptsLeft int               `json:"attemptsLeft,omitempty"`
	StatusCode   int               `json:"statusCode"`
	Timestamp    time.Time         `json:"timestamp"`
	Path         string            `json:"path"`
	Stack        string            `json:"stack,omitempty"`
}

var errInvalidBody = otpauth.ErrInvalidInput.WithMessage("Invalid JSON body")

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, r, errInvalidBody)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.l.ErrorContext(r.Context(), "failed to encode response", "error", err, "path", r.URL.Path)
	}
}

// writeError renders err. Unstructured errors become a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := autherr.As(err)
	if !ok {
		errutil.LogError(r.Context(), h.l, "unhandled error", err)
		ae = autherr.New(autherr.KindInternal, "INTERNAL", "Internal server error")
	}

	code := StatusFor(ae.Kind)
	resp := errorResponse{
		Error:        ae.Message,
		Code:         ae.Code,
		Details:      ae.Details,
		AttemptsLeft: ae.AttemptsLeft,
		StatusCode:   code,
		Timestamp:    h.now().UTC(),
		Path:         r.URL.Path,
	}
	if h.opts.Development {
		if oopsErr, ok := oops.AsOops(err); ok {
			resp.Stack = oopsErr.Stacktrace()
		}
	}
	if ae.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(ae.RetryAfter.Seconds()))))
	}

	h.writeJSON(w, r, code, resp)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind autherr.Kind) int {
	switch kind {
	case autherr.KindValidation:
		return http.StatusBadRequest
	case autherr.KindAuth:
		return http.StatusUnauthorized
	case autherr.KindNotFound:
		return http.StatusNotFound
	case autherr.KindTemporarilyLocked, autherr.KindTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
