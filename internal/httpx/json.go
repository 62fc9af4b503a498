package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/campusworks/portal-session/internal/errors"
	"github.com/campusworks/portal-session/internal/service"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// flowErrorBody is the wire shape for classified auth flow failures.
type flowErrorBody struct {
	Error       string   `json:"error"`
	Category    string   `json:"category"`
	Message     string   `json:"message"`
	Recoverable bool     `json:"recoverable"`
	Violations  []string `json:"violations,omitempty"`
}

// WriteFlowError maps an auth flow failure to an HTTP status and writes
// the classified body. Busy rejections are 409 so the client knows the
// prior submission is still in flight.
func WriteFlowError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrFlowBusy) {
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "flow_busy", Err: err})
		return
	}

	var ferr *service.FlowError
	if !errors.As(err, &ferr) {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "unexpected", Err: err})
		return
	}

	body := flowErrorBody{
		Error:       string(ferr.Code),
		Category:    string(ferr.Category),
		Message:     ferr.Message,
		Recoverable: ferr.Recoverable(),
	}
	for _, v := range ferr.Violations {
		body.Violations = append(body.Violations, string(v))
	}
	WriteJSON(w, flowErrorStatus(ferr), body)
}

// flowErrorStatus picks the status code for a classified flow failure.
func flowErrorStatus(ferr *service.FlowError) int {
	if ferr.Code == service.FlowErrRateLimited {
		return http.StatusTooManyRequests
	}
	switch ferr.Category {
	case apperrors.ErrCodeCredential:
		return http.StatusUnauthorized
	case apperrors.ErrCodeVerification, apperrors.ErrCodePolicy:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError maps an application error to an HTTP status by its code.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeCredential:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeAuthorization:
		status = http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeConflict:
		status = http.StatusConflict
	case apperrors.ErrCodePolicy, apperrors.ErrCodeVerification:
		status = http.StatusUnprocessableEntity
	case apperrors.ErrCodeTransport:
		status = http.StatusBadGateway
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Err: err})
}
