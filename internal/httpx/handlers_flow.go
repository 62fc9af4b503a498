package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusworks/portal-session/internal/service"
)

// FlowHandlers provides HTTP handlers that drive the auth flow state
// machine. Every mutation responds with the resulting flow state so the
// client never needs a follow-up read.
type FlowHandlers struct {
	Flow   *service.Flow
	Logger *slog.Logger
}

func (h *FlowHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// flowStateBody is the wire shape of the flow machine's observable state.
type flowStateBody struct {
	Step  string `json:"step"`
	Email string `json:"email,omitempty"`
	Busy  bool   `json:"busy"`
}

// fail writes a classified flow failure. Unclassified failures are logged
// first; no category explains them, so the raw error is the only lead.
func (h *FlowHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ferr *service.FlowError
	if errors.As(err, &ferr) && ferr.Code == service.FlowErrUnknown {
		h.logger().WarnContext(r.Context(), "auth flow submission failed with unclassified error", "error", err)
	}
	WriteFlowError(w, err)
}

func (h *FlowHandlers) state() flowStateBody {
	return flowStateBody{
		Step:  string(h.Flow.Step()),
		Email: h.Flow.Email(),
		Busy:  h.Flow.Busy(),
	}
}

// State returns the current flow step.
// GET /auth/flow.
func (h *FlowHandlers) State(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.state())
}

// Login submits credentials from the login step.
// POST /auth/login.
func (h *FlowHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var form service.LoginForm
	if !DecodeJSON(w, r, &form) {
		return
	}

	if err := h.Flow.SubmitLogin(r.Context(), form); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.state())
}

// Signup submits the account request step.
// POST /auth/signup.
func (h *FlowHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var form service.SignupForm
	if !DecodeJSON(w, r, &form) {
		return
	}

	if err := h.Flow.SubmitSignup(r.Context(), form); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.state())
}

// VerifyOTP submits the signup verification code.
// POST /auth/verify-otp.
func (h *FlowHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	if err := h.Flow.SubmitOTP(r.Context(), body.Code); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.state())
}

// ResendOTP re-triggers the signup code dispatch.
// POST /auth/resend-otp.
func (h *FlowHandlers) ResendOTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Flow.ResendOTP(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.state())
}

// ForgotPassword dispatches the recovery email.
// POST /auth/forgot-password.
func (h *FlowHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	if err := h.Flow.SubmitForgotPassword(r.Context(), body.Email); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.state())
}

// GoToSignup navigates login to the signup request step.
// POST /auth/goto-signup.
func (h *FlowHandlers) GoToSignup(w http.ResponseWriter, r *http.Request) {
	if err := h.Flow.GoToSignup(); err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.state())
}

// GoToForgotPassword navigates login to the forgot-password step.
// POST /auth/goto-forgot-password.
func (h *FlowHandlers) GoToForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := h.Flow.GoToForgotPassword(); err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.state())
}

// Back navigates to the previous flow step.
// POST /auth/back.
func (h *FlowHandlers) Back(w http.ResponseWriter, r *http.Request) {
	if err := h.Flow.Back(); err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.state())
}
