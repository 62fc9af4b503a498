package httpx

import (
	"log/slog"
	"net/http"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	apperrors "github.com/campusworks/portal-session/internal/errors"
	"github.com/campusworks/portal-session/internal/ports"
	"github.com/campusworks/portal-session/internal/service"
)

// SessionHandlers provides HTTP handlers for session lifecycle operations.
type SessionHandlers struct {
	Controller *service.Controller
	Boundary   ports.IdentityBoundary
	Logger     *slog.Logger
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// identityBody is the wire shape of a resolved identity.
type identityBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// profileBody is the wire shape of a resolved profile.
type profileBody struct {
	FullName      string `json:"full_name"`
	Verified      bool   `json:"verified"`
	Program       string `json:"program,omitempty"`
	StudentNumber string `json:"student_number,omitempty"`
}

// sessionBody is the wire shape of a session snapshot plus the shell
// decision derived from it.
type sessionBody struct {
	Authenticated bool          `json:"authenticated"`
	Shell         string        `json:"shell"`
	Identity      *identityBody `json:"identity,omitempty"`
	Profile       *profileBody  `json:"profile,omitempty"`
}

func snapshotBody(snap domainsession.Snapshot, shell service.Shell) sessionBody {
	body := sessionBody{
		Authenticated: snap.Authenticated(),
		Shell:         string(shell),
	}
	if snap.Identity != nil {
		body.Identity = &identityBody{
			ID:    snap.Identity.ID,
			Email: snap.Identity.Email,
			Role:  string(snap.Identity.Role),
		}
	}
	if snap.Profile != nil {
		body.Profile = &profileBody{
			FullName:      snap.Profile.FullName,
			Verified:      snap.Profile.Verified,
			Program:       snap.Profile.Program,
			StudentNumber: snap.Profile.StudentNumber,
		}
	}
	return body
}

// Current returns the current snapshot and shell decision.
// GET /session?in_auth_ui=true.
func (h *SessionHandlers) Current(w http.ResponseWriter, r *http.Request) {
	inAuthUI := r.URL.Query().Get("in_auth_ui") == "true"
	snap := h.Controller.Snapshot()
	WriteJSON(w, http.StatusOK, snapshotBody(snap, h.Controller.Shell(inAuthUI)))
}

// Refresh revalidates the session against the boundary and returns the
// replaced snapshot.
// POST /session/refresh.
func (h *SessionHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	snap := h.Controller.Refresh(r.Context())
	WriteJSON(w, http.StatusOK, snapshotBody(snap, h.Controller.Shell(false)))
}

// SignOut invalidates the session. The local snapshot is signed-out
// either way; force_reload signals that the boundary call failed and the
// client should do a full reload rather than trust its surface state.
// POST /session/signout.
func (h *SessionHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	forceReload := false
	if err := h.Controller.SignOut(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "sign-out completed with boundary error", "error", err)
		forceReload = true
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"signed_out":   true,
		"force_reload": forceReload,
	})
}

// recoveryBody is the wire shape of a recovery-link guard decision.
type recoveryBody struct {
	Valid      bool   `json:"valid"`
	SignedOut  bool   `json:"signed_out"`
	RedirectTo string `json:"redirect_to"`
}

// Recovery validates an inbound password recovery link and applies the
// route guard. Links missing type=recovery or a token are invalid and
// redirect home. A valid link reaching a live session forces a sign-out
// before the client may enter the reset screen.
// GET /auth/recovery?type=recovery&token=...&redirect=/reset-password.
func (h *SessionHandlers) Recovery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("type") != "recovery" || q.Get("token") == "" {
		WriteJSON(w, http.StatusOK, recoveryBody{Valid: false, RedirectTo: "/"})
		return
	}

	path := q.Get("redirect")
	if path == "" {
		path = "/reset-password"
	}

	forced, err := h.Controller.GuardPath(r.Context(), path)
	if err != nil && !forced {
		// The guard never settled (request canceled before the initial
		// refresh resolved).
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "guard_interrupted", Err: err})
		return
	}
	if err != nil {
		// Forced sign-out failed at the boundary; the local session is
		// cleared, so the reset screen is still safe to enter.
		h.logger().WarnContext(r.Context(), "recovery guard sign-out failed at boundary", "error", err)
	}

	WriteJSON(w, http.StatusOK, recoveryBody{Valid: true, SignedOut: forced, RedirectTo: path})
}

// SetPassword completes the recovery flow: it verifies the recovery code,
// applies the new password, and refreshes the snapshot.
// POST /auth/set-password.
func (h *SessionHandlers) SetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	if body.Email == "" || body.Code == "" {
		WriteAppError(w, apperrors.Verification("recovery email and code are required"))
		return
	}
	if violations := service.CheckPassword(body.Password); len(violations) > 0 {
		WriteFlowError(w, &service.FlowError{
			Code:       service.FlowErrWeakPassword,
			Category:   apperrors.ErrCodePolicy,
			Message:    "password does not meet the complexity rules",
			Violations: violations,
		})
		return
	}

	if _, err := h.Boundary.VerifyOTP(r.Context(), body.Email, body.Code, ports.OTPPurposeRecovery); err != nil {
		WriteFlowError(w, flowErrorFrom(err))
		return
	}
	if err := h.Boundary.SetPassword(r.Context(), body.Password); err != nil {
		WriteFlowError(w, flowErrorFrom(err))
		return
	}

	snap := h.Controller.Refresh(r.Context())
	WriteJSON(w, http.StatusOK, snapshotBody(snap, h.Controller.Shell(false)))
}

// flowErrorFrom classifies a raw boundary error the same way the flow
// machine does, for handlers that call the boundary directly.
func flowErrorFrom(err error) *service.FlowError {
	code, msg := service.ClassifyProviderError(err)
	category := apperrors.ErrCodeVerification
	switch code {
	case service.FlowErrRateLimited, service.FlowErrNetwork:
		category = apperrors.ErrCodeTransport
	case service.FlowErrWeakPassword:
		category = apperrors.ErrCodePolicy
	}
	return &service.FlowError{Code: code, Category: category, Message: msg}
}
