package httpx

import (
	"log/slog"
	"net/http"

	"github.com/campusworks/portal-session/internal/ports"
	"github.com/campusworks/portal-session/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Flow       *service.Flow
	Controller *service.Controller
	Boundary   ports.IdentityBoundary
	Logger     *slog.Logger
}

// NewRouter creates and configures the session API router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	flowHandlers := &FlowHandlers{Flow: services.Flow, Logger: logger}
	sessionHandlers := &SessionHandlers{
		Controller: services.Controller,
		Boundary:   services.Boundary,
		Logger:     logger,
	}
	signalHandlers := &SignalHandlers{Controller: services.Controller}

	registerFlowRoutes(mux, flowHandlers)
	registerSessionRoutes(mux, sessionHandlers)
	registerSignalRoutes(mux, signalHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Recover(logger)(Logging(logger)(mux))
}

func registerFlowRoutes(mux *http.ServeMux, h *FlowHandlers) {
	mux.Handle("GET /auth/flow", http.HandlerFunc(h.State))
	mux.Handle("POST /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("POST /auth/signup", http.HandlerFunc(h.Signup))
	mux.Handle("POST /auth/verify-otp", http.HandlerFunc(h.VerifyOTP))
	mux.Handle("POST /auth/resend-otp", http.HandlerFunc(h.ResendOTP))
	mux.Handle("POST /auth/forgot-password", http.HandlerFunc(h.ForgotPassword))
	mux.Handle("POST /auth/goto-signup", http.HandlerFunc(h.GoToSignup))
	mux.Handle("POST /auth/goto-forgot-password", http.HandlerFunc(h.GoToForgotPassword))
	mux.Handle("POST /auth/back", http.HandlerFunc(h.Back))
}

func registerSessionRoutes(mux *http.ServeMux, h *SessionHandlers) {
	mux.Handle("GET /session", http.HandlerFunc(h.Current))
	mux.Handle("POST /session/refresh", http.HandlerFunc(h.Refresh))
	mux.Handle("POST /session/signout", http.HandlerFunc(h.SignOut))
	mux.Handle("GET /auth/recovery", http.HandlerFunc(h.Recovery))
	mux.Handle("POST /auth/set-password", http.HandlerFunc(h.SetPassword))
}

func registerSignalRoutes(mux *http.ServeMux, h *SignalHandlers) {
	mux.Handle("POST /signals/activity", http.HandlerFunc(h.Activity))
	mux.Handle("POST /signals/visibility", http.HandlerFunc(h.Visibility))
}
