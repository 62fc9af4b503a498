package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/campusworks/portal-session/internal/errors"
	"github.com/campusworks/portal-session/internal/ports"
)

// Step is the auth flow's current state.
type Step string

const (
	StepLogin            Step = "login"
	StepSignupRequestOTP Step = "signup-request-otp"
	StepSignupVerifyOTP  Step = "signup-verify-otp"
	StepForgotPassword   Step = "forgot-password"
)

// ErrFlowBusy is returned when a submission or navigation arrives while a
// boundary call from a previous submission is still in flight. Duplicate
// submissions are rejected, never queued.
var ErrFlowBusy = errors.New("auth flow: submission already in progress")

// FlowError is a classified, user-facing auth flow failure. Category maps
// it into the application error taxonomy; Violations is populated for
// password policy failures only.
type FlowError struct {
	Code       FlowErrorCode
	Category   apperrors.ErrorCode
	Message    string
	Violations []PasswordViolation
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("auth flow: %s: %s", e.Code, e.Message)
}

// Recoverable reports whether the user can retry on the same step.
func (e *FlowError) Recoverable() bool {
	switch e.Category {
	case apperrors.ErrCodeTransport, apperrors.ErrCodeVerification, apperrors.ErrCodePolicy:
		return true
	default:
		return false
	}
}

// categoryFor maps a flow error code into the application taxonomy.
func categoryFor(code FlowErrorCode) apperrors.ErrorCode {
	switch code {
	case FlowErrInvalidCredentials:
		return apperrors.ErrCodeCredential
	case FlowErrEmailUnconfirmed:
		return apperrors.ErrCodeVerification
	case FlowErrRateLimited, FlowErrNetwork:
		return apperrors.ErrCodeTransport
	case FlowErrAlreadyRegistered, FlowErrInvalidEmail, FlowErrWeakPassword:
		return apperrors.ErrCodePolicy
	default:
		return apperrors.ErrCodeUnexpected
	}
}

// classifyFlow turns a raw boundary error into a FlowError.
func classifyFlow(err error) *FlowError {
	code, msg := ClassifyProviderError(err)
	return &FlowError{Code: code, Category: categoryFor(code), Message: msg}
}

// LoginForm carries the login step's fields.
type LoginForm struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupForm carries the signup-request step's fields.
type SignupForm struct {
	FullName        string `json:"full_name"        validate:"required"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateForm runs struct validation and converts the first failure into
// a policy FlowError. Policy failures never reach the boundary.
func validateForm(form any) *FlowError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &FlowError{Code: FlowErrUnknown, Category: apperrors.ErrCodeUnexpected, Message: err.Error()}
	}
	fe := verrs[0]
	code := FlowErrUnknown
	msg := fmt.Sprintf("%s is invalid", fe.Field())
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "email":
		code = FlowErrInvalidEmail
		msg = "email address is invalid"
	case "eqfield":
		msg = "password confirmation does not match"
	}
	return &FlowError{Code: code, Category: apperrors.ErrCodePolicy, Message: msg}
}

// FlowOptions groups dependencies for Flow.
type FlowOptions struct {
	Boundary ports.IdentityBoundary
	// Notify is invoked exactly once per completed login or signup
	// verification so the session controller can refresh.
	Notify func(ctx context.Context)
	Logger *slog.Logger
}

// Flow is the auth flow state machine. It owns the current step, drives
// boundary calls, and classifies raw provider errors. All exported
// methods are safe for concurrent use; while a boundary call is in
// flight the machine is busy and rejects further submissions.
type Flow struct {
	boundary ports.IdentityBoundary
	notify   func(ctx context.Context)
	logger   *slog.Logger

	mu       sync.Mutex
	step     Step
	email    string // pre-filled email, survives step transitions
	busy     bool
	notified bool
}

// NewFlow constructs a Flow in the login step.
func NewFlow(opts FlowOptions) (*Flow, error) {
	if opts.Boundary == nil {
		return nil, errors.New("auth flow: Boundary is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		boundary: opts.Boundary,
		notify:   opts.Notify,
		logger:   logger.With("component", "auth_flow"),
		step:     StepLogin,
	}, nil
}

// Step returns the current flow step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Email returns the pre-filled email for the current step.
func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Busy reports whether a submission is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// GoToSignup navigates login → signup-request-otp.
func (f *Flow) GoToSignup() error {
	return f.navigate(StepLogin, StepSignupRequestOTP)
}

// GoToForgotPassword navigates login → forgot-password.
func (f *Flow) GoToForgotPassword() error {
	return f.navigate(StepLogin, StepForgotPassword)
}

// Back navigates to the previous step. Backing out of OTP verification
// returns to signup-request-otp because a resend after that point
// requires re-requesting the account.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrFlowBusy
	}
	switch f.step {
	case StepSignupRequestOTP, StepForgotPassword:
		f.step = StepLogin
	case StepSignupVerifyOTP:
		f.step = StepSignupRequestOTP
	case StepLogin:
		// Already at the initial step.
	}
	return nil
}

func (f *Flow) navigate(from, to Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrFlowBusy
	}
	if f.step != from {
		return fmt.Errorf("auth flow: cannot navigate to %s from %s", to, f.step)
	}
	f.step = to
	return nil
}

// beginSubmission engages the busy state if the machine is on the
// expected step and not already busy. Starting a new submission re-arms
// the success notification.
func (f *Flow) beginSubmission(expected Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrFlowBusy
	}
	if f.step != expected {
		return fmt.Errorf("auth flow: %s submission invalid in step %s", expected, f.step)
	}
	f.busy = true
	f.notified = false
	return nil
}

// endSubmission releases the busy state. Runs on every code path out of a
// submission: success, classified error, and panic alike.
func (f *Flow) endSubmission() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// notifyOnce invokes the success notification at most once per
// submission, regardless of how many times the caller re-drives the
// completion path.
func (f *Flow) notifyOnce(ctx context.Context) {
	f.mu.Lock()
	if f.notified || f.notify == nil {
		f.mu.Unlock()
		return
	}
	f.notified = true
	notify := f.notify
	f.mu.Unlock()
	notify(ctx)
}

// SubmitLogin submits credentials from the login step. On success the
// machine notifies the session controller and stays on login with the
// form cleared; the surrounding shell switches away once the refreshed
// snapshot lands.
func (f *Flow) SubmitLogin(ctx context.Context, form LoginForm) error {
	if ferr := validateForm(form); ferr != nil {
		return ferr
	}
	if err := f.beginSubmission(StepLogin); err != nil {
		return err
	}
	defer f.endSubmission()

	sess, err := f.boundary.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		ferr := classifyFlow(err)
		f.logger.WarnContext(ctx, "login rejected", "code", ferr.Code)
		return ferr
	}
	if sess == nil {
		f.logger.ErrorContext(ctx, "sign-in returned no session and no error")
		return &FlowError{
			Code:     FlowErrUnknown,
			Category: apperrors.ErrCodeUnexpected,
			Message:  "sign-in succeeded without a session",
		}
	}

	f.mu.Lock()
	f.email = ""
	f.mu.Unlock()
	f.notifyOnce(ctx)
	return nil
}

// SubmitSignup submits the signup-request step. Policy checks (full name,
// password rules, confirmation) run before any boundary call. A provider
// response with neither session nor pending user is malformed: the flow
// surfaces an unexpected error and resets to login.
func (f *Flow) SubmitSignup(ctx context.Context, form SignupForm) error {
	if ferr := validateForm(form); ferr != nil {
		return ferr
	}
	if violations := CheckPassword(form.Password); len(violations) > 0 {
		return &FlowError{
			Code:       FlowErrWeakPassword,
			Category:   apperrors.ErrCodePolicy,
			Message:    "password does not meet the complexity rules",
			Violations: violations,
		}
	}
	if err := f.beginSubmission(StepSignupRequestOTP); err != nil {
		return err
	}
	defer f.endSubmission()

	result, err := f.boundary.SignUp(ctx, form.Email, form.FullName, form.Password)
	if err != nil {
		ferr := classifyFlow(err)
		f.logger.WarnContext(ctx, "signup rejected", "code", ferr.Code)
		return ferr
	}

	switch {
	case result != nil && result.Session != nil:
		// Provider created a login-ready account without verification.
		f.mu.Lock()
		f.step = StepLogin
		f.email = form.Email
		f.mu.Unlock()
		f.notifyOnce(ctx)
		return nil
	case result != nil && result.User != nil:
		f.mu.Lock()
		f.step = StepSignupVerifyOTP
		f.email = form.Email
		f.mu.Unlock()
		return nil
	default:
		f.logger.ErrorContext(ctx, "signup returned neither session nor pending user")
		f.mu.Lock()
		f.step = StepLogin
		f.mu.Unlock()
		return &FlowError{
			Code:     FlowErrUnknown,
			Category: apperrors.ErrCodeUnexpected,
			Message:  "account creation returned malformed data",
		}
	}
}

// SubmitOTP submits the verification code from the signup-verify step. A
// rejected code leaves the step unchanged; an accepted code notifies the
// session controller and resets the machine to login with the email
// pre-filled.
func (f *Flow) SubmitOTP(ctx context.Context, code string) error {
	if code == "" {
		return &FlowError{
			Code:     FlowErrUnknown,
			Category: apperrors.ErrCodePolicy,
			Message:  "verification code is required",
		}
	}
	if err := f.beginSubmission(StepSignupVerifyOTP); err != nil {
		return err
	}
	defer f.endSubmission()

	email := f.Email()
	sess, err := f.boundary.VerifyOTP(ctx, email, code, ports.OTPPurposeSignup)
	if err != nil {
		fcode, msg := ClassifyProviderError(err)
		f.logger.WarnContext(ctx, "otp rejected", "code", fcode)
		// Bad or expired codes stay on the verify step as recoverable
		// verification errors; everything else keeps its category.
		category := categoryFor(fcode)
		if fcode == FlowErrUnknown {
			category = apperrors.ErrCodeVerification
		}
		return &FlowError{Code: fcode, Category: category, Message: msg}
	}
	if sess == nil {
		return &FlowError{
			Code:     FlowErrUnknown,
			Category: apperrors.ErrCodeUnexpected,
			Message:  "verification succeeded without a session",
		}
	}

	f.mu.Lock()
	f.step = StepLogin
	f.email = email
	f.mu.Unlock()
	f.notifyOnce(ctx)
	return nil
}

// ResendOTP re-triggers the signup code dispatch without changing state.
func (f *Flow) ResendOTP(ctx context.Context) error {
	if err := f.beginSubmission(StepSignupVerifyOTP); err != nil {
		return err
	}
	defer f.endSubmission()

	if err := f.boundary.ResendOTP(ctx, f.Email()); err != nil {
		ferr := classifyFlow(err)
		f.logger.WarnContext(ctx, "otp resend failed", "code", ferr.Code)
		return ferr
	}
	return nil
}

// SubmitForgotPassword dispatches the recovery email and returns the
// machine to login on success.
func (f *Flow) SubmitForgotPassword(ctx context.Context, email string) error {
	form := struct {
		Email string `validate:"required,email"`
	}{Email: email}
	if ferr := validateForm(form); ferr != nil {
		return ferr
	}
	if err := f.beginSubmission(StepForgotPassword); err != nil {
		return err
	}
	defer f.endSubmission()

	if err := f.boundary.ResetPassword(ctx, email); err != nil {
		ferr := classifyFlow(err)
		f.logger.WarnContext(ctx, "password reset dispatch failed", "code", ferr.Code)
		return ferr
	}

	f.mu.Lock()
	f.step = StepLogin
	f.email = email
	f.mu.Unlock()
	return nil
}
