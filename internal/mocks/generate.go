// Package mocks provides generated mock implementations for testing the
// session lifecycle.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for the boundary interfaces. Hand-written doubles for simpler cases live
// in internal/mocks/auth.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	boundary := mocks.NewMockIdentityBoundary(ctrl)
//	boundary.EXPECT().CurrentSession(gomock.Any()).Return(nil, nil)
package mocks

// Generate mock for IdentityBoundary interface from internal/ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_boundary_mock.go github.com/campusworks/portal-session/internal/ports IdentityBoundary
