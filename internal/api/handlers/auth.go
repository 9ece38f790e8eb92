package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/internal/services"
	"github.com/baechuer/otp-dashboard/internal/session"
)

type PasswordResetter interface {
	ForgotPassword(ctx context.Context, req services.ForgotPasswordRequest) (*domain.MessageResponse, error)
	ResetPassword(ctx context.Context, req services.ResetPasswordRequest) (*domain.MessageResponse, error)
}

type AuthHandler struct {
	reset PasswordResetter
	audit *audit.Logger
}

func NewAuthHandler(reset PasswordResetter, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{reset: reset, audit: auditLog}
}

// SessionView is what the SPA reads to decide between the login screen,
// a spinner and the dashboard.
type SessionView struct {
	Status   string       `json:"status"`
	User     *domain.User `json:"user"`
	Plan     *domain.Plan `json:"plan"`
	PlanName string       `json:"planName"`
	IsAdmin  bool         `json:"isAdmin"`
}

func sessionView(m *session.Manager) SessionView {
	if m == nil {
		return SessionView{Status: session.StatusUnauthenticated.String(), PlanName: domain.DefaultPlanName}
	}
	snap := m.Snapshot()
	return SessionView{
		Status:   snap.Status.String(),
		User:     snap.User,
		Plan:     snap.Plan,
		PlanName: domain.PlanName(snap.Plan),
		IsAdmin:  snap.User.IsAdmin(),
	}
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionView(sessionOf(r)))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	m := sessionOf(r)
	client := clientOf(r)

	user, err := m.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		reason := "error"
		if f, ok := domain.AsFailure(err); ok {
			reason = string(f.Kind)
		}
		h.audit.LoginFailed(r.Context(), req.Email, client, reason)
		handleFailure(w, r, err, "Login failed. Please try again.")
		return
	}

	renewed, err := session.Renew(r.Context())
	if err != nil {
		m.Logout(r.Context())
		logger.Ctx(r.Context()).Error().Err(err).Msg("session_renew_failed")
		sendError(w, r, "session_error", "Could not start your session. Please try again.", http.StatusInternalServerError)
		return
	}

	h.audit.LoginSucceeded(r.Context(), user.ID, user.Email, client)
	writeJSON(w, http.StatusOK, sessionView(renewed))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}

	resp, err := sessionOf(r).Register(r.Context(), req)
	if err != nil {
		handleFailure(w, r, err, "Registration failed. Please try again.")
		return
	}

	if resp.User != nil {
		h.audit.Registered(r.Context(), resp.User.ID, resp.User.Email, clientOf(r))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ForgotPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}

	resp, err := h.reset.ForgotPassword(r.Context(), req)
	if err != nil {
		handleFailure(w, r, err, "Could not start the password reset.")
		return
	}

	h.audit.PasswordResetRequested(r.Context(), req.Email, clientOf(r))
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}

	resp, err := h.reset.ResetPassword(r.Context(), req)
	if err != nil {
		handleFailure(w, r, err, "Could not reset the password.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	m := sessionOf(r)
	userID := currentUserID(r)

	m.Logout(r.Context())

	if userID != "" {
		h.audit.Logout(r.Context(), userID)
	}
	writeJSON(w, http.StatusOK, sessionView(m))
}

func clientOf(r *http.Request) audit.Client {
	return audit.Client{IP: r.RemoteAddr, UserAgent: r.UserAgent()}
}
