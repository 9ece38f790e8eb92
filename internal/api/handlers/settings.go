package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/internal/session"
)

type AccountSettings interface {
	Me(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.User, error)
	UpdateSecurity(ctx context.Context, in domain.SecurityUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, in domain.PasswordChange) (*domain.MessageResponse, error)
}

type SettingsHandler struct {
	settings AccountSettings
	audit    *audit.Logger
}

func NewSettingsHandler(settings AccountSettings, auditLog *audit.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, audit: auditLog}
}

type SettingsView struct {
	User     *domain.User         `json:"user"`
	Security domain.SecurityFlags `json:"security"`
}

func settingsView(u *domain.User) SettingsView {
	return SettingsView{User: u, Security: u.Security()}
}

// Get serves from the session when it holds the user, and only asks the
// backend otherwise.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	u := sessionOf(r).User()
	if u == nil {
		var err error
		if u, err = h.settings.Me(r.Context()); err != nil {
			handleFailure(w, r, err, "Could not load your settings.")
			return
		}
	}
	writeJSON(w, http.StatusOK, settingsView(u))
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileUpdate
	if !decodeValid(w, r, &in) {
		return
	}

	u, err := h.settings.UpdateProfile(r.Context(), in)
	if err != nil {
		handleFailure(w, r, err, "Could not update your profile.")
		return
	}
	h.refreshSession(w, r, u)
}

func (h *SettingsHandler) UpdateSecurity(w http.ResponseWriter, r *http.Request) {
	var in domain.SecurityUpdate
	if !decodeValid(w, r, &in) {
		return
	}

	u, err := h.settings.UpdateSecurity(r.Context(), in)
	if err != nil {
		handleFailure(w, r, err, "Could not update your security settings.")
		return
	}
	h.refreshSession(w, r, u)
}

// refreshSession stores the updated user in the session so the next page
// load shows it without another backend call.
func (h *SettingsHandler) refreshSession(w http.ResponseWriter, r *http.Request, u *domain.User) {
	m := sessionOf(r)
	if err := m.UpdateUser(r.Context(), u); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			sendError(w, r, "unauthenticated", "Your session has ended. Please sign in again.", http.StatusUnauthorized)
			return
		}
		logger.Ctx(r.Context()).Error().Err(err).Msg("session_update_failed")
		sendError(w, r, "session_error", "Saved, but your session could not be refreshed.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settingsView(m.User()))
}

func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in domain.PasswordChange
	if !decodeValid(w, r, &in) {
		return
	}

	resp, err := h.settings.ChangePassword(r.Context(), in)
	if err != nil {
		handleFailure(w, r, err, "Could not change your password.")
		return
	}

	h.audit.PasswordChanged(r.Context(), currentUserID(r))
	writeJSON(w, http.StatusOK, resp)
}
