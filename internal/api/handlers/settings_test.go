package handlers

import (
	"net/http"
	"testing"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettings_GetFromSession(t *testing.T) {
	svc := &mockSettings{}
	h := NewSettingsHandler(svc, testAudit())

	rec := serve(t, newSession(t, nil, alice()), http.MethodGet, "/s", "/s", nil, h.Get)

	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[SettingsView](t, rec)
	assert.Equal(t, "Alice", v.User.FullName)
	assert.Equal(t, 30, v.Security.SessionTimeout)
	svc.AssertNotCalled(t, "Me", mock.Anything)
}

func TestSettings_UpdateProfileRefreshesSession(t *testing.T) {
	updated := alice()
	updated.FullName = "Alice Liddell"
	updated.Plan = nil

	svc := &mockSettings{}
	svc.On("UpdateProfile", mock.Anything, domain.ProfileUpdate{FullName: "Alice Liddell"}).Return(updated, nil)

	m := newSession(t, nil, alice())
	h := NewSettingsHandler(svc, testAudit())
	rec := serve(t, m, http.MethodPut, "/s/profile", "/s/profile", map[string]string{"fullName": "Alice Liddell"}, h.UpdateProfile)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice Liddell", decode[SettingsView](t, rec).User.FullName)

	assert.Equal(t, "Alice Liddell", m.User().FullName)
	assert.Equal(t, "tok-1", m.Token())
	require.NotNil(t, m.Plan())
	assert.Equal(t, "Pro", m.Plan().Name)
}

func TestSettings_UpdateSecurity(t *testing.T) {
	on := true
	updated := alice()
	updated.TwoFactorEnabled = true

	svc := &mockSettings{}
	svc.On("UpdateSecurity", mock.Anything, domain.SecurityUpdate{TwoFactorEnabled: &on}).Return(updated, nil)

	m := newSession(t, nil, alice())
	h := NewSettingsHandler(svc, testAudit())
	rec := serve(t, m, http.MethodPut, "/s/security", "/s/security", `{"twoFactorEnabled":true}`, h.UpdateSecurity)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[SettingsView](t, rec).Security.TwoFactorEnabled)
	assert.True(t, m.User().TwoFactorEnabled)
}

func TestSettings_UpdateAfterLogout(t *testing.T) {
	svc := &mockSettings{}
	svc.On("UpdateProfile", mock.Anything, mock.Anything).Return(alice(), nil)

	h := NewSettingsHandler(svc, testAudit())
	rec := serve(t, newSession(t, nil, nil), http.MethodPut, "/s/profile", "/s/profile", map[string]string{"fullName": "x"}, h.UpdateProfile)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettings_ChangePasswordMustDiffer(t *testing.T) {
	svc := &mockSettings{}
	h := NewSettingsHandler(svc, testAudit())

	rec := serve(t, newSession(t, nil, alice()), http.MethodPost, "/s/password", "/s/password",
		map[string]string{"currentPassword": "same-password", "newPassword": "same-password"}, h.ChangePassword)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "newPassword must differ from the current password", decode[errorEnvelope](t, rec).Error.Message)
	svc.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything)
}
