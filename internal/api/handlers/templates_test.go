package handlers

import (
	"net/http"
	"testing"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTemplates_CreateAtPlanLimit(t *testing.T) {
	in := domain.TemplateInput{Name: "Login", Subject: "Your code", BodyText: "Code {{OTP}}"}
	store := &mockTemplates{}
	store.On("Create", mock.Anything, in).
		Return(nil, failure(domain.KindPlanLimit, 400, "Template limit reached. Upgrade your plan to create more templates."))

	h := NewTemplateHandler(store, preview.NewRenderer())
	rec := serve(t, newSession(t, nil, alice()), http.MethodPost, "/templates", "/templates", in, h.Create)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorEnvelope](t, rec)
	assert.Equal(t, "plan_limit", body.Error.Code)
	assert.Equal(t, "Template limit reached. Upgrade your plan to create more templates.", body.Error.Message)
	assert.True(t, body.Upgrade)
}

func TestTemplates_CreateValidation(t *testing.T) {
	store := &mockTemplates{}
	h := NewTemplateHandler(store, preview.NewRenderer())
	rec := serve(t, newSession(t, nil, alice()), http.MethodPost, "/templates", "/templates", `{}`, h.Create)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required; subject is required; bodyText is required", decode[errorEnvelope](t, rec).Error.Message)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTemplates_ListEmpty(t *testing.T) {
	store := &mockTemplates{}
	store.On("List", mock.Anything).Return(nil, nil)

	h := NewTemplateHandler(store, preview.NewRenderer())
	rec := serve(t, newSession(t, nil, alice()), http.MethodGet, "/templates", "/templates", nil, h.List)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTemplates_GetMissing(t *testing.T) {
	store := &mockTemplates{}
	store.On("Get", mock.Anything, "t9").Return(nil, failure(domain.KindNotFound, 404, "Template not found"))

	h := NewTemplateHandler(store, preview.NewRenderer())
	rec := serve(t, newSession(t, nil, alice()), http.MethodGet, "/templates/{id}", "/templates/t9", nil, h.Get)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorEnvelope](t, rec).Error.Code)
}

func TestTemplates_Delete(t *testing.T) {
	store := &mockTemplates{}
	store.On("Delete", mock.Anything, "t1").Return(nil)

	h := NewTemplateHandler(store, preview.NewRenderer())
	rec := serve(t, newSession(t, nil, alice()), http.MethodDelete, "/templates/{id}", "/templates/t1", nil, h.Delete)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	store.AssertExpectations(t)
}

func TestTemplates_PreviewStored(t *testing.T) {
	store := &mockTemplates{}
	store.On("Get", mock.Anything, "t1").Return(&domain.Template{
		ID: "t1", Subject: "Code {{OTP}}", BodyText: "Hi\nYour code is {{OTP}}",
	}, nil)

	h := NewTemplateHandler(store, preview.NewRenderer())
	rec := serve(t, newSession(t, nil, alice()), http.MethodPost, "/templates/{id}/preview", "/templates/t1/preview", nil, h.Preview)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	e := decode[preview.Email](t, rec)
	assert.Equal(t, "Code 123456", e.Subject)
	assert.Equal(t, "Hi<br>Your code is 123456", e.BodyHTML)
}

func TestTemplates_PreviewDraft(t *testing.T) {
	store := &mockTemplates{}
	h := NewTemplateHandler(store, preview.NewRenderer())

	rec := serve(t, newSession(t, nil, alice()), http.MethodPost, "/templates/{id}/preview", "/templates/draft/preview",
		map[string]string{"name": "n", "subject": "s", "bodyText": "Use {{OTP}}", "otp": "654321"}, h.Preview)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Use 654321", decode[preview.Email](t, rec).BodyHTML)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
