package handlers

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/services"
	"github.com/stretchr/testify/mock"
)

type mockReset struct{ mock.Mock }

func (m *mockReset) ForgotPassword(ctx context.Context, req services.ForgotPasswordRequest) (*domain.MessageResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*domain.MessageResponse)
	return resp, args.Error(1)
}

func (m *mockReset) ResetPassword(ctx context.Context, req services.ResetPasswordRequest) (*domain.MessageResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*domain.MessageResponse)
	return resp, args.Error(1)
}

type mockLogs struct{ mock.Mock }

func (m *mockLogs) List(ctx context.Context) ([]domain.SendLog, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.SendLog)
	return v, args.Error(1)
}

func (m *mockLogs) Recent(ctx context.Context, n int) ([]domain.SendLog, error) {
	args := m.Called(ctx, n)
	v, _ := args.Get(0).([]domain.SendLog)
	return v, args.Error(1)
}

func (m *mockLogs) Stats(ctx context.Context) (*domain.LogStats, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*domain.LogStats)
	return v, args.Error(1)
}

func (m *mockLogs) Get(ctx context.Context, id string) (*domain.SendLog, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.SendLog)
	return v, args.Error(1)
}

type mockPlans struct{ mock.Mock }

func (m *mockPlans) List(ctx context.Context) ([]domain.Plan, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.Plan)
	return v, args.Error(1)
}

func (m *mockPlans) Current(ctx context.Context) (*domain.Plan, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*domain.Plan)
	return v, args.Error(1)
}

func (m *mockPlans) Usage(ctx context.Context) (*domain.Usage, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*domain.Usage)
	return v, args.Error(1)
}

func (m *mockPlans) Upgrade(ctx context.Context, planID string) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, planID)
	v, _ := args.Get(0).(*domain.CheckoutSession)
	return v, args.Error(1)
}

type mockTemplates struct{ mock.Mock }

func (m *mockTemplates) List(ctx context.Context) ([]domain.Template, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.Template)
	return v, args.Error(1)
}

func (m *mockTemplates) Get(ctx context.Context, id string) (*domain.Template, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.Template)
	return v, args.Error(1)
}

func (m *mockTemplates) Create(ctx context.Context, in domain.TemplateInput) (*domain.Template, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.Template)
	return v, args.Error(1)
}

func (m *mockTemplates) Update(ctx context.Context, id string, in domain.TemplateInput) (*domain.Template, error) {
	args := m.Called(ctx, id, in)
	v, _ := args.Get(0).(*domain.Template)
	return v, args.Error(1)
}

func (m *mockTemplates) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockSMTP struct{ mock.Mock }

func (m *mockSMTP) List(ctx context.Context) ([]domain.SMTPConfig, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.SMTPConfig)
	return v, args.Error(1)
}

func (m *mockSMTP) Create(ctx context.Context, in domain.SMTPInput) (*domain.SMTPConfig, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.SMTPConfig)
	return v, args.Error(1)
}

func (m *mockSMTP) Update(ctx context.Context, id string, in domain.SMTPUpdate) (*domain.SMTPConfig, error) {
	args := m.Called(ctx, id, in)
	v, _ := args.Get(0).(*domain.SMTPConfig)
	return v, args.Error(1)
}

func (m *mockSMTP) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockKeys struct{ mock.Mock }

func (m *mockKeys) List(ctx context.Context) ([]domain.APIKey, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.APIKey)
	return v, args.Error(1)
}

func (m *mockKeys) Create(ctx context.Context, in domain.APIKeyInput) (*domain.CreatedAPIKey, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.CreatedAPIKey)
	return v, args.Error(1)
}

func (m *mockKeys) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockSettings struct{ mock.Mock }

func (m *mockSettings) Me(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*domain.User)
	return v, args.Error(1)
}

func (m *mockSettings) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.User)
	return v, args.Error(1)
}

func (m *mockSettings) UpdateSecurity(ctx context.Context, in domain.SecurityUpdate) (*domain.User, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.User)
	return v, args.Error(1)
}

func (m *mockSettings) ChangePassword(ctx context.Context, in domain.PasswordChange) (*domain.MessageResponse, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.MessageResponse)
	return v, args.Error(1)
}

type mockAdmin struct{ mock.Mock }

func (m *mockAdmin) Stats(ctx context.Context) (*domain.AdminStats, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*domain.AdminStats)
	return v, args.Error(1)
}

func (m *mockAdmin) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.Plan)
	return v, args.Error(1)
}

func (m *mockAdmin) CreatePlan(ctx context.Context, in domain.PlanInput) (*domain.Plan, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*domain.Plan)
	return v, args.Error(1)
}

func (m *mockAdmin) UpdatePlan(ctx context.Context, id string, in domain.PlanInput) (*domain.Plan, error) {
	args := m.Called(ctx, id, in)
	v, _ := args.Get(0).(*domain.Plan)
	return v, args.Error(1)
}

func (m *mockAdmin) DeletePlan(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAdmin) AssignDefaultPlans(ctx context.Context) (*domain.MessageResponse, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*domain.MessageResponse)
	return v, args.Error(1)
}
