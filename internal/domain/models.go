package domain

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Plan struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	OTPLimit      int     `json:"otpLimit"`
	SMTPLimit     int     `json:"smtpLimit"`
	TemplateLimit int     `json:"templateLimit"`
	APIKeyLimit   int     `json:"apiKeyLimit"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	IsDefault     bool    `json:"isDefault,omitempty"`
}

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"fullName"`
	Role               Role      `json:"role"`
	Avatar             string    `json:"avatar,omitempty"`
	TwoFactorEnabled   bool      `json:"twoFactorEnabled"`
	SessionTimeout     int       `json:"sessionTimeout"`
	LoginNotifications bool      `json:"loginNotifications"`
	RecoveryEmail      string    `json:"recoveryEmail,omitempty"`
	RecoveryPhone      string    `json:"recoveryPhone,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	Plan               *Plan     `json:"plan,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SecurityFlags is the security projection of a user.
type SecurityFlags struct {
	TwoFactorEnabled   bool `json:"twoFactorEnabled"`
	SessionTimeout     int  `json:"sessionTimeout"`
	LoginNotifications bool `json:"loginNotifications"`
}

func (u *User) Security() SecurityFlags {
	return SecurityFlags{
		TwoFactorEnabled:   u.TwoFactorEnabled,
		SessionTimeout:     u.SessionTimeout,
		LoginNotifications: u.LoginNotifications,
	}
}

// Clone returns a deep copy so callers never share the session's user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Plan != nil {
		p := *u.Plan
		c.Plan = &p
	}
	return &c
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	PlanName string `json:"planName,omitempty" validate:"omitempty,max=60"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type Template struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Subject    string          `json:"subject"`
	HeaderText string          `json:"headerText"`
	BodyText   string          `json:"bodyText"`
	FooterText string          `json:"footerText"`
	Styles     json.RawMessage `json:"styles,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt,omitempty"`
}

type TemplateInput struct {
	Name       string          `json:"name" validate:"required,max=120"`
	Subject    string          `json:"subject" validate:"required,max=255"`
	HeaderText string          `json:"headerText" validate:"max=2000"`
	BodyText   string          `json:"bodyText" validate:"required,max=20000"`
	FooterText string          `json:"footerText" validate:"max=2000"`
	Styles     json.RawMessage `json:"styles,omitempty"`
}

type SMTPConfig struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SMTPInput carries the write-only password; it is never echoed back.
type SMTPInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Host     string `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SMTPUpdate is a partial update; an empty password keeps the stored one.
type SMTPUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,max=120"`
	Host     string `json:"host,omitempty" validate:"omitempty,hostname_rfc1123|ip"`
	Port     int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
}

type APIKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type APIKeyInput struct {
	SMTPID string `json:"smtpId" validate:"required"`
	Label  string `json:"label,omitempty" validate:"max=120"`
}

// CreatedAPIKey holds the only copy of the secret the dashboard ever sees.
type CreatedAPIKey struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	APIKey  string `json:"apiKey"`
}

type LogState string

const (
	LogPending  LogState = "pending"
	LogSent     LogState = "sent"
	LogFailed   LogState = "failed"
	LogVerified LogState = "verified"
)

type LogStatus struct {
	Status    LogState  `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type SendLog struct {
	ID            string      `json:"id"`
	Recipient     string      `json:"recipient"`
	Provider      string      `json:"provider"`
	Type          string      `json:"type"`
	Subject       string      `json:"subject"`
	OTP           string      `json:"otp,omitempty"`
	Statuses      []LogStatus `json:"statuses"`
	CurrentStatus LogState    `json:"currentStatus"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type LogStats struct {
	SMTPCount     int `json:"smtpCount"`
	TemplateCount int `json:"templateCount"`
	APIKeyCount   int `json:"apiKeyCount"`
	SentToday     int `json:"sentToday"`
	FailedCount   int `json:"failedCount"`
}

type Usage struct {
	SMTPCount     int `json:"smtpCount"`
	TemplateCount int `json:"templateCount"`
	APIKeyCount   int `json:"apiKeyCount"`
	OTPRequests   int `json:"otpRequests"`
}

type CheckoutSession struct {
	Message   string `json:"message"`
	URL       string `json:"url,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type SendOTPRequest struct {
	Recipient    string `json:"recipient" validate:"required,email"`
	TemplateName string `json:"templateName" validate:"required"`
	APIKeyID     string `json:"apiKeyId" validate:"required"`
}

type SendOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

type VerifyOTPRequest struct {
	APIKeyID string `json:"apiKeyId" validate:"required"`
	OTP      string `json:"otp" validate:"required,max=12"`
}

type VerifyOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ProfileUpdate struct {
	FullName string `json:"fullName,omitempty" validate:"omitempty,max=120"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type SecurityUpdate struct {
	TwoFactorEnabled   *bool  `json:"twoFactorEnabled,omitempty"`
	SessionTimeout     *int   `json:"sessionTimeout,omitempty" validate:"omitempty,min=5,max=1440"`
	LoginNotifications *bool  `json:"loginNotifications,omitempty"`
	RecoveryEmail      string `json:"recoveryEmail,omitempty" validate:"omitempty,email"`
	RecoveryPhone      string `json:"recoveryPhone,omitempty" validate:"omitempty,e164"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

type AdminStats struct {
	Users       int `json:"users"`
	SMTPConfigs int `json:"smtpConfigs"`
	APIKeys     int `json:"apiKeys"`
	Templates   int `json:"templates"`
	TotalLogs   int `json:"totalLogs"`
	SentToday   int `json:"sentToday"`
	FailedCount int `json:"failedCount"`
}

type PlanInput struct {
	Name          string  `json:"name" validate:"required,max=60"`
	OTPLimit      int     `json:"otpLimit" validate:"min=0"`
	SMTPLimit     int     `json:"smtpLimit" validate:"min=0"`
	TemplateLimit int     `json:"templateLimit" validate:"min=0"`
	APIKeyLimit   int     `json:"apiKeyLimit" validate:"min=0"`
	Price         float64 `json:"price" validate:"min=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	IsDefault     bool    `json:"isDefault"`
}

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}
