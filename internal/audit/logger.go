package audit

import (
	"context"
	"strings"
	"time"

	appCtx "github.com/baechuer/otp-dashboard/internal/pkg/context"
	"github.com/rs/zerolog"
)

// Event is one session lifecycle or account action, as published on the bus.
type Event struct {
	Action    string    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Device    string    `json:"device,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// Logger writes audit lines and forwards them to a Publisher.
type Logger struct {
	log zerolog.Logger
	pub Publisher
}

func New(log zerolog.Logger, pub Publisher) *Logger {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
		pub: pub,
	}
}

// Client identifies where a request came from.
type Client struct {
	IP        string
	UserAgent string
}

func (l *Logger) LoginSucceeded(ctx context.Context, userID, email string, c Client) {
	l.emit(ctx, l.log.Info(), Event{Action: "login_success", UserID: userID, Email: email, IP: c.IP, Device: DeviceLabel(c.UserAgent)}, "User logged in")
}

func (l *Logger) LoginFailed(ctx context.Context, email string, c Client, reason string) {
	l.emit(ctx, l.log.Warn(), Event{Action: "login_failed", Email: email, IP: c.IP, Device: DeviceLabel(c.UserAgent), Detail: reason}, "Login attempt failed")
}

func (l *Logger) Registered(ctx context.Context, userID, email string, c Client) {
	l.emit(ctx, l.log.Info(), Event{Action: "registered", UserID: userID, Email: email, IP: c.IP}, "Account registered")
}

func (l *Logger) Logout(ctx context.Context, userID string) {
	l.emit(ctx, l.log.Info(), Event{Action: "logout", UserID: userID}, "User logged out")
}

func (l *Logger) PasswordResetRequested(ctx context.Context, email string, c Client) {
	l.emit(ctx, l.log.Info(), Event{Action: "password_reset_requested", Email: email, IP: c.IP}, "Password reset requested")
}

func (l *Logger) PasswordChanged(ctx context.Context, userID string) {
	l.emit(ctx, l.log.Info(), Event{Action: "password_changed", UserID: userID}, "Password changed")
}

func (l *Logger) APIKeyCreated(ctx context.Context, userID, keyID string) {
	l.emit(ctx, l.log.Info(), Event{Action: "apikey_created", UserID: userID, Detail: keyID}, "API key created")
}

func (l *Logger) PlanUpgradeRequested(ctx context.Context, userID, planID string) {
	l.emit(ctx, l.log.Info(), Event{Action: "plan_upgrade_requested", UserID: userID, Detail: planID}, "Plan upgrade requested")
}

func (l *Logger) AdminPlansChanged(ctx context.Context, actorID, action, planID string) {
	l.emit(ctx, l.log.Warn(), Event{Action: "admin_" + action, UserID: actorID, Detail: planID}, "Plans changed by admin")
}

func (l *Logger) emit(ctx context.Context, e *zerolog.Event, ev Event, msg string) {
	ev.RequestID = appCtx.GetRequestID(ctx)
	ev.At = time.Now().UTC()

	e.Str("action", ev.Action).
		Str("user_id", ev.UserID).
		Str("email", maskEmail(ev.Email)).
		Str("ip", ev.IP).
		Str("device", ev.Device).
		Str("detail", ev.Detail).
		Str("request_id", ev.RequestID).
		Msg(msg)

	ev.Email = maskEmail(ev.Email)
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := l.pub.Publish(pctx, ev); err != nil {
			l.log.Warn().Err(err).Str("action", ev.Action).Msg("audit_publish_failed")
		}
	}()
}

// maskEmail keeps the first two characters and the domain.
func maskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.IndexByte(email, '@')
	if len(email) < 5 || at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
