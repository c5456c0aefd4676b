package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/mssola/useragent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventSignup             EventType = "signup"
	EventLoginSuccess       EventType = "login_success"
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventBlockCreated       EventType = "block_created"
	EventPermissionDenied   EventType = "permission_denied"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventCredentialIssued   EventType = "credential_issued"
	EventPasswordChanged    EventType = "password_changed"
	EventIdentityDeleted    EventType = "identity_deleted"
	EventUploadRejected     EventType = "upload_rejected"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Event        EventType
	SubjectType  string // "email", "ip", "identity_id"
	SubjectValue string // masked or hashed for PII
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]interface{}
}

// RequestMeta carries the request attributes attached to every event
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

type metaKey struct{}

// WithRequestMeta stores request attributes on ctx for later security events
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// MetaFromContext returns the request attributes stored by WithRequestMeta
func MetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(metaKey{}).(RequestMeta)
	return meta
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *SecurityLogger
	defaultOnce   sync.Once
)

// InitSecurityLogger initializes the security logger with Zap
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	sl := NewSecurityLogger(logger, serviceName, environment)
	defaultLogger = sl
	return sl
}

// NewSecurityLogger wraps an existing zap logger (zap.NewNop() in tests)
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the default security logger instance
func DefaultLogger() *SecurityLogger {
	defaultOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = InitSecurityLogger("intake-backend", "development")
		}
	})
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	meta := MetaFromContext(ctx)
	if event.IP == "" {
		event.IP = meta.IP
	}
	if event.UserAgent == "" {
		event.UserAgent = meta.UserAgent
	}
	if event.RequestID == "" {
		event.RequestID = meta.RequestID
	}

	level := zapcore.WarnLevel
	switch event.Event {
	case EventSignup, EventLoginSuccess, EventPasswordChanged, EventCredentialIssued:
		level = zapcore.InfoLevel
	case EventLoginBlocked, EventBlockCreated, EventIdentityDeleted:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.Time("occurred_at", time.Now().UTC()),
	}
	if event.SubjectType != "" {
		fields = append(fields,
			zap.String("subject_type", event.SubjectType),
			zap.String("subject_value", event.SubjectValue),
		)
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, userAgentFields(event.UserAgent)...)
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// userAgentFields breaks a raw User-Agent into browser/os fields
func userAgentFields(raw string) []zap.Field {
	ua := useragent.New(raw)
	browser, version := ua.Browser()
	return []zap.Field{
		zap.String("user_agent", raw),
		zap.String("ua_browser", strings.TrimSpace(browser+" "+version)),
		zap.String("ua_os", ua.OS()),
		zap.Bool("ua_mobile", ua.Mobile()),
		zap.Bool("ua_bot", ua.Bot()),
	}
}

func (sl *SecurityLogger) LogSignup(ctx context.Context, email string) {
	sl.Log(ctx, SecurityEvent{Event: EventSignup, SubjectType: "email", SubjectValue: MaskEmail(email)})
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, email string) {
	sl.Log(ctx, SecurityEvent{Event: EventLoginSuccess, SubjectType: "email", SubjectValue: MaskEmail(email)})
}

// LogLoginFailed logs a failed login attempt
func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		Details:      map[string]interface{}{"reason": reason},
	})
}

// LogLoginBlocked logs when a login is blocked due to too many attempts
func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		Details:      map[string]interface{}{"reason": "too_many_failed_attempts"},
	})
}

// LogBlockCreated logs when a block is created
func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, email string, duration time.Duration) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBlockCreated,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		Details:      map[string]interface{}{"duration_minutes": int(duration.Minutes())},
	})
}

// LogPermissionDenied logs an authenticated request lacking a capability
func (sl *SecurityLogger) LogPermissionDenied(ctx context.Context, identityID, capability string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventPermissionDenied,
		SubjectType:  "identity_id",
		SubjectValue: identityID,
		Details:      map[string]interface{}{"capability": capability},
	})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

func (sl *SecurityLogger) LogCredentialIssued(ctx context.Context, issuerID, email string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventCredentialIssued,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		Details:      map[string]interface{}{"issued_by": issuerID},
	})
}

func (sl *SecurityLogger) LogPasswordChanged(ctx context.Context, identityID string) {
	sl.Log(ctx, SecurityEvent{Event: EventPasswordChanged, SubjectType: "identity_id", SubjectValue: identityID})
}

func (sl *SecurityLogger) LogIdentityDeleted(ctx context.Context, actorID, identityID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventIdentityDeleted,
		SubjectType:  "identity_id",
		SubjectValue: identityID,
		Details:      map[string]interface{}{"deleted_by": actorID},
	})
}

func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, identityID, filename, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadRejected,
		SubjectType:  "identity_id",
		SubjectValue: identityID,
		Details:      map[string]interface{}{"file_hash": HashValue(filename), "reason": reason},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a truncated SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
