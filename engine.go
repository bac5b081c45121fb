package courseauth

import (
	"context"
	"errors"
	"time"

	"github.com/campusworks/courseauth/password"
	"github.com/campusworks/courseauth/revoke"
	"github.com/campusworks/courseauth/token"
)

// Engine orchestrates the authentication and authorization flows. Build
// one with [New]; the zero value is not usable. All methods are safe for
// concurrent use.
type Engine struct {
	config      Config
	users       UserProvider
	courses     CourseProvider
	tokens      *token.Manager
	passwords   *password.Policy
	revocations revoke.Store
	metrics     *Metrics
	audit       *auditDispatcher
}

// Audit event types, snake_case on the wire.
const (
	auditEventRegister          = "register"
	auditEventLogin             = "login"
	auditEventRefresh           = "token_refresh"
	auditEventLogout            = "logout"
	auditEventPasswordChange    = "password_change"
	auditEventPasswordReset     = "password_reset"
	auditEventEmailVerification = "email_verification"
	auditEventCourseAccess      = "course_access"
)

// Authenticate verifies a bearer access token and loads the live identity
// behind it. This is the hot path behind every guarded request: token
// claims alone are never trusted for activeness, so the user record is
// re-read on each call.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (PublicUser, error) {
	if e == nil || e.tokens == nil || e.users == nil {
		return PublicUser{}, ErrEngineNotReady
	}

	start := time.Now()
	user, err := e.authenticate(ctx, accessToken)
	e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
	if err != nil {
		e.metrics.Inc(MetricAuthenticateFailure)
		return PublicUser{}, err
	}
	e.metrics.Inc(MetricAuthenticateSuccess)
	return user, nil
}

func (e *Engine) authenticate(ctx context.Context, accessToken string) (PublicUser, error) {
	if accessToken == "" {
		return PublicUser{}, ErrTokenRequired
	}

	claims, err := e.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return PublicUser{}, translateTokenError(err)
	}

	// Advisory check: a store failure must not take down the hot path.
	if e.revocations != nil {
		if revoked, rerr := e.revocations.IsRevoked(ctx, accessToken); rerr == nil && revoked {
			return PublicUser{}, ErrTokenInvalid
		}
	}

	user, err := e.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return PublicUser{}, ErrUserNotFound
		}
		return PublicUser{}, err
	}
	if !user.IsActive {
		return PublicUser{}, ErrAccountDeactivated
	}

	return user.Public(), nil
}

// AuthenticateBearer is Authenticate applied to a raw Authorization
// header value. A missing or malformed header fails with
// [ErrTokenRequired] without touching the failure counter: anonymous
// traffic through optional-auth endpoints is not a verification failure.
func (e *Engine) AuthenticateBearer(ctx context.Context, authorization string) (PublicUser, error) {
	raw, ok := token.ExtractBearer(authorization)
	if !ok {
		return PublicUser{}, ErrTokenRequired
	}
	return e.Authenticate(ctx, raw)
}

func translateTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}

// issuePair mints an access/refresh pair for a user.
func (e *Engine) issuePair(user User) (TokenPair, error) {
	pair, err := e.tokens.IssuePair(token.Payload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// MetricsSnapshot returns a copy of the engine's counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}, Histograms: map[MetricID][]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events discarded under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close flushes pending audit events. Call it on shutdown.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, email, courseID string, flowErr error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		CourseID:  courseID,
		Success:   success,
		Metadata:  metadata,
	}
	if ip, ok := ClientIPFromContext(ctx); ok {
		event.IP = ip
	}
	if flowErr != nil {
		event.Error = AuditErrorCode(flowErr)
	}

	e.audit.Emit(ctx, event)
}

// AuditErrorCode collapses a flow error into a stable machine-readable
// code for audit records. Storage and other unexpected errors report as
// "internal" so audit logs never carry backend details.
func AuditErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "validation_failed"
	}
	switch {
	case errors.Is(err, ErrTokenRequired):
		return "token_required"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrAccountDeactivated):
		return "account_deactivated"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrEmailExists):
		return "email_exists"
	case errors.Is(err, ErrRefreshInvalid):
		return "refresh_invalid"
	case errors.Is(err, ErrCurrentPasswordIncorrect):
		return "current_password_incorrect"
	case errors.Is(err, ErrResetTokenInvalid):
		return "reset_token_invalid"
	case errors.Is(err, ErrVerificationTokenInvalid):
		return "verification_token_invalid"
	case errors.Is(err, ErrInsufficientPermissions):
		return "insufficient_permissions"
	case errors.Is(err, ErrVerificationRequired):
		return "verification_required"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrCourseNotFound):
		return "course_not_found"
	case errors.Is(err, ErrCourseNotAvailable):
		return "course_not_available"
	case errors.Is(err, ErrNotEnrolled):
		return "not_enrolled"
	case errors.Is(err, ErrEnrollmentNotActive):
		return "enrollment_not_active"
	case errors.Is(err, ErrEnrollmentExpired):
		return "enrollment_expired"
	case errors.Is(err, ErrAlreadyEnrolled):
		return "already_enrolled"
	default:
		return "internal"
	}
}
