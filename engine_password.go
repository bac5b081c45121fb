package courseauth

import (
	"context"
	"errors"
	"strings"

	"github.com/campusworks/courseauth/password"
	"github.com/campusworks/courseauth/token"
)

// ChangePassword verifies the current password before accepting a new one.
// The caller is expected to have authenticated the user already; userID
// comes from the access token, never from the request body.
func (e *Engine) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	err := e.changePassword(ctx, userID, currentPassword, newPassword)
	if err != nil {
		if errors.Is(err, ErrCurrentPasswordIncorrect) {
			e.metrics.Inc(MetricPasswordChangeInvalidOld)
		}
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, "", "", err, nil)
		return err
	}

	e.metrics.Inc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChange, true, userID, "", "", nil, nil)
	return nil
}

func (e *Engine) changePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return &ValidationError{Message: "Current and new password are required"}
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	ok, err := e.passwords.Verify(currentPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrCurrentPasswordIncorrect
	}

	return e.setPassword(ctx, user.ID, newPassword)
}

// RequestPasswordReset mints a 1h reset token for an existing active
// account. The (token, err) contract is enumeration-safe: unknown emails
// and deactivated accounts return ("", nil), identical to the caller's
// success path, and the HTTP layer responds with the same generic message
// either way.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if e == nil || e.users == nil {
		return "", ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !emailPattern.MatchString(email) {
		return "", &ValidationError{Message: "Invalid email format"}
	}

	e.metrics.Inc(MetricPasswordResetRequest)

	user, err := e.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordReset, false, "", email, "", ErrUserNotFound, map[string]string{"stage": "request"})
			return "", nil
		}
		return "", err
	}
	if !user.IsActive {
		e.emitAudit(ctx, auditEventPasswordReset, false, user.ID, email, "", ErrAccountDeactivated, map[string]string{"stage": "request"})
		return "", nil
	}

	resetToken, err := e.tokens.IssuePurposeToken(user.ID, token.PurposePasswordReset, e.config.Verification.ResetTokenTTL)
	if err != nil {
		return "", err
	}

	e.emitAudit(ctx, auditEventPasswordReset, true, user.ID, email, "", nil, map[string]string{"stage": "request"})
	return resetToken, nil
}

// ConfirmPasswordReset validates a reset purpose token and sets the new
// password. Expired tokens, wrong-purpose tokens, and missing or
// deactivated accounts all collapse to [ErrResetTokenInvalid].
func (e *Engine) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	err := e.confirmPasswordReset(ctx, resetToken, newPassword)
	if err != nil {
		e.metrics.Inc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", "", "", err, map[string]string{"stage": "confirm"})
		return err
	}

	e.metrics.Inc(MetricPasswordResetConfirmSuccess)
	e.emitAudit(ctx, auditEventPasswordReset, true, "", "", "", nil, map[string]string{"stage": "confirm"})
	return nil
}

func (e *Engine) confirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return &ValidationError{Message: "Token and new password are required"}
	}

	claims, err := e.tokens.VerifyPurposeToken(resetToken, token.PurposePasswordReset)
	if err != nil {
		return ErrResetTokenInvalid
	}

	user, err := e.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if !user.IsActive {
		return ErrResetTokenInvalid
	}

	return e.setPassword(ctx, user.ID, newPassword)
}

// setPassword strength-checks, hashes, and persists a new password.
func (e *Engine) setPassword(ctx context.Context, userID, newPassword string) error {
	strength := password.ScoreStrength(newPassword)
	if !strength.IsValid {
		return &ValidationError{
			Message: "Password does not meet requirements",
			Errors:  strength.Errors,
			Score:   strength.Score,
		}
	}

	hash, err := e.passwords.Hash(newPassword)
	if err != nil {
		return err
	}

	_, err = e.users.UpdateUser(ctx, userID, UserUpdate{PasswordHash: &hash})
	return err
}
