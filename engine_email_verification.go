package courseauth

import (
	"context"
	"errors"

	"github.com/campusworks/courseauth/token"
)

// ConfirmEmailVerification flips isVerified on the account named by a
// verification purpose token. Verification is one-way and idempotent:
// confirming an already-verified account reports alreadyVerified=true and
// succeeds, it is not an error.
func (e *Engine) ConfirmEmailVerification(ctx context.Context, verificationToken string) (alreadyVerified bool, err error) {
	if e == nil || e.users == nil {
		return false, ErrEngineNotReady
	}

	alreadyVerified, err = e.confirmEmailVerification(ctx, verificationToken)
	if err != nil {
		e.metrics.Inc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, auditEventEmailVerification, false, "", "", "", err, nil)
		return false, err
	}

	e.metrics.Inc(MetricEmailVerificationSuccess)
	e.emitAudit(ctx, auditEventEmailVerification, true, "", "", "", nil, nil)
	return alreadyVerified, nil
}

func (e *Engine) confirmEmailVerification(ctx context.Context, verificationToken string) (bool, error) {
	if verificationToken == "" {
		return false, &ValidationError{Message: "Verification token is required"}
	}

	claims, err := e.tokens.VerifyPurposeToken(verificationToken, token.PurposeEmailVerification)
	if err != nil {
		return false, ErrVerificationTokenInvalid
	}

	user, err := e.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return false, ErrVerificationTokenInvalid
	}

	if user.IsVerified {
		return true, nil
	}

	verified := true
	if _, err := e.users.UpdateUser(ctx, user.ID, UserUpdate{IsVerified: &verified}); err != nil {
		return false, err
	}

	return false, nil
}

// ResendVerification mints a fresh 24h verification token for an
// authenticated user. An already-verified account gets no token and
// alreadyVerified=true.
func (e *Engine) ResendVerification(ctx context.Context, userID string) (verificationToken string, alreadyVerified bool, err error) {
	if e == nil || e.users == nil {
		return "", false, ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", false, ErrUserNotFound
		}
		return "", false, err
	}

	if user.IsVerified {
		return "", true, nil
	}

	verificationToken, err = e.tokens.IssuePurposeToken(user.ID, token.PurposeEmailVerification, e.config.Verification.EmailTokenTTL)
	if err != nil {
		return "", false, err
	}

	e.metrics.Inc(MetricEmailVerificationResend)
	e.emitAudit(ctx, auditEventEmailVerification, true, user.ID, user.Email, "", nil, map[string]string{"stage": "resend"})
	return verificationToken, false, nil
}
