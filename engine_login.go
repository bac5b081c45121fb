package courseauth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Login authenticates an email/password pair and issues a token pair.
// Unknown emails and wrong passwords fail identically so callers can't
// probe which accounts exist; only a deactivated account gets its own
// message, and that check runs before the password is even verified.
func (e *Engine) Login(ctx context.Context, email, pass string) (LoginResult, error) {
	if e == nil || e.users == nil {
		return LoginResult{}, ErrEngineNotReady
	}

	result, err := e.login(ctx, email, pass)
	if err != nil {
		if errors.Is(err, ErrAccountDeactivated) {
			e.metrics.Inc(MetricLoginDeactivated)
		} else {
			e.metrics.Inc(MetricLoginFailure)
		}
		e.emitAudit(ctx, auditEventLogin, false, "", email, "", err, nil)
		return LoginResult{}, err
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, true, result.User.ID, result.User.Email, "", nil, nil)
	return result, nil
}

func (e *Engine) login(ctx context.Context, email, pass string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return LoginResult{}, &ValidationError{Message: "Email and password are required"}
	}

	user, err := e.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a comparison so missing accounts cost the same as
			// wrong passwords.
			e.passwords.DummyVerify(pass)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !user.IsActive {
		return LoginResult{}, ErrAccountDeactivated
	}

	ok, err := e.passwords.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	// Opt-in cost upgrade on successful verification.
	update := UserUpdate{}
	if e.config.Password.RehashOnLogin {
		if needs, nerr := e.passwords.NeedsRehash(user.PasswordHash); nerr == nil && needs {
			if newHash, herr := e.passwords.Hash(pass); herr == nil {
				update.PasswordHash = &newHash
			}
		}
	}

	now := time.Now().UTC()
	update.LastLoginAt = &now
	if updated, uerr := e.users.UpdateUser(ctx, user.ID, update); uerr == nil {
		user = updated
	}

	pair, err := e.issuePair(user)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: user.Public(), Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a fresh pair. Every failure mode
// collapses to [ErrRefreshInvalid] so the response never reveals whether
// the token was malformed, expired, or tied to a dead account.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	if e == nil || e.users == nil {
		return LoginResult{}, ErrEngineNotReady
	}

	result, err := e.refresh(ctx, refreshToken)
	if err != nil {
		e.metrics.Inc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, false, "", "", "", err, nil)
		return LoginResult{}, err
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefresh, true, result.User.ID, result.User.Email, "", nil, nil)
	return result, nil
}

func (e *Engine) refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	if refreshToken == "" {
		return LoginResult{}, &ValidationError{Message: "Refresh token is required"}
	}

	claims, err := e.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return LoginResult{}, ErrRefreshInvalid
	}

	if e.revocations != nil {
		if revoked, rerr := e.revocations.IsRevoked(ctx, refreshToken); rerr == nil && revoked {
			return LoginResult{}, ErrRefreshInvalid
		}
	}

	user, err := e.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return LoginResult{}, ErrRefreshInvalid
	}
	if !user.IsActive {
		return LoginResult{}, ErrRefreshInvalid
	}

	pair, err := e.issuePair(user)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: user.Public(), Tokens: pair}, nil
}

// Logout authenticates the access token and then blacklists it until its
// natural expiry. The blacklist is advisory: a store failure still counts
// as a successful logout.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	user, err := e.Authenticate(ctx, accessToken)
	if err != nil {
		e.emitAudit(ctx, auditEventLogout, false, "", "", "", err, nil)
		return err
	}

	if e.revocations != nil {
		expiresAt := time.Now().Add(time.Hour)
		if claims, cerr := e.tokens.VerifyAccessToken(accessToken); cerr == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		_ = e.revocations.Revoke(ctx, accessToken, expiresAt)
	}

	e.metrics.Inc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, user.ID, user.Email, "", nil, nil)
	return nil
}
