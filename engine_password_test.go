package courseauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusworks/courseauth/token"
)

func TestChangePassword(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "change@example.com")

	err := engine.ChangePassword(ctx, registered.User.ID, "Str0ngP4ss!@#", "N3wStr0ng!Pass")
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := engine.Login(ctx, "change@example.com", "Str0ngP4ss!@#"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := engine.Login(ctx, "change@example.com", "N3wStr0ng!Pass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	registered := registerTestUser(t, engine, "wrongcurrent@example.com")

	err := engine.ChangePassword(context.Background(), registered.User.ID, "Wr0ngP4ss!@#", "N3wStr0ng!Pass")
	if !errors.Is(err, ErrCurrentPasswordIncorrect) {
		t.Fatalf("got %v, want ErrCurrentPasswordIncorrect", err)
	}
	if ErrorStatus(err) != 401 || ErrorMessage(err) != "Current password is incorrect" {
		t.Fatalf("boundary mapping: %d %q", ErrorStatus(err), ErrorMessage(err))
	}
}

func TestChangePasswordWeakNew(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	registered := registerTestUser(t, engine, "weaknew@example.com")

	err := engine.ChangePassword(context.Background(), registered.User.ID, "Str0ngP4ss!@#", "abcdefgh")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}

	// The old password must still work after a rejected change.
	if _, err := engine.Login(context.Background(), "weaknew@example.com", "Str0ngP4ss!@#"); err != nil {
		t.Fatalf("old password rejected after failed change: %v", err)
	}
}

func TestRequestPasswordReset(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "forgot@example.com")

	resetToken, err := engine.RequestPasswordReset(ctx, "forgot@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if resetToken == "" {
		t.Fatal("expected a reset token for an existing active account")
	}

	claims, err := engine.tokens.VerifyPurposeToken(resetToken, token.PurposePasswordReset)
	if err != nil {
		t.Fatalf("VerifyPurposeToken: %v", err)
	}
	if claims.Subject != registered.User.ID {
		t.Fatalf("subject = %s, want %s", claims.Subject, registered.User.ID)
	}
}

// Unknown emails and deactivated accounts produce the identical
// no-token, no-error outcome so responses can't be used to probe which
// accounts exist.
func TestRequestPasswordResetEnumerationSafe(t *testing.T) {
	engine, users, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "deactivated@example.com")
	stored := users.get(t, registered.User.ID)
	stored.IsActive = false
	users.set(stored)

	for _, email := range []string{"nobody@example.com", "deactivated@example.com"} {
		resetToken, err := engine.RequestPasswordReset(ctx, email)
		if err != nil {
			t.Fatalf("%s: %v", email, err)
		}
		if resetToken != "" {
			t.Fatalf("%s: token issued for an ineligible account", email)
		}
	}
}

func TestRequestPasswordResetMalformedEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.RequestPasswordReset(context.Background(), "not-an-email")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestConfirmPasswordReset(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registerTestUser(t, engine, "reset@example.com")

	resetToken, err := engine.RequestPasswordReset(ctx, "reset@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	if err := engine.ConfirmPasswordReset(ctx, resetToken, "N3wStr0ng!Pass"); err != nil {
		t.Fatalf("ConfirmPasswordReset: %v", err)
	}
	if _, err := engine.Login(ctx, "reset@example.com", "N3wStr0ng!Pass"); err != nil {
		t.Fatalf("login with reset password: %v", err)
	}
	if _, err := engine.Login(ctx, "reset@example.com", "Str0ngP4ss!@#"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
}

func TestConfirmPasswordResetRejections(t *testing.T) {
	engine, users, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "rejections@example.com")

	// Wrong purpose: an email-verification token must not reset passwords.
	err := engine.ConfirmPasswordReset(ctx, registered.VerificationToken, "N3wStr0ng!Pass")
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("wrong purpose: got %v, want ErrResetTokenInvalid", err)
	}

	if err := engine.ConfirmPasswordReset(ctx, "garbage", "N3wStr0ng!Pass"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("garbage token: got %v, want ErrResetTokenInvalid", err)
	}

	// Expired token.
	expired, err := engine.tokens.IssuePurposeToken(registered.User.ID, token.PurposePasswordReset, -time.Minute)
	if err != nil {
		t.Fatalf("IssuePurposeToken: %v", err)
	}
	if err := engine.ConfirmPasswordReset(ctx, expired, "N3wStr0ng!Pass"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expired token: got %v, want ErrResetTokenInvalid", err)
	}

	// Deactivated account: valid token, ineligible subject.
	resetToken, err := engine.RequestPasswordReset(ctx, "rejections@example.com")
	if err != nil || resetToken == "" {
		t.Fatalf("RequestPasswordReset: %q, %v", resetToken, err)
	}
	stored := users.get(t, registered.User.ID)
	stored.IsActive = false
	users.set(stored)
	if err := engine.ConfirmPasswordReset(ctx, resetToken, "N3wStr0ng!Pass"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("deactivated subject: got %v, want ErrResetTokenInvalid", err)
	}
}

func TestConfirmPasswordResetWeakPassword(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registerTestUser(t, engine, "weakreset@example.com")
	resetToken, err := engine.RequestPasswordReset(ctx, "weakreset@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	err = engine.ConfirmPasswordReset(ctx, resetToken, "abcdefgh")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}
