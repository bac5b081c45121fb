package courseauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusworks/courseauth/token"
)

func TestConfirmEmailVerification(t *testing.T) {
	engine, users, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "confirm@example.com")

	alreadyVerified, err := engine.ConfirmEmailVerification(ctx, registered.VerificationToken)
	if err != nil {
		t.Fatalf("ConfirmEmailVerification: %v", err)
	}
	if alreadyVerified {
		t.Fatal("first confirmation reported already-verified")
	}
	if stored := users.get(t, registered.User.ID); !stored.IsVerified {
		t.Fatal("isVerified not persisted")
	}
}

// Verification is one-way and idempotent: the same token confirms twice,
// the second call just reports the account was already verified.
func TestConfirmEmailVerificationIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "idempotent@example.com")

	if _, err := engine.ConfirmEmailVerification(ctx, registered.VerificationToken); err != nil {
		t.Fatalf("first confirmation: %v", err)
	}

	alreadyVerified, err := engine.ConfirmEmailVerification(ctx, registered.VerificationToken)
	if err != nil {
		t.Fatalf("second confirmation: %v", err)
	}
	if !alreadyVerified {
		t.Fatal("second confirmation did not report already-verified")
	}
}

func TestConfirmEmailVerificationRejections(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "vreject@example.com")

	if _, err := engine.ConfirmEmailVerification(ctx, ""); err == nil {
		t.Fatal("empty token accepted")
	}
	if _, err := engine.ConfirmEmailVerification(ctx, "garbage"); !errors.Is(err, ErrVerificationTokenInvalid) {
		t.Fatalf("garbage: got %v, want ErrVerificationTokenInvalid", err)
	}

	// A password-reset token must not verify an email.
	resetToken, err := engine.tokens.IssuePurposeToken(registered.User.ID, token.PurposePasswordReset, time.Hour)
	if err != nil {
		t.Fatalf("IssuePurposeToken: %v", err)
	}
	if _, err := engine.ConfirmEmailVerification(ctx, resetToken); !errors.Is(err, ErrVerificationTokenInvalid) {
		t.Fatalf("wrong purpose: got %v, want ErrVerificationTokenInvalid", err)
	}

	expired, err := engine.tokens.IssuePurposeToken(registered.User.ID, token.PurposeEmailVerification, -time.Minute)
	if err != nil {
		t.Fatalf("IssuePurposeToken: %v", err)
	}
	if _, err := engine.ConfirmEmailVerification(ctx, expired); !errors.Is(err, ErrVerificationTokenInvalid) {
		t.Fatalf("expired: got %v, want ErrVerificationTokenInvalid", err)
	}
}

func TestResendVerification(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registered := registerTestUser(t, engine, "resend@example.com")

	verificationToken, alreadyVerified, err := engine.ResendVerification(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if alreadyVerified {
		t.Fatal("unverified account reported as verified")
	}
	if verificationToken == "" {
		t.Fatal("expected a fresh verification token")
	}

	// The re-issued token works.
	if _, err := engine.ConfirmEmailVerification(ctx, verificationToken); err != nil {
		t.Fatalf("confirm with resent token: %v", err)
	}

	// Once verified, resend yields no token.
	verificationToken, alreadyVerified, err = engine.ResendVerification(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("ResendVerification after confirm: %v", err)
	}
	if !alreadyVerified || verificationToken != "" {
		t.Fatalf("got (%q, %v), want no token and already-verified", verificationToken, alreadyVerified)
	}
}

func TestResendVerificationUnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, _, err := engine.ResendVerification(context.Background(), "no-such-id")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}
