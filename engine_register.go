package courseauth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/campusworks/courseauth/password"
	"github.com/campusworks/courseauth/token"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a new account. The assigned role is always STUDENT
// regardless of anything the caller supplied upstream; only an existing
// admin can promote an account later, through the data store.
//
// The returned VerificationToken is handed back in-band for development
// setups. Production deployments should deliver it out of band instead.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	if e == nil || e.users == nil {
		return RegisterResult{}, ErrEngineNotReady
	}

	result, err := e.register(ctx, input)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			e.metrics.Inc(MetricRegisterWeakPassword)
		} else if errors.Is(err, ErrEmailExists) {
			e.metrics.Inc(MetricRegisterDuplicate)
		}
		e.emitAudit(ctx, auditEventRegister, false, "", input.Email, "", err, nil)
		return RegisterResult{}, err
	}

	e.metrics.Inc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, true, result.User.ID, result.User.Email, "", nil, nil)
	return result, nil
}

func (e *Engine) register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return RegisterResult{}, &ValidationError{Message: "Email and password are required"}
	}
	if !emailPattern.MatchString(email) {
		return RegisterResult{}, &ValidationError{Message: "Invalid email format"}
	}
	// Registration requires eight characters outright, separate from the
	// strength policy's own floor.
	if len(input.Password) < 8 {
		return RegisterResult{}, &ValidationError{Message: "Password must be at least 8 characters long"}
	}

	strength := password.ScoreStrength(input.Password)
	if !strength.IsValid {
		return RegisterResult{}, &ValidationError{
			Message: "Password does not meet requirements",
			Errors:  strength.Errors,
			Score:   strength.Score,
		}
	}

	if _, err := e.users.GetUserByEmail(ctx, email); err == nil {
		return RegisterResult{}, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return RegisterResult{}, err
	}

	hash, err := e.passwords.Hash(input.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	user, err := e.users.CreateUser(ctx, CreateUserInput{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         RoleStudent,
		IsActive:     true,
		IsVerified:   false,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return RegisterResult{}, ErrEmailExists
		}
		return RegisterResult{}, err
	}

	verificationToken, err := e.tokens.IssuePurposeToken(user.ID, token.PurposeEmailVerification, e.config.Verification.EmailTokenTTL)
	if err != nil {
		return RegisterResult{}, err
	}

	pair, err := e.issuePair(user)
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{
		User:              user.Public(),
		Tokens:            pair,
		VerificationToken: verificationToken,
	}, nil
}
