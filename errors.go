package courseauth

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by engine flows. Callers branch on these with
// errors.Is; [ErrorStatus] and [ErrorMessage] translate them into the
// HTTP boundary contract.
var (
	// ErrEngineNotReady is returned when a flow runs before Build wired
	// the required providers.
	ErrEngineNotReady = errors.New("courseauth: engine not ready")

	ErrTokenRequired = errors.New("courseauth: access token required")
	ErrTokenInvalid  = errors.New("courseauth: invalid token")
	ErrTokenExpired  = errors.New("courseauth: token expired")

	ErrUserNotFound       = errors.New("courseauth: user not found")
	ErrAccountDeactivated = errors.New("courseauth: account deactivated")
	ErrInvalidCredentials = errors.New("courseauth: invalid credentials")
	ErrEmailExists        = errors.New("courseauth: email already registered")

	ErrRefreshInvalid             = errors.New("courseauth: invalid refresh token")
	ErrCurrentPasswordIncorrect   = errors.New("courseauth: current password incorrect")
	ErrResetTokenInvalid          = errors.New("courseauth: invalid reset token")
	ErrVerificationTokenInvalid   = errors.New("courseauth: invalid verification token")
	ErrInsufficientPermissions    = errors.New("courseauth: insufficient permissions")
	ErrVerificationRequired       = errors.New("courseauth: email verification required")
	ErrAccessDenied               = errors.New("courseauth: access denied")
	ErrCourseNotFound             = errors.New("courseauth: course not found")
	ErrCourseNotAvailable         = errors.New("courseauth: course not available")
	ErrNotEnrolled                = errors.New("courseauth: not enrolled")
	ErrEnrollmentNotActive        = errors.New("courseauth: enrollment not active")
	ErrEnrollmentExpired          = errors.New("courseauth: enrollment expired")
	ErrAlreadyEnrolled            = errors.New("courseauth: already enrolled")
	ErrEnrollmentNotFound         = errors.New("courseauth: enrollment not found")
)

// ValidationError carries field-level failures from input validation. For
// password-strength failures, Errors holds the unmet rules and Score the
// computed strength.
type ValidationError struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Score   int      `json:"score,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Errors)
}

// ErrorStatus maps a flow error to its HTTP status code. Unknown errors,
// including provider storage failures, collapse to 500.
//
// Course-not-found deliberately maps to 401 rather than 404: the upstream
// contract treats an unresolvable course during an access check as an
// authorization failure, and clients depend on that today.
func ErrorStatus(err error) int {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, ErrTokenRequired),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAccountDeactivated),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, ErrCurrentPasswordIncorrect),
		errors.Is(err, ErrResetTokenInvalid),
		errors.Is(err, ErrVerificationTokenInvalid),
		errors.Is(err, ErrCourseNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInsufficientPermissions),
		errors.Is(err, ErrVerificationRequired),
		errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrCourseNotAvailable),
		errors.Is(err, ErrNotEnrolled),
		errors.Is(err, ErrEnrollmentNotActive),
		errors.Is(err, ErrEnrollmentExpired),
		errors.Is(err, ErrAlreadyEnrolled):
		return http.StatusForbidden
	case errors.Is(err, ErrEmailExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage maps a flow error to the client-facing message for the HTTP
// boundary. Internal details never pass through: anything unrecognized
// becomes "Internal server error".
func ErrorMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	switch {
	case errors.Is(err, ErrTokenRequired):
		return "Access token required"
	case errors.Is(err, ErrTokenInvalid):
		return "Invalid token"
	case errors.Is(err, ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	case errors.Is(err, ErrAccountDeactivated):
		return "Account is deactivated"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrEmailExists):
		return "Email already registered"
	case errors.Is(err, ErrRefreshInvalid):
		return "Invalid refresh token"
	case errors.Is(err, ErrCurrentPasswordIncorrect):
		return "Current password is incorrect"
	case errors.Is(err, ErrResetTokenInvalid):
		return "Invalid or expired reset token"
	case errors.Is(err, ErrVerificationTokenInvalid):
		return "Invalid or expired verification token"
	case errors.Is(err, ErrInsufficientPermissions):
		return "Insufficient permissions"
	case errors.Is(err, ErrVerificationRequired):
		return "Email verification required"
	case errors.Is(err, ErrAccessDenied):
		return "Access denied"
	case errors.Is(err, ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, ErrCourseNotAvailable):
		return "Course is not yet available"
	case errors.Is(err, ErrNotEnrolled):
		return "You are not enrolled in this course"
	case errors.Is(err, ErrEnrollmentNotActive):
		return "Your enrollment is not active"
	case errors.Is(err, ErrEnrollmentExpired):
		return "Your course access has expired"
	case errors.Is(err, ErrAlreadyEnrolled):
		return "You are already enrolled in this course"
	default:
		return "Internal server error"
	}
}
