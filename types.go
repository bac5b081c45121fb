package courseauth

import (
	"context"
	"time"
)

// Role is the platform role carried by an identity and embedded in tokens.
type Role string

const (
	// RoleAdmin bypasses ownership and enrollment gates.
	RoleAdmin Role = "ADMIN"
	// RoleStudent is the only role ever assigned at registration.
	RoleStudent Role = "STUDENT"
)

// EnrollmentStatus is the lifecycle state of a course enrollment.
type EnrollmentStatus string

const (
	// EnrollmentActive grants content access until the optional expiry.
	EnrollmentActive EnrollmentStatus = "ACTIVE"
	// EnrollmentCompleted marks a finished course; access is closed.
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	// EnrollmentSuspended withholds access without deleting the record.
	EnrollmentSuspended EnrollmentStatus = "SUSPENDED"
)

// User is the identity record owned by the data store. The engine reads it
// and requests updates to PasswordHash, IsVerified, IsActive, and
// LastLoginAt; everything else is the store's business.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	IsActive     bool
	IsVerified   bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// PublicUser is the sanitized identity view attached to request contexts
// and returned by flows. It never carries the password hash.
type PublicUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"isActive"`
	IsVerified  bool       `json:"isVerified"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Public strips the password hash from a User.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		LastLoginAt: u.LastLoginAt,
	}
}

// CreateUserInput is the record handed to [UserProvider.CreateUser]. The
// engine assigns the ID and always forces Role before calling.
type CreateUserInput struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	IsActive     bool
	IsVerified   bool
}

// UserUpdate is a partial identity update. Nil fields are left untouched.
type UserUpdate struct {
	PasswordHash *string
	IsVerified   *bool
	IsActive     *bool
	LastLoginAt  *time.Time
}

// UserProvider is the identity-store contract callers implement to plug the
// engine into their user database. Implementations return [ErrUserNotFound]
// for missing records; any other error is treated as a storage failure and
// never reaches clients verbatim.
type UserProvider interface {
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (User, error)
}

// CourseFacts is the read-only course projection consulted by access
// checks. Price is carried for callers that gate on it; the engine's own
// checks use only OwnerID and IsPublished.
type CourseFacts struct {
	ID          string
	OwnerID     string
	IsPublished bool
	Price       int64
}

// Enrollment links a user to a course with a status and optional expiry.
type Enrollment struct {
	UserID    string
	CourseID  string
	Status    EnrollmentStatus
	ExpiresAt *time.Time
}

// CourseProvider is the read-only course/enrollment contract consulted by
// the access gates. Implementations return [ErrCourseNotFound] and
// [ErrEnrollmentNotFound] for missing records.
type CourseProvider interface {
	GetCourseFacts(ctx context.Context, courseID string) (CourseFacts, error)
	GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
}

// RegisterInput is the request shape for [Engine.Register]. Any role the
// caller supplies alongside these fields is ignored.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult is returned by [Engine.Register]. VerificationToken is the
// email-verification purpose token; returning it in-band is a development
// convenience, not a delivery channel.
type RegisterResult struct {
	User              PublicUser `json:"user"`
	Tokens            TokenPair  `json:"tokens"`
	VerificationToken string     `json:"verificationToken,omitempty"`
}

// LoginResult is returned by [Engine.Login] and [Engine.Refresh].
type LoginResult struct {
	User   PublicUser `json:"user"`
	Tokens TokenPair  `json:"tokens"`
}

// TokenPair bundles an access/refresh pair. ExpiresIn is the access-token
// lifetime in seconds, derived from the configured TTL string.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
