package token

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose names the single operation a purpose-scoped token is valid for.
type Purpose string

const (
	// PurposeEmailVerification scopes a token to the email verification flow.
	PurposeEmailVerification Purpose = "email-verification"
	// PurposePasswordReset scopes a token to the password reset flow.
	PurposePasswordReset Purpose = "password-reset"
)

var (
	// ErrExpired is returned when a token's expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for any non-expiry verification failure:
	// tampered signature, wrong issuer or audience, malformed token.
	ErrInvalid = errors.New("invalid token")
	// ErrWrongPurpose is returned when a purpose token is presented for a
	// purpose other than the one it was minted for.
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

// purposeAudienceSuffix keeps purpose tokens from ever verifying as access
// tokens: they share the access secret but carry a distinct audience.
const purposeAudienceSuffix = ":purpose"

// Config holds the signing material and lifetimes for the token Manager.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     string // e.g. "1h", "24h", "30d"
	RefreshTTL    string
	Issuer        string
	Audience      string
}

// Payload is the identity slice embedded in access and refresh tokens.
type Payload struct {
	UserID string
	Email  string
	Role   string
}

// Pair bundles a freshly minted access/refresh token pair. ExpiresIn is the
// access-token lifetime in seconds, derived from the configured TTL string.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AccessClaims is the claim set carried by access and refresh tokens.
// Subject holds the user ID; ID carries a per-token uuid so that two tokens
// minted for the same payload within the same signing second still differ.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// PurposeClaims is the claim set carried by purpose-scoped tokens.
type PurposeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the three token classes: access, refresh, and
// purpose-scoped. All tokens are HS256-signed; access and purpose tokens
// share a secret but never an audience.
type Manager struct {
	config     Config
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager validates cfg and returns a Manager. A missing secret or a
// malformed TTL string is a startup-class configuration error, not a
// per-request condition.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access token secret is not configured")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh token secret is not configured")
	}

	accessTTL, err := ParseTTL(cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("access ttl: %w", err)
	}
	refreshTTL, err := ParseTTL(cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh ttl: %w", err)
	}

	return &Manager{
		config:     cfg,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccessToken signs an access token for p with the access secret.
func (m *Manager) IssueAccessToken(p Payload) (string, error) {
	return m.sign(p, m.config.AccessSecret, m.accessTTL, m.config.Audience)
}

// IssueRefreshToken signs a refresh token for p with the refresh secret.
func (m *Manager) IssueRefreshToken(p Payload) (string, error) {
	return m.sign(p, m.config.RefreshSecret, m.refreshTTL, m.config.Audience)
}

// IssuePair mints an access/refresh pair for p.
func (m *Manager) IssuePair(p Payload) (Pair, error) {
	access, err := m.IssueAccessToken(p)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.IssueRefreshToken(p)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL / time.Second),
	}, nil
}

// VerifyAccessToken verifies signature, issuer, audience, and expiry against
// the access secret. Failures collapse to ErrExpired or ErrInvalid.
func (m *Manager) VerifyAccessToken(tokenStr string) (*AccessClaims, error) {
	return m.verify(tokenStr, m.config.AccessSecret, m.config.Audience)
}

// VerifyRefreshToken verifies a refresh token against the refresh secret.
func (m *Manager) VerifyRefreshToken(tokenStr string) (*AccessClaims, error) {
	return m.verify(tokenStr, m.config.RefreshSecret, m.config.Audience)
}

// IssuePurposeToken mints a token for userID valid only for the given
// purpose, signed with the access secret under the purpose audience.
func (m *Manager) IssuePurposeToken(userID string, purpose Purpose, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := PurposeClaims{
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience + purposeAudienceSuffix},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.AccessSecret)
}

// VerifyPurposeToken verifies a purpose token and additionally rejects it
// with ErrWrongPurpose when the embedded purpose differs from expected.
func (m *Manager) VerifyPurposeToken(tokenStr string, expected Purpose) (*PurposeClaims, error) {
	claims := &PurposeClaims{}
	if err := m.parse(tokenStr, claims, m.config.AccessSecret, m.config.Audience+purposeAudienceSuffix); err != nil {
		return nil, err
	}
	if claims.Purpose != string(expected) {
		return nil, ErrWrongPurpose
	}

	return claims, nil
}

// AccessTTL reports the parsed access-token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// RefreshTTL reports the parsed refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *Manager) sign(p Payload, secret []byte, ttl time.Duration, audience string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *Manager) verify(tokenStr string, secret []byte, audience string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims, secret, audience); err != nil {
		return nil, err
	}

	return claims, nil
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims, secret []byte, audience string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalid
	}
	if !parsed.Valid {
		return ErrInvalid
	}

	return nil
}

// ExtractBearer pulls the raw token out of an Authorization header value.
// The header must start with the literal "Bearer " scheme; anything else
// (missing header, wrong scheme, empty remainder) yields ok=false.
func ExtractBearer(header string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(header, bearer) {
		return "", false
	}

	tokenStr := header[len(bearer):]
	if tokenStr == "" {
		return "", false
	}

	return tokenStr, true
}

var ttlPattern = regexp.MustCompile(`^(\d+)(s|m|h|d|w)$`)

var ttlUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseTTL parses a lifetime string of the form "<digits><unit>" where unit
// is one of s, m, h, d, w. "1h" parses to one hour; malformed strings error.
func ParseTTL(s string) (time.Duration, error) {
	match := ttlPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("invalid ttl format: %q", s)
	}

	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl value: %q", s)
	}

	return time.Duration(n) * ttlUnits[match[2]], nil
}
