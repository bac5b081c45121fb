package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the production cost factor. Lower it only for test
	// profiles; hashing latency is the dominant login cost.
	DefaultCost = 12

	maxPasswordBytes = 72 // bcrypt input limit
)

var (
	// ErrEmptyPassword is returned when a hash or verify input is empty.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrPasswordTooLong is returned when the input exceeds the 72-byte
	// bcrypt limit.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")
)

// symbolSet is the fixed punctuation class accepted by the strength policy.
// Tests depend on these exact characters.
const symbolSet = "!@#$%^&*(),.?\":{}|<>-_=+[]\\/~`"

const (
	minLength   = 6
	bonusLength = 8
	maxScore    = 4
)

// Policy hashes and verifies passwords with a tunable bcrypt cost factor and
// scores plaintext strength against the platform policy.
//
// Policy instances are intended to be configured during initialization and
// then treated as immutable.
type Policy struct {
	cost int
}

// NewPolicy validates the cost factor and returns a Policy. A zero cost
// selects DefaultCost.
func NewPolicy(cost int) (*Policy, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Policy{cost: cost}, nil
}

// Cost reports the configured cost factor.
func (p *Policy) Cost() int {
	return p.cost
}

// Hash derives a salted bcrypt hash of plaintext. Repeated calls with the
// same plaintext produce different hashes.
func (p *Policy) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is
// (false, nil); malformed inputs are surfaced as errors rather than a silent
// false.
func (p *Policy) Verify(plaintext, hash string) (bool, error) {
	if plaintext == "" {
		return false, ErrEmptyPassword
	}
	if hash == "" {
		return false, ErrMalformedHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrMalformedHash
	}
}

// NeedsRehash reports whether the hash's embedded cost factor differs from
// the configured one. Callers re-hash opportunistically on the next
// successful verification.
func (p *Policy) NeedsRehash(hash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false, ErrMalformedHash
	}

	return cost != p.cost, nil
}

// dummyHash is a valid cost-10 hash of a random string, compared against in
// DummyVerify so lookups that miss still pay a bcrypt comparison.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// DummyVerify burns one bcrypt comparison and always reports false. Flows
// call it on the unknown-account path to keep timing close to a real
// mismatch.
func (p *Policy) DummyVerify(plaintext string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plaintext))
	return false
}

// Strength is the result of scoring a plaintext against the platform policy.
type Strength struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
	Score   int      `json:"score"`
}

// ScoreStrength checks the three hard requirements (length >= 6, at least
// one uppercase letter, at least one symbol from the fixed set) and awards
// non-blocking bonus points for length >= 8, a lowercase letter, and a
// digit. Hard checks weigh 1 point, bonuses 0.5; the score is the floor of
// the sum capped at 4. The policy is deliberately lenient.
func ScoreStrength(plaintext string) Strength {
	var (
		hasUpper, hasLower, hasDigit, hasSymbol bool
	)
	for _, r := range plaintext {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(symbolSet, r):
			hasSymbol = true
		}
	}

	var errs []string
	sum := 0.0

	if len(plaintext) >= minLength {
		sum++
	} else {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", minLength))
	}
	if hasUpper {
		sum++
	} else {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if hasSymbol {
		sum++
	} else {
		errs = append(errs, "password must contain at least one special character")
	}

	if len(plaintext) >= bonusLength {
		sum += 0.5
	}
	if hasLower {
		sum += 0.5
	}
	if hasDigit {
		sum += 0.5
	}

	score := int(math.Floor(sum))
	if score > maxScore {
		score = maxScore
	}

	return Strength{
		IsValid: len(errs) == 0,
		Errors:  errs,
		Score:   score,
	}
}

const (
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	digitChars = "0123456789"
)

// Generate produces a random password of exactly length characters with at
// least one character from each included class. When includeSymbols is
// false, only letters and digits are used.
func Generate(length int, includeSymbols bool) (string, error) {
	classes := []string{upperChars, lowerChars, digitChars}
	if includeSymbols {
		classes = append(classes, symbolSet)
	}
	if length < len(classes) {
		return "", fmt.Errorf("length must be at least %d", len(classes))
	}

	pool := strings.Join(classes, "")
	out := make([]byte, 0, length)

	// One guaranteed character per class, then pad from the full pool.
	for _, class := range classes {
		c, err := randomByte(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := randomByte(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}

	return string(out), nil
}

func randomByte(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}

	return set[n.Int64()], nil
}

// shuffle is a crypto/rand Fisher-Yates over b.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}

	return nil
}
