package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPolicy(t *testing.T) *Policy {
	t.Helper()

	p, err := NewPolicy(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	return p
}

func TestNewPolicyValidatesCost(t *testing.T) {
	if _, err := NewPolicy(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("expected error for cost above max")
	}
	if _, err := NewPolicy(2); err == nil {
		t.Fatal("expected error for cost below min")
	}

	p, err := NewPolicy(0)
	if err != nil {
		t.Fatalf("NewPolicy(0) failed: %v", err)
	}
	if p.Cost() != DefaultCost {
		t.Fatalf("expected default cost %d, got %d", DefaultCost, p.Cost())
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	p := newTestPolicy(t)

	for _, plain := range []string{"x", "Str0ngP4ss!@#", "correct horse battery staple"} {
		hash, err := p.Hash(plain)
		if err != nil {
			t.Fatalf("Hash(%q) failed: %v", plain, err)
		}

		ok, err := p.Verify(plain, hash)
		if err != nil || !ok {
			t.Fatalf("Verify(%q) = (%v, %v), want (true, nil)", plain, ok, err)
		}

		ok, err = p.Verify(plain+"-wrong", hash)
		if err != nil || ok {
			t.Fatalf("Verify(wrong) = (%v, %v), want (false, nil)", ok, err)
		}
	}
}

func TestHashIsSalted(t *testing.T) {
	p := newTestPolicy(t)

	first, err := p.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := p.Hash("same-input")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for repeated input")
	}
}

func TestHashRejectsInvalidInput(t *testing.T) {
	p := newTestPolicy(t)

	if _, err := p.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if _, err := p.Hash(strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestVerifyRejectsMalformedArguments(t *testing.T) {
	p := newTestPolicy(t)

	if _, err := p.Verify("", "$2a$10$whatever"); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if _, err := p.Verify("x", ""); !errors.Is(err, ErrMalformedHash) {
		t.Fatalf("expected ErrMalformedHash for empty hash, got %v", err)
	}
	if _, err := p.Verify("x", "not-a-bcrypt-hash"); !errors.Is(err, ErrMalformedHash) {
		t.Fatalf("expected ErrMalformedHash, got %v", err)
	}
}

func TestNeedsRehashTracksEmbeddedCost(t *testing.T) {
	low, err := NewPolicy(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	high, err := NewPolicy(bcrypt.MinCost + 1)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	hash, err := low.Hash("some-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	needs, err := low.NeedsRehash(hash)
	if err != nil || needs {
		t.Fatalf("NeedsRehash(same cost) = (%v, %v), want (false, nil)", needs, err)
	}
	needs, err = high.NeedsRehash(hash)
	if err != nil || !needs {
		t.Fatalf("NeedsRehash(different cost) = (%v, %v), want (true, nil)", needs, err)
	}
	if _, err := low.NeedsRehash("garbage"); !errors.Is(err, ErrMalformedHash) {
		t.Fatalf("expected ErrMalformedHash, got %v", err)
	}
}

func TestScoreStrengthBoundaries(t *testing.T) {
	cases := []struct {
		plaintext string
		valid     bool
		score     int
	}{
		{"abcdefgh", false, 2},      // no uppercase, no symbol
		{"ABCDEFGH", false, 2},      // no symbol
		{"Abc1234", false, 3},       // no symbol
		{"Str0ngP4ss!@#", true, 4},  // all hard checks plus every bonus
		{"A!bcde", true, 3},         // bare minimum hard pass
		{"", false, 0},
	}

	for _, tc := range cases {
		got := ScoreStrength(tc.plaintext)
		if got.IsValid != tc.valid {
			t.Fatalf("ScoreStrength(%q).IsValid = %v, want %v (errors: %v)", tc.plaintext, got.IsValid, tc.valid, got.Errors)
		}
		if got.Score != tc.score {
			t.Fatalf("ScoreStrength(%q).Score = %d, want %d", tc.plaintext, got.Score, tc.score)
		}
		if tc.valid && len(got.Errors) != 0 {
			t.Fatalf("ScoreStrength(%q) valid but errors %v", tc.plaintext, got.Errors)
		}
	}
}

func TestScoreStrengthAcceptsEverySymbolInSet(t *testing.T) {
	for _, r := range symbolSet {
		candidate := "Abcde" + string(r)
		got := ScoreStrength(candidate)
		if !got.IsValid {
			t.Fatalf("expected %q to satisfy the symbol requirement (errors: %v)", candidate, got.Errors)
		}
	}
}

func TestGenerateLengthAndClasses(t *testing.T) {
	for _, length := range []int{4, 8, 16, 32} {
		out, err := Generate(length, true)
		if err != nil {
			t.Fatalf("Generate(%d, true) failed: %v", length, err)
		}
		if len(out) != length {
			t.Fatalf("Generate(%d) returned %d characters", length, len(out))
		}
		if !strings.ContainsAny(out, upperChars) ||
			!strings.ContainsAny(out, lowerChars) ||
			!strings.ContainsAny(out, digitChars) ||
			!strings.ContainsAny(out, symbolSet) {
			t.Fatalf("Generate(%d, true) missing a required class: %q", length, out)
		}
	}
}

func TestGenerateWithoutSymbols(t *testing.T) {
	out, err := Generate(16, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.ContainsAny(out, symbolSet) {
		t.Fatalf("expected no symbols, got %q", out)
	}
	if len(out) != 16 {
		t.Fatalf("expected length 16, got %d", len(out))
	}
}

func TestGenerateRejectsTinyLength(t *testing.T) {
	if _, err := Generate(2, true); err == nil {
		t.Fatal("expected error for length below class count")
	}
}
