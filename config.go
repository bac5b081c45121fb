package courseauth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/campusworks/courseauth/token"
)

// Config is the full engine configuration. Zero values fall back to the
// defaults applied by Validate; secrets have no default and must be set.
type Config struct {
	Token        TokenConfig
	Password     PasswordConfig
	Verification VerificationConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// TokenConfig configures the HS256 token service. TTLs are duration
// strings in the platform's compact form ("900s", "15m", "24h", "7d",
// "2w").
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     string
	RefreshTTL    string
	Issuer        string
	Audience      string
}

type PasswordConfig struct {
	// Cost is the bcrypt cost factor. Zero means the package default.
	Cost int
	// RehashOnLogin re-hashes and persists a password at the configured
	// cost on the next successful login when the stored hash's cost
	// differs. Off by default: enabling it turns logins into writes.
	RehashOnLogin bool
}

// VerificationConfig sets lifetimes for the single-purpose tokens minted
// for email verification and password reset.
type VerificationConfig struct {
	EmailTokenTTL time.Duration
	ResetTokenTTL time.Duration
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events instead of blocking the flow when the
	// dispatcher buffer is full.
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// ConfigError reports an invalid or missing configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("courseauth: config %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns the baseline configuration. Secrets are left empty
// and must be filled in before Build.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  "24h",
			RefreshTTL: "30d",
			Issuer:     "courseauth",
			Audience:   "courseauth",
		},
		Verification: VerificationConfig{
			EmailTokenTTL: 24 * time.Hour,
			ResetTokenTTL: time.Hour,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate fills defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.Token.AccessSecret == "" {
		return &ConfigError{Field: "Token.AccessSecret", Reason: "must not be empty"}
	}
	if c.Token.RefreshSecret == "" {
		return &ConfigError{Field: "Token.RefreshSecret", Reason: "must not be empty"}
	}
	if c.Token.AccessSecret == c.Token.RefreshSecret {
		return &ConfigError{Field: "Token.RefreshSecret", Reason: "must differ from access secret"}
	}
	if c.Token.AccessTTL == "" {
		c.Token.AccessTTL = "24h"
	}
	if c.Token.RefreshTTL == "" {
		c.Token.RefreshTTL = "30d"
	}
	if _, err := token.ParseTTL(c.Token.AccessTTL); err != nil {
		return &ConfigError{Field: "Token.AccessTTL", Reason: err.Error()}
	}
	if _, err := token.ParseTTL(c.Token.RefreshTTL); err != nil {
		return &ConfigError{Field: "Token.RefreshTTL", Reason: err.Error()}
	}
	if c.Token.Issuer == "" {
		c.Token.Issuer = "courseauth"
	}
	if c.Token.Audience == "" {
		c.Token.Audience = "courseauth"
	}
	if c.Verification.EmailTokenTTL <= 0 {
		c.Verification.EmailTokenTTL = 24 * time.Hour
	}
	if c.Verification.ResetTokenTTL <= 0 {
		c.Verification.ResetTokenTTL = time.Hour
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = 256
	}
	return nil
}

// ConfigFromEnv builds a Config from COURSEAUTH_* environment variables,
// loading a .env file first when one exists. Unset variables keep the
// defaults from [DefaultConfig].
//
//	COURSEAUTH_ACCESS_SECRET    HS256 access/purpose secret (required)
//	COURSEAUTH_REFRESH_SECRET   HS256 refresh secret (required)
//	COURSEAUTH_ACCESS_TTL       e.g. "15m", "24h"
//	COURSEAUTH_REFRESH_TTL      e.g. "30d"
//	COURSEAUTH_ISSUER
//	COURSEAUTH_AUDIENCE
//	COURSEAUTH_BCRYPT_COST
//	COURSEAUTH_REHASH_ON_LOGIN  "true"/"false"
//	COURSEAUTH_AUDIT_ENABLED    "true"/"false"
//	COURSEAUTH_METRICS_ENABLED  "true"/"false"
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.Token.AccessSecret = os.Getenv("COURSEAUTH_ACCESS_SECRET")
	cfg.Token.RefreshSecret = os.Getenv("COURSEAUTH_REFRESH_SECRET")

	if v := os.Getenv("COURSEAUTH_ACCESS_TTL"); v != "" {
		cfg.Token.AccessTTL = v
	}
	if v := os.Getenv("COURSEAUTH_REFRESH_TTL"); v != "" {
		cfg.Token.RefreshTTL = v
	}
	if v := os.Getenv("COURSEAUTH_ISSUER"); v != "" {
		cfg.Token.Issuer = v
	}
	if v := os.Getenv("COURSEAUTH_AUDIENCE"); v != "" {
		cfg.Token.Audience = v
	}
	if v := os.Getenv("COURSEAUTH_BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, &ConfigError{Field: "Password.Cost", Reason: "not a number: " + v}
		}
		cfg.Password.Cost = cost
	}
	if v := os.Getenv("COURSEAUTH_REHASH_ON_LOGIN"); v != "" {
		cfg.Password.RehashOnLogin = v == "true" || v == "1"
	}
	if v := os.Getenv("COURSEAUTH_AUDIT_ENABLED"); v != "" {
		cfg.Audit.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("COURSEAUTH_METRICS_ENABLED"); v != "" {
		enabled := v == "true" || v == "1"
		cfg.Metrics.Enabled = enabled
		cfg.Metrics.EnableLatencyHistograms = enabled
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
