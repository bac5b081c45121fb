package courseauth

import (
	"github.com/redis/go-redis/v9"

	"github.com/campusworks/courseauth/password"
	"github.com/campusworks/courseauth/revoke"
	"github.com/campusworks/courseauth/token"
)

// Builder assembles an Engine. Chain the With* methods and finish with
// Build; a zero Builder is not usable.
type Builder struct {
	config          Config
	configSet       bool
	metricsOverride *bool
	users           UserProvider
	courses         CourseProvider
	revocations     revoke.Store
	auditSink       AuditSink
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.configSet = true
	return b
}

// WithUserProvider sets the identity store. Required.
func (b *Builder) WithUserProvider(p UserProvider) *Builder {
	b.users = p
	return b
}

// WithCourseProvider sets the course/enrollment store. Required only when
// the course access checks are used.
func (b *Builder) WithCourseProvider(p CourseProvider) *Builder {
	b.courses = p
	return b
}

// WithRevocationStore sets the token revocation backend. Defaults to an
// in-process store when unset.
func (b *Builder) WithRevocationStore(s revoke.Store) *Builder {
	b.revocations = s
	return b
}

// WithRedis is shorthand for a Redis-backed revocation store, for
// deployments with more than one instance.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.revocations = revoke.NewRedisStore(client, "")
	return b
}

// WithAuditSink sets where audit events go. Only consulted when
// Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles metric collection, overriding whatever the
// config says.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.metricsOverride = &enabled
	return b
}

// Build validates the configuration, wires the token service, password
// policy, revocation store, audit dispatcher, and metrics, and returns a
// ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if !b.configSet {
		b.config = DefaultConfig()
	}
	if b.metricsOverride != nil {
		b.config.Metrics.Enabled = *b.metricsOverride
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, &ConfigError{Field: "UserProvider", Reason: "must be set"}
	}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  []byte(b.config.Token.AccessSecret),
		RefreshSecret: []byte(b.config.Token.RefreshSecret),
		AccessTTL:     b.config.Token.AccessTTL,
		RefreshTTL:    b.config.Token.RefreshTTL,
		Issuer:        b.config.Token.Issuer,
		Audience:      b.config.Token.Audience,
	})
	if err != nil {
		return nil, err
	}

	policy, err := password.NewPolicy(b.config.Password.Cost)
	if err != nil {
		return nil, err
	}

	revocations := b.revocations
	if revocations == nil {
		revocations = revoke.NewMemoryStore()
	}

	e := &Engine{
		config:      b.config,
		users:       b.users,
		courses:     b.courses,
		tokens:      tokens,
		passwords:   policy,
		revocations: revocations,
		metrics:     NewMetrics(b.config.Metrics),
		audit:       newAuditDispatcher(b.config.Audit, b.auditSink),
	}
	return e, nil
}
