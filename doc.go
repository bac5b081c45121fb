// Package courseauth is the authentication and authorization core for a
// course platform: HS256 token issuance and verification, bcrypt password
// policy with strength scoring, the registration/login/refresh/reset
// flows, and the layered access checks (role, ownership, enrollment) that
// gate course content.
//
// Build an engine with the builder:
//
//	engine, err := courseauth.New().
//		WithConfig(cfg).
//		WithUserProvider(users).
//		WithCourseProvider(courses).
//		Build()
//
// The middleware subpackage wraps the engine's checks as net/http
// middleware. Persistence stays behind the UserProvider and
// CourseProvider interfaces; the engine never talks to a database
// directly.
package courseauth
