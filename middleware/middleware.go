// Package middleware wraps the engine's authentication and authorization
// checks as net/http middleware. Gates compose left to right and the
// first failure short-circuits with the engine's JSON error contract:
//
//	mux.Handle("/courses/{id}/content",
//		middleware.Authenticate(engine)(
//			middleware.RequireCourseAccess(engine, courseFromPath)(handler)))
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	courseauth "github.com/campusworks/courseauth"
)

// Selector extracts a resource identifier from the request, typically a
// path parameter. Returning "" fails the gate.
type Selector func(r *http.Request) string

// Authenticate verifies the bearer token, loads the live identity, and
// attaches it to the request context for downstream gates and handlers.
func Authenticate(engine *courseauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := engine.AuthenticateBearer(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(courseauth.WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuthenticate attaches an identity when a valid bearer token is
// present and silently continues without one otherwise. Public endpoints
// use it to personalize output for logged-in callers.
func OptionalAuthenticate(engine *courseauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := engine.AuthenticateBearer(r.Context(), r.Header.Get("Authorization"))
			if err == nil {
				r = r.WithContext(courseauth.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize denies with 403 unless the attached identity's role is in the
// allowed set. Run it after Authenticate.
func Authorize(roles ...courseauth.Role) func(http.Handler) http.Handler {
	allowed := make(map[courseauth.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := courseauth.UserFromContext(r.Context())
			if !ok {
				writeError(w, courseauth.ErrTokenRequired)
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				writeError(w, courseauth.ErrInsufficientPermissions)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is Authorize(RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return Authorize(courseauth.RoleAdmin)
}

// RequireVerified denies unverified accounts.
func RequireVerified() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := courseauth.UserFromContext(r.Context())
			if !ok {
				writeError(w, courseauth.ErrTokenRequired)
				return
			}
			if !user.IsVerified {
				writeError(w, courseauth.ErrVerificationRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnership lets admins through and otherwise requires the
// selector's owner id to equal the caller's id.
func RequireOwnership(ownerID Selector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := courseauth.UserFromContext(r.Context())
			if !ok {
				writeError(w, courseauth.ErrTokenRequired)
				return
			}
			if user.Role != courseauth.RoleAdmin && user.ID != ownerID(r) {
				writeError(w, courseauth.ErrAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCourseAccess gates course content on the engine's enrollment
// check. courseID selects the course from the request.
func RequireCourseAccess(engine *courseauth.Engine, courseID Selector) func(http.Handler) http.Handler {
	return courseCheck(engine, courseID, (*courseauth.Engine).CheckCourseAccess)
}

// CanEnroll gates enrollment creation on the engine's eligibility check.
func CanEnroll(engine *courseauth.Engine, courseID Selector) func(http.Handler) http.Handler {
	return courseCheck(engine, courseID, (*courseauth.Engine).CheckEnrollEligibility)
}

// RequireCourseOwnership gates course authoring on the engine's ownership
// check.
func RequireCourseOwnership(engine *courseauth.Engine, courseID Selector) func(http.Handler) http.Handler {
	return courseCheck(engine, courseID, (*courseauth.Engine).CheckCourseOwnership)
}

func courseCheck(engine *courseauth.Engine, courseID Selector, check func(*courseauth.Engine, context.Context, courseauth.PublicUser, string) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := courseauth.UserFromContext(r.Context())
			if !ok {
				writeError(w, courseauth.ErrTokenRequired)
				return
			}

			id := courseID(r)
			if id == "" {
				writeError(w, courseauth.ErrCourseNotFound)
				return
			}

			if err := check(engine, r.Context(), user, id); err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorBody struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
	Score  int      `json:"score,omitempty"`
}

// writeError renders the engine's boundary contract: status from
// ErrorStatus, message from ErrorMessage, and for validation failures
// the itemized rule errors and the computed score.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: courseauth.ErrorMessage(err)}

	var verr *courseauth.ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Errors
		body.Score = verr.Score
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(courseauth.ErrorStatus(err))
	_ = json.NewEncoder(w).Encode(body)
}
