package internaldefs

import (
	courseauth "github.com/campusworks/courseauth"
)

// CounterDef names a courseauth counter for an exporter.
type CounterDef struct {
	ID   courseauth.MetricID
	Name string
	Help string
}

// HistogramDef names a courseauth histogram for an exporter.
type HistogramDef struct {
	ID   courseauth.MetricID
	Name string
	Help string
}

// CounterDefs is the full exported counter set, shared by the prometheus
// and otel exporters so both surfaces stay in sync.
var CounterDefs = []CounterDef{
	{ID: courseauth.MetricRegisterSuccess, Name: "courseauth_register_success_total", Help: "Successful registrations."},
	{ID: courseauth.MetricRegisterDuplicate, Name: "courseauth_register_duplicate_total", Help: "Registrations rejected as duplicate email."},
	{ID: courseauth.MetricRegisterWeakPassword, Name: "courseauth_register_weak_password_total", Help: "Registrations rejected by the strength policy."},
	{ID: courseauth.MetricLoginSuccess, Name: "courseauth_login_success_total", Help: "Successful login attempts."},
	{ID: courseauth.MetricLoginFailure, Name: "courseauth_login_failure_total", Help: "Failed login attempts."},
	{ID: courseauth.MetricLoginDeactivated, Name: "courseauth_login_deactivated_total", Help: "Login attempts against deactivated accounts."},
	{ID: courseauth.MetricRefreshSuccess, Name: "courseauth_refresh_success_total", Help: "Successful token refreshes."},
	{ID: courseauth.MetricRefreshFailure, Name: "courseauth_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: courseauth.MetricLogout, Name: "courseauth_logout_total", Help: "Logout operations."},
	{ID: courseauth.MetricPasswordChangeSuccess, Name: "courseauth_password_change_success_total", Help: "Successful password changes."},
	{ID: courseauth.MetricPasswordChangeInvalidOld, Name: "courseauth_password_change_invalid_old_total", Help: "Password changes rejected for a wrong current password."},
	{ID: courseauth.MetricPasswordResetRequest, Name: "courseauth_password_reset_request_total", Help: "Password reset requests."},
	{ID: courseauth.MetricPasswordResetConfirmSuccess, Name: "courseauth_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: courseauth.MetricPasswordResetConfirmFailure, Name: "courseauth_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: courseauth.MetricEmailVerificationSuccess, Name: "courseauth_email_verification_success_total", Help: "Successful email verifications."},
	{ID: courseauth.MetricEmailVerificationFailure, Name: "courseauth_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: courseauth.MetricEmailVerificationResend, Name: "courseauth_email_verification_resend_total", Help: "Re-issued verification tokens."},
	{ID: courseauth.MetricAuthenticateSuccess, Name: "courseauth_authenticate_success_total", Help: "Successful bearer authentications."},
	{ID: courseauth.MetricAuthenticateFailure, Name: "courseauth_authenticate_failure_total", Help: "Failed bearer authentications."},
	{ID: courseauth.MetricCourseAccessGranted, Name: "courseauth_course_access_granted_total", Help: "Course access checks that passed."},
	{ID: courseauth.MetricCourseAccessDenied, Name: "courseauth_course_access_denied_total", Help: "Course access checks that denied."},
}

// HistogramDefs is the exported histogram set.
var HistogramDefs = []HistogramDef{
	{ID: courseauth.MetricAuthenticateLatency, Name: "courseauth_authenticate_latency_seconds", Help: "Bearer authentication latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's fixed buckets, in
// seconds, as rendered on the prometheus text surface.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with metric-name-safe
// suffixes for exporters that flatten buckets into instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies a snapshot slice into the fixed 8-bucket shape.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// prometheus expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
