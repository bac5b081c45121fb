package courseauth

import (
	"context"
	"errors"
	"time"
)

// CheckCourseAccess decides whether user may consume course content.
// Admins always pass. Students need a published course and an ACTIVE,
// unexpired enrollment; any other role is denied outright.
func (e *Engine) CheckCourseAccess(ctx context.Context, user PublicUser, courseID string) error {
	if e == nil || e.courses == nil {
		return ErrEngineNotReady
	}

	err := e.checkCourseAccess(ctx, user, courseID)
	if err != nil {
		e.metrics.Inc(MetricCourseAccessDenied)
		e.emitAudit(ctx, auditEventCourseAccess, false, user.ID, "", courseID, err, nil)
		return err
	}

	e.metrics.Inc(MetricCourseAccessGranted)
	e.emitAudit(ctx, auditEventCourseAccess, true, user.ID, "", courseID, nil, nil)
	return nil
}

func (e *Engine) checkCourseAccess(ctx context.Context, user PublicUser, courseID string) error {
	if user.Role == RoleAdmin {
		return nil
	}
	if user.Role != RoleStudent {
		return ErrAccessDenied
	}

	course, err := e.courseFacts(ctx, courseID)
	if err != nil {
		return err
	}
	if !course.IsPublished {
		return ErrCourseNotAvailable
	}

	enrollment, err := e.courses.GetEnrollment(ctx, user.ID, courseID)
	if err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return ErrNotEnrolled
		}
		return err
	}
	if enrollment.Status != EnrollmentActive {
		return ErrEnrollmentNotActive
	}
	if enrollment.ExpiresAt != nil && enrollment.ExpiresAt.Before(time.Now()) {
		return ErrEnrollmentExpired
	}

	return nil
}

// CheckEnrollEligibility decides whether user may enroll in a course.
// Only students enroll; the course must exist and be published, and an
// existing enrollment of any status blocks a second one.
func (e *Engine) CheckEnrollEligibility(ctx context.Context, user PublicUser, courseID string) error {
	if e == nil || e.courses == nil {
		return ErrEngineNotReady
	}

	if user.Role != RoleStudent {
		return ErrInsufficientPermissions
	}

	course, err := e.courseFacts(ctx, courseID)
	if err != nil {
		return err
	}
	if !course.IsPublished {
		return ErrCourseNotAvailable
	}

	_, err = e.courses.GetEnrollment(ctx, user.ID, courseID)
	switch {
	case err == nil:
		return ErrAlreadyEnrolled
	case errors.Is(err, ErrEnrollmentNotFound):
		return nil
	default:
		return err
	}
}

// CheckCourseOwnership is the authoring gate: admins bypass, otherwise the
// course's recorded owner must be the caller.
func (e *Engine) CheckCourseOwnership(ctx context.Context, user PublicUser, courseID string) error {
	if e == nil || e.courses == nil {
		return ErrEngineNotReady
	}

	if user.Role == RoleAdmin {
		return nil
	}

	course, err := e.courseFacts(ctx, courseID)
	if err != nil {
		return err
	}
	if course.OwnerID != user.ID {
		return ErrAccessDenied
	}

	return nil
}

func (e *Engine) courseFacts(ctx context.Context, courseID string) (CourseFacts, error) {
	course, err := e.courses.GetCourseFacts(ctx, courseID)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return CourseFacts{}, ErrCourseNotFound
		}
		return CourseFacts{}, err
	}
	return course, nil
}
