package gateway

import (
	"context"

	"gradebook-extract/internal/model"
)

// Gateway is the capability surface of the remote learning-management
// service: one authenticated session plus the read operations the
// extraction needs. Implementations never return a nil slice from a
// successful list call, and Logout on a gateway that was never logged
// in (or is already closed) is a no-op. The gateway does not retry;
// retry and rotation policy belong to the caller.
type Gateway interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	AllCourses(ctx context.Context) ([]model.Course, error)
	CoursesContaining(ctx context.Context, courseID string) ([]model.Course, error)
	Enrollments(ctx context.Context, courseID string, roles []string) ([]model.Enrollment, error)
	Columns(ctx context.Context, courseID string) ([]model.GradebookColumn, error)
	ExternalGradeColumn(ctx context.Context, courseID string) (model.GradebookColumn, error)
	Users(ctx context.Context, courseID string) ([]model.User, error)
	Scores(ctx context.Context, courseID string) ([]model.Score, error)
}

// DialFunc opens a fresh gateway and authenticates it. Session
// rotation discards the old gateway and dials a new one through this.
type DialFunc func(ctx context.Context) (Gateway, error)
