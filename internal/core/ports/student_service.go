package ports

import (
	"context"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
)

type CreateStudentInput struct {
	Name       string
	TeacherID  string
	CourseName string
	Paid       bool
	Attendance domain.Attendance
}

// UpdateStudentInput is a partial update: nil fields are left untouched.
// A non-nil Attendance replaces the whole stored map.
type UpdateStudentInput struct {
	Name       *string
	TeacherID  *string
	CourseName *string
	Paid       *bool
	Attendance domain.Attendance
}

// AttendanceUpdate is one item of a bulk attendance request.
type AttendanceUpdate struct {
	StudentID  string
	Attendance domain.Attendance
}

const (
	AttendanceUpdated = "updated"
	AttendanceSkipped = "skipped"
)

// AttendanceResult reports what happened to one AttendanceUpdate.
type AttendanceResult struct {
	StudentID string
	Status    string // AttendanceUpdated or AttendanceSkipped
	Reason    string // set when skipped
}

// BulkAttendanceResult lists the students that were written plus one result
// per requested item, in request order.
type BulkAttendanceResult struct {
	Students []*domain.Student
	Results  []AttendanceResult
}

// StudentService defines use-case operations for students and attendance.
type StudentService interface {
	ListStudents(ctx context.Context, actor domain.Actor) ([]*domain.Student, error)
	CreateStudent(ctx context.Context, actor domain.Actor, in CreateStudentInput) (*domain.Student, error)
	UpdateStudent(ctx context.Context, actor domain.Actor, id string, in UpdateStudentInput) (*domain.Student, error)
	DeleteStudent(ctx context.Context, actor domain.Actor, id string) error
	BulkUpdateAttendance(ctx context.Context, actor domain.Actor, updates []AttendanceUpdate) (*BulkAttendanceResult, error)
}
