package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/metrics"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/queue"
)

// StudentService implements student management and attendance recording.
type StudentService struct {
	students ports.StudentRepository
	users    ports.UserRepository
	policy   TenantPolicy
	pool     *queue.Dispatcher
	log      zerolog.Logger
}

func NewStudentService(students ports.StudentRepository, users ports.UserRepository, policy TenantPolicy, log zerolog.Logger) *StudentService {
	return &StudentService{
		students: students,
		users:    users,
		policy:   policy,
		pool:     queue.NewDispatcher(0),
		log:      log,
	}
}

// ListStudents returns the center's students; teachers only see their own.
func (s *StudentService) ListStudents(ctx context.Context, actor domain.Actor) ([]*domain.Student, error) {
	scope := s.policy.Scope(actor)
	if !actor.IsAdmin() {
		scope.TeacherID = actor.UserID
	}
	return s.students.List(ctx, scope)
}

func (s *StudentService) CreateStudent(ctx context.Context, actor domain.Actor, in ports.CreateStudentInput) (*domain.Student, error) {
	if domain.Blank(in.Name) {
		return nil, domain.Invalid("name is required")
	}

	teacherID := in.TeacherID
	if !actor.IsAdmin() {
		if teacherID != "" && teacherID != actor.UserID {
			return nil, domain.ErrForbidden
		}
		if in.Paid {
			return nil, domain.ErrForbidden
		}
		teacherID = actor.UserID
	}
	if teacherID == "" {
		return nil, domain.Invalid("teacherId is required")
	}

	teacher, err := s.teacher(ctx, actor, teacherID)
	if err != nil {
		return nil, err
	}

	attendance := in.Attendance
	if attendance == nil {
		attendance = domain.Attendance{}
	}
	if err := attendance.Validate(); err != nil {
		return nil, err
	}

	courseName := strings.TrimSpace(in.CourseName)
	if courseName == "" {
		courseName = teacher.CourseName
	}

	student := &domain.Student{
		Name:       strings.TrimSpace(in.Name),
		TeacherID:  teacherID,
		CourseName: courseName,
		Paid:       in.Paid,
		CenterName: actor.CenterName,
		Attendance: attendance,
	}
	created, err := s.students.Create(ctx, student)
	if err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	s.log.Info().Str("student_id", created.ID).Str("teacher_id", teacherID).Msg("student created")
	return created, nil
}

func (s *StudentService) UpdateStudent(ctx context.Context, actor domain.Actor, id string, in ports.UpdateStudentInput) (*domain.Student, error) {
	student, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (in.TeacherID != nil || in.Paid != nil) {
		return nil, domain.ErrForbidden
	}

	if in.Name != nil {
		if domain.Blank(*in.Name) {
			return nil, domain.Invalid("name must not be empty")
		}
		student.Name = strings.TrimSpace(*in.Name)
	}
	if in.TeacherID != nil && *in.TeacherID != student.TeacherID {
		if _, err := s.teacher(ctx, actor, *in.TeacherID); err != nil {
			return nil, err
		}
		student.TeacherID = *in.TeacherID
	}
	if in.CourseName != nil {
		student.CourseName = strings.TrimSpace(*in.CourseName)
	}
	if in.Paid != nil {
		student.Paid = *in.Paid
	}
	if in.Attendance != nil {
		if err := in.Attendance.Validate(); err != nil {
			return nil, err
		}
		student.Attendance = in.Attendance
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return student, nil
}

// DeleteStudent is admin only; teachers are refused before any lookup.
func (s *StudentService) DeleteStudent(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	student, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.students.Delete(ctx, student.ID); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	s.log.Info().Str("student_id", student.ID).Str("by", actor.UserID).Msg("student deleted")
	return nil
}

// BulkUpdateAttendance merges each partial attendance map into its student.
// Items run concurrently, except that items for the same student are applied
// in request order. An item that cannot be applied is reported as skipped and
// the rest still go through. Results keep the request order.
func (s *StudentService) BulkUpdateAttendance(ctx context.Context, actor domain.Actor, updates []ports.AttendanceUpdate) (*ports.BulkAttendanceResult, error) {
	start := time.Now()
	defer func() {
		metrics.AttendanceBatchDuration.Observe(time.Since(start).Seconds())
	}()

	written := make([]*domain.Student, len(updates))
	results := make([]ports.AttendanceResult, len(updates))

	err := s.pool.Run(ctx, len(updates),
		func(i int) string { return updates[i].StudentID },
		func(ctx context.Context, i int) {
			u := updates[i]
			updated, err := s.applyAttendance(ctx, actor, u)
			if err != nil {
				reason := skipReason(err)
				s.log.Warn().Err(err).Str("student_id", u.StudentID).Str("reason", reason).Msg("attendance item skipped")
				metrics.AttendanceItemsTotal.WithLabelValues(ports.AttendanceSkipped).Inc()
				results[i] = ports.AttendanceResult{StudentID: u.StudentID, Status: ports.AttendanceSkipped, Reason: reason}
				return
			}
			metrics.AttendanceItemsTotal.WithLabelValues(ports.AttendanceUpdated).Inc()
			written[i] = updated
			results[i] = ports.AttendanceResult{StudentID: u.StudentID, Status: ports.AttendanceUpdated}
		})
	if err != nil {
		return nil, err
	}

	out := &ports.BulkAttendanceResult{
		Students: make([]*domain.Student, 0, len(updates)),
		Results:  results,
	}
	for _, st := range written {
		if st != nil {
			out.Students = append(out.Students, st)
		}
	}

	s.log.Info().
		Int("items", len(updates)).
		Int("updated", len(out.Students)).
		Str("by", actor.UserID).
		Msg("attendance batch applied")
	return out, nil
}

func (s *StudentService) applyAttendance(ctx context.Context, actor domain.Actor, u ports.AttendanceUpdate) (*domain.Student, error) {
	if len(u.Attendance) == 0 {
		return nil, domain.Invalid("attendance is empty")
	}
	if err := u.Attendance.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, actor, u.StudentID); err != nil {
		return nil, err
	}
	return s.students.MergeAttendance(ctx, u.StudentID, u.Attendance)
}

// load fetches a student and checks that actor may modify it.
func (s *StudentService) load(ctx context.Context, actor domain.Actor, id string) (*domain.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Owns(actor, student.CenterName) {
		return nil, domain.ErrForbidden
	}
	if !actor.IsAdmin() && student.TeacherID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return student, nil
}

func (s *StudentService) teacher(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	teacher, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil, domain.Invalid("teacherId does not name a teacher of this center")
		}
		return nil, fmt.Errorf("load teacher: %w", err)
	}
	if teacher.Role != domain.RoleTeacher || !s.policy.Owns(actor, teacher.CenterName) {
		return nil, domain.Invalid("teacherId does not name a teacher of this center")
	}
	return teacher, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrStudentNotFound):
		return "not found"
	case errors.Is(err, domain.ErrInvalidID):
		return "invalid id"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	default:
		return "write failed"
	}
}
