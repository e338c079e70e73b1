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
)

// CourseService implements course management and lesson scheduling.
type CourseService struct {
	courses ports.CourseRepository
	users   ports.UserRepository
	policy  TenantPolicy
	log     zerolog.Logger
	now     func() time.Time
}

func NewCourseService(courses ports.CourseRepository, users ports.UserRepository, policy TenantPolicy, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		users:   users,
		policy:  policy,
		log:     log,
		now:     time.Now,
	}
}

func (s *CourseService) ListCourses(ctx context.Context, actor domain.Actor) ([]*domain.Course, error) {
	return s.courses.List(ctx, s.policy.Scope(actor))
}

func (s *CourseService) CreateCourse(ctx context.Context, actor domain.Actor, in ports.CreateCourseInput) (*domain.Course, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if domain.Blank(in.Name) {
		return nil, domain.Invalid("name is required")
	}
	if in.Price < 0 {
		return nil, domain.Invalid("price must not be negative")
	}
	if err := s.checkTeacher(ctx, actor, in.TeacherID); err != nil {
		return nil, err
	}

	course := &domain.Course{
		Name:       strings.TrimSpace(in.Name),
		TeacherID:  in.TeacherID,
		Schedule:   in.Schedule,
		Price:      in.Price,
		CenterName: actor.CenterName,
		Lessons:    []domain.Lesson{},
	}
	created, err := s.courses.Create(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.log.Info().Str("course_id", created.ID).Str("center", created.CenterName).Msg("course created")
	return created, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, actor domain.Actor, id string, in ports.UpdateCourseInput) (*domain.Course, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	course, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if domain.Blank(*in.Name) {
			return nil, domain.Invalid("name must not be empty")
		}
		course.Name = strings.TrimSpace(*in.Name)
	}
	if in.TeacherID != nil {
		if err := s.checkTeacher(ctx, actor, *in.TeacherID); err != nil {
			return nil, err
		}
		course.TeacherID = *in.TeacherID
	}
	if in.Schedule != nil {
		course.Schedule = *in.Schedule
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, domain.Invalid("price must not be negative")
		}
		course.Price = *in.Price
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	course, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, course.ID); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	s.log.Info().Str("course_id", course.ID).Str("by", actor.UserID).Msg("course deleted")
	return nil
}

// AddLesson appends a dated lesson. Lessons are never edited afterwards; the
// server stamps CreatedAt, which clients use to lock attendance edits.
func (s *CourseService) AddLesson(ctx context.Context, actor domain.Actor, courseID string, in ports.LessonInput) (*domain.Course, error) {
	course, err := s.load(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && course.TeacherID != actor.UserID {
		return nil, domain.ErrForbidden
	}

	date := strings.TrimSpace(in.Date)
	if err := domain.ValidateLessonDate(date); err != nil {
		return nil, err
	}
	if domain.Blank(in.Topic) {
		return nil, domain.Invalid("topic is required")
	}
	for _, l := range course.Lessons {
		if l.Date == date {
			return nil, domain.Invalid(fmt.Sprintf("a lesson on %s already exists", date))
		}
	}

	lesson := domain.Lesson{
		Date:      date,
		Topic:     strings.TrimSpace(in.Topic),
		CreatedAt: s.now().UTC(),
	}
	updated, err := s.courses.AppendLesson(ctx, course.ID, lesson)
	if err != nil {
		return nil, fmt.Errorf("add lesson: %w", err)
	}
	s.log.Info().Str("course_id", course.ID).Str("date", date).Str("by", actor.UserID).Msg("lesson added")
	return updated, nil
}

func (s *CourseService) load(ctx context.Context, actor domain.Actor, id string) (*domain.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Owns(actor, course.CenterName) {
		return nil, domain.ErrForbidden
	}
	return course, nil
}

// checkTeacher accepts an empty id (unassigned course) or the id of a teacher
// in the actor's center.
func (s *CourseService) checkTeacher(ctx context.Context, actor domain.Actor, teacherID string) error {
	if teacherID == "" {
		return nil
	}
	teacher, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return domain.Invalid("teacherId does not name a teacher of this center")
		}
		return fmt.Errorf("check teacher: %w", err)
	}
	if teacher.Role != domain.RoleTeacher || !s.policy.Owns(actor, teacher.CenterName) {
		return domain.Invalid("teacherId does not name a teacher of this center")
	}
	return nil
}
