package ports

import (
	"context"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
)

type CreateCourseInput struct {
	Name      string
	TeacherID string
	Schedule  string
	Price     float64
}

// UpdateCourseInput is a partial update: nil fields are left untouched.
type UpdateCourseInput struct {
	Name      *string
	TeacherID *string
	Schedule  *string
	Price     *float64
}

type LessonInput struct {
	Date  string
	Topic string
}

// CourseService defines use-case operations for courses and their lessons.
type CourseService interface {
	ListCourses(ctx context.Context, actor domain.Actor) ([]*domain.Course, error)
	CreateCourse(ctx context.Context, actor domain.Actor, in CreateCourseInput) (*domain.Course, error)
	UpdateCourse(ctx context.Context, actor domain.Actor, id string, in UpdateCourseInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, actor domain.Actor, id string) error
	AddLesson(ctx context.Context, actor domain.Actor, courseID string, in LessonInput) (*domain.Course, error)
}
