package ports

import (
	"context"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
)

// TenantScope restricts a listing to one education center.
// The service layer always fills CenterName from the authenticated caller.
type TenantScope struct {
	CenterName      string
	IncludeUntagged bool   // also match records without a center tag (legacy data)
	TeacherID       string // optional: only records assigned to this teacher
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, scope TenantScope) ([]*domain.User, error)
	// Update overwrites every mutable field except the device list.
	Update(ctx context.Context, u *domain.User) error
	// AddCurrentDevice clears the current flag on every stored device and
	// appends d as the only current one in a single write.
	AddCurrentDevice(ctx context.Context, id string, d domain.Device) (*domain.User, error)
	// RemoveDevice pulls one device in a single write and reports whether it
	// was registered.
	RemoveDevice(ctx context.Context, id, deviceID string) (*domain.User, bool, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CenterExists(ctx context.Context, centerName string) (bool, error)
	RenameCenter(ctx context.Context, from, to string) (int64, error)
}

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) (*domain.Course, error)
	FindByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, scope TenantScope) ([]*domain.Course, error)
	// Update overwrites every mutable field except the lesson list.
	Update(ctx context.Context, c *domain.Course) error
	AppendLesson(ctx context.Context, id string, lesson domain.Lesson) (*domain.Course, error)
	Delete(ctx context.Context, id string) error
	RenameCenter(ctx context.Context, from, to string) (int64, error)
}

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	Create(ctx context.Context, s *domain.Student) (*domain.Student, error)
	FindByID(ctx context.Context, id string) (*domain.Student, error)
	List(ctx context.Context, scope TenantScope) ([]*domain.Student, error)
	Update(ctx context.Context, s *domain.Student) error
	// MergeAttendance sets each given date on the stored attendance map in a
	// single document update and returns the resulting student.
	MergeAttendance(ctx context.Context, id string, partial domain.Attendance) (*domain.Student, error)
	Delete(ctx context.Context, id string) error
	RenameCenter(ctx context.Context, from, to string) (int64, error)
}

// LoginThrottle counts failed logins per key inside a sliding window.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
