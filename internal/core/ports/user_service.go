package ports

import (
	"context"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
)

// CreateUserInput carries the fields accepted on registration or when an
// admin adds a teacher.
type CreateUserInput struct {
	Role          domain.Role
	Name          string
	Username      string
	Password      string
	CenterName    string
	CourseName    string
	CoursePrice   float64
	MonthlySalary float64
	SalaryPaid    bool
	JoinDate      string
	IsLeft        bool
}

// UpdateUserInput is a partial update: nil fields are left untouched.
type UpdateUserInput struct {
	Role          *domain.Role
	Name          *string
	Username      *string
	Password      *string
	CenterName    *string
	CourseName    *string
	CoursePrice   *float64
	MonthlySalary *float64
	SalaryPaid    *bool
	JoinDate      *string
	IsLeft        *bool
}

// AdminOnly reports whether the update touches fields only an admin may set.
func (in UpdateUserInput) AdminOnly() bool {
	return in.Role != nil || in.CenterName != nil || in.CourseName != nil ||
		in.CoursePrice != nil || in.MonthlySalary != nil || in.SalaryPaid != nil ||
		in.JoinDate != nil || in.IsLeft != nil
}

// UserService defines use-case operations for users and their devices.
type UserService interface {
	// NeedsSetup reports whether no user exists yet.
	NeedsSetup(ctx context.Context) (bool, error)
	// CreateUser registers a new center when actor is nil, otherwise adds a
	// user to the actor's center.
	CreateUser(ctx context.Context, actor *domain.Actor, in CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Actor, id string, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, id string) error
	RemoveDevice(ctx context.Context, actor domain.Actor, userID, deviceID string) (*domain.User, error)
	// ResetPassword sets a new password without an actor; used by the admin CLI.
	ResetPassword(ctx context.Context, username, password string) error
}
