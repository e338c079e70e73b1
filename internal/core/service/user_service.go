package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/metrics"
)

const (
	suggestionCount = 3
	maxRandomTries  = 50
)

// UserService implements registration, user management and device revocation.
type UserService struct {
	users    ports.UserRepository
	courses  ports.CourseRepository
	students ports.StudentRepository
	policy   TenantPolicy
	log      zerolog.Logger
	now      func() time.Time
	randIntN func(n int) int
}

func NewUserService(
	users ports.UserRepository,
	courses ports.CourseRepository,
	students ports.StudentRepository,
	policy TenantPolicy,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		courses:  courses,
		students: students,
		policy:   policy,
		log:      log,
		now:      time.Now,
		randIntN: rand.IntN,
	}
}

func (s *UserService) NeedsSetup(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n == 0, nil
}

// CreateUser registers a new center (actor == nil) or adds a user to the
// admin actor's center. A taken username yields *domain.UsernameTakenError.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.Invalid("username is required")
	}
	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, err
	}

	if domain.Blank(in.Name) {
		return nil, domain.Invalid("name is required")
	}
	password := strings.TrimSpace(in.Password)
	if password == "" {
		return nil, domain.Invalid("password is required")
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	if in.JoinDate != "" {
		if _, err := time.Parse(domain.JoinDateLayout, in.JoinDate); err != nil {
			return nil, domain.Invalid("joinDate must be formatted as YYYY-MM-DD")
		}
	}

	var (
		role   domain.Role
		center string
	)
	if actor == nil {
		center = strings.TrimSpace(in.CenterName)
		if center == "" {
			return nil, domain.Invalid("centerName is required")
		}
		exists, err := s.users.CenterExists(ctx, center)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		if exists {
			return nil, domain.ErrCenterTaken
		}
		role = domain.RoleSuperAdmin
	} else {
		if !actor.IsAdmin() {
			return nil, domain.ErrForbidden
		}
		center = actor.CenterName
		role = in.Role
		if role == "" {
			role = domain.RoleTeacher
		}
		if !role.Valid() {
			return nil, domain.Invalid("role must be SUPER_ADMIN or TEACHER")
		}
	}

	now := s.now().UTC()
	user := &domain.User{
		Role:          role,
		Name:          strings.TrimSpace(in.Name),
		Username:      username,
		CenterName:    center,
		CourseName:    in.CourseName,
		CoursePrice:   in.CoursePrice,
		MonthlySalary: in.MonthlySalary,
		SalaryPaid:    in.SalaryPaid,
		JoinDate:      in.JoinDate,
		IsLeft:        in.IsLeft,
		Devices:       []domain.Device{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, s.collision(ctx, username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(created.Role)).Inc()
	s.log.Info().
		Str("user_id", created.ID).
		Str("role", string(created.Role)).
		Str("center", created.CenterName).
		Msg("user created")
	return created, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	return s.users.List(ctx, s.policy.Scope(actor))
}

// UpdateUser applies a partial update. Teachers may only edit their own name,
// username and password; admins may edit anyone in their center. An admin
// changing their own centerName renames the whole center.
func (s *UserService) UpdateUser(ctx context.Context, actor domain.Actor, id string, in ports.UpdateUserInput) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Owns(actor, target.CenterName) {
		return nil, domain.ErrForbidden
	}
	self := target.ID == actor.UserID
	if !actor.IsAdmin() && (!self || in.AdminOnly()) {
		return nil, domain.ErrForbidden
	}

	if in.Name != nil {
		if domain.Blank(*in.Name) {
			return nil, domain.Invalid("name must not be empty")
		}
		target.Name = strings.TrimSpace(*in.Name)
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, domain.Invalid("username must not be empty")
		}
		if username != target.Username {
			if err := s.ensureUsernameFree(ctx, username); err != nil {
				return nil, err
			}
			target.Username = username
		}
	}
	if in.Password != nil {
		password := strings.TrimSpace(*in.Password)
		if password == "" {
			return nil, domain.Invalid("password must not be empty")
		}
		if err := domain.ValidatePassword(password); err != nil {
			return nil, err
		}
		if err := target.SetPassword(password); err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.Invalid("role must be SUPER_ADMIN or TEACHER")
		}
		if self && *in.Role != target.Role {
			return nil, domain.Invalid("you cannot change your own role")
		}
		target.Role = *in.Role
	}
	if in.CourseName != nil {
		target.CourseName = *in.CourseName
	}
	if in.CoursePrice != nil {
		target.CoursePrice = *in.CoursePrice
	}
	if in.MonthlySalary != nil {
		target.MonthlySalary = *in.MonthlySalary
	}
	if in.SalaryPaid != nil {
		target.SalaryPaid = *in.SalaryPaid
	}
	if in.JoinDate != nil {
		if *in.JoinDate != "" {
			if _, err := time.Parse(domain.JoinDateLayout, *in.JoinDate); err != nil {
				return nil, domain.Invalid("joinDate must be formatted as YYYY-MM-DD")
			}
		}
		target.JoinDate = *in.JoinDate
	}
	if in.IsLeft != nil {
		target.IsLeft = *in.IsLeft
	}

	var renameTo string
	if in.CenterName != nil {
		center := strings.TrimSpace(*in.CenterName)
		if center != target.CenterName {
			if !self {
				return nil, domain.ErrForbidden
			}
			if center == "" {
				return nil, domain.Invalid("centerName must not be empty")
			}
			exists, err := s.users.CenterExists(ctx, center)
			if err != nil {
				return nil, fmt.Errorf("update user: %w", err)
			}
			if exists {
				return nil, domain.ErrCenterTaken
			}
			renameTo = center
		}
	}

	target.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, target); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, s.collision(ctx, target.Username)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if renameTo != "" {
		if err := s.renameCenter(ctx, target.CenterName, renameTo); err != nil {
			return nil, err
		}
		target.CenterName = renameTo
	}
	return target, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.Owns(actor, target.CenterName) {
		return domain.ErrForbidden
	}
	if target.ID == actor.UserID {
		return domain.Invalid("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("user_id", target.ID).Str("by", actor.UserID).Msg("user deleted")
	return nil
}

// RemoveDevice revokes one login device. The owner or an admin of the same
// center may do it; the token bound to that device stops authenticating.
func (s *UserService) RemoveDevice(ctx context.Context, actor domain.Actor, userID, deviceID string) (*domain.User, error) {
	if userID != actor.UserID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.policy.Owns(actor, user.CenterName) {
		return nil, domain.ErrUserNotFound
	}

	updated, removed, err := s.users.RemoveDevice(ctx, user.ID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("remove device: %w", err)
	}
	if !removed {
		return updated, nil
	}
	metrics.DevicesRevokedTotal.Inc()
	s.log.Info().Str("user_id", user.ID).Str("device_id", deviceID).Str("by", actor.UserID).Msg("device revoked")
	return updated, nil
}

func (s *UserService) ResetPassword(ctx context.Context, username, password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return domain.Invalid("password must not be empty")
	}
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	user.UpdatedAt = s.now().UTC()
	return s.users.Update(ctx, user)
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return s.collision(ctx, username)
	}
	return nil
}

// collision builds the error returned for a taken username. Failing to
// compute suggestions still reports the collision, just without alternatives.
func (s *UserService) collision(ctx context.Context, username string) error {
	metrics.UsernameCollisionsTotal.Inc()
	suggestions, err := s.Suggest(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("username suggestions failed")
	}
	return &domain.UsernameTakenError{Username: username, Suggestions: suggestions}
}

// Suggest returns up to three free usernames derived from base. Fixed
// suffixes are tried first, in order: a random number below 1000, the
// current year, "uz", "pro" and a random number below 99. Random 4-digit
// suffixes fill the remaining slots.
func (s *UserService) Suggest(ctx context.Context, base string) ([]string, error) {
	candidates := []string{
		fmt.Sprintf("%s%d", base, s.randIntN(1000)),
		fmt.Sprintf("%s%d", base, s.now().Year()),
		base + "uz",
		base + "pro",
		fmt.Sprintf("%s%d", base, s.randIntN(99)),
	}

	seen := map[string]bool{base: true}
	out := make([]string, 0, suggestionCount)
	try := func(candidate string) error {
		if seen[candidate] {
			return nil
		}
		seen[candidate] = true
		taken, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return err
		}
		if !taken {
			out = append(out, candidate)
		}
		return nil
	}

	for _, c := range candidates {
		if len(out) >= suggestionCount {
			return out, nil
		}
		if err := try(c); err != nil {
			return out, err
		}
	}
	for i := 0; len(out) < suggestionCount && i < maxRandomTries; i++ {
		if err := try(fmt.Sprintf("%s%d", base, 1000+s.randIntN(9000))); err != nil {
			return out, err
		}
	}
	return out, nil
}

// renameCenter retags every record of a center. The collections are updated
// one after another; there is no cross-collection transaction.
func (s *UserService) renameCenter(ctx context.Context, from, to string) error {
	users, err := s.users.RenameCenter(ctx, from, to)
	if err != nil {
		return fmt.Errorf("rename center users: %w", err)
	}
	courses, err := s.courses.RenameCenter(ctx, from, to)
	if err != nil {
		return fmt.Errorf("rename center courses: %w", err)
	}
	students, err := s.students.RenameCenter(ctx, from, to)
	if err != nil {
		return fmt.Errorf("rename center students: %w", err)
	}
	s.log.Info().
		Str("from", from).
		Str("to", to).
		Int64("users", users).
		Int64("courses", courses).
		Int64("students", students).
		Msg("center renamed")
	return nil
}
