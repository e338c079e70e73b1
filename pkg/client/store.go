package client

import (
	"context"
	"fmt"
	"sync"
)

// Store mirrors the server's lists for the signed-in user. Reads are served
// from memory; every mutation goes to the server and then re-fetches the
// lists it invalidates. A Store may be shared across goroutines.
type Store struct {
	api *Client

	mu       sync.RWMutex
	me       *User
	users    []User
	courses  []Course
	students []Student
}

func NewStore(api *Client) *Store {
	return &Store{api: api}
}

// Client returns the underlying API client.
func (s *Store) Client() *Client { return s.api }

// Login signs in and loads every list.
func (s *Store) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	me := res.User
	s.me = &me
	s.mu.Unlock()
	return res, s.Refresh(ctx)
}

// Restore resolves a stored token to its user and loads every list.
func (s *Store) Restore(ctx context.Context) (*User, error) {
	me, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.me = me
	s.mu.Unlock()
	return me, s.Refresh(ctx)
}

// Me returns the signed-in user, or nil before Login/Restore.
func (s *Store) Me() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.me == nil {
		return nil
	}
	me := *s.me
	return &me
}

// Refresh re-fetches users, courses and students.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.RefreshUsers(ctx); err != nil {
		return err
	}
	if err := s.RefreshCourses(ctx); err != nil {
		return err
	}
	return s.RefreshStudents(ctx)
}

func (s *Store) RefreshUsers(ctx context.Context) error {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("refresh users: %w", err)
	}
	s.mu.Lock()
	s.users = users
	if s.me != nil {
		for _, u := range users {
			if u.ID == s.me.ID {
				me := u
				s.me = &me
				break
			}
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) RefreshCourses(ctx context.Context) error {
	courses, err := s.api.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("refresh courses: %w", err)
	}
	s.mu.Lock()
	s.courses = courses
	s.mu.Unlock()
	return nil
}

func (s *Store) RefreshStudents(ctx context.Context) error {
	students, err := s.api.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("refresh students: %w", err)
	}
	s.mu.Lock()
	s.students = students
	s.mu.Unlock()
	return nil
}

// Users returns a copy of the cached user list.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]User(nil), s.users...)
}

// Teachers returns the cached users with the TEACHER role.
func (s *Store) Teachers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []User
	for _, u := range s.users {
		if u.Role == RoleTeacher {
			out = append(out, u)
		}
	}
	return out
}

func (s *Store) Courses() []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Course(nil), s.courses...)
}

func (s *Store) Students() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Student(nil), s.students...)
}

// Student returns the cached student with the given id.
func (s *Store) Student(id string) (Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// CourseNamed returns the cached course with the given name.
func (s *Store) CourseNamed(name string) (Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.courses {
		if c.Name == name {
			return c, true
		}
	}
	return Course{}, false
}

// --- Mutations ---

// CreateUser invalidates users.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	u, err := s.api.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return u, s.RefreshUsers(ctx)
}

// UpdateUser invalidates users. A center rename re-tags courses and students
// too, so it invalidates every list.
func (s *Store) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	u, err := s.api.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if patch.CenterName != nil {
		return u, s.Refresh(ctx)
	}
	return u, s.RefreshUsers(ctx)
}

// DeleteUser invalidates users.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	return s.RefreshUsers(ctx)
}

// RemoveDevice invalidates users.
func (s *Store) RemoveDevice(ctx context.Context, userID, deviceID string) error {
	if _, err := s.api.RemoveDevice(ctx, userID, deviceID); err != nil {
		return err
	}
	return s.RefreshUsers(ctx)
}

// CreateCourse invalidates courses.
func (s *Store) CreateCourse(ctx context.Context, in NewCourse) (*Course, error) {
	c, err := s.api.CreateCourse(ctx, in)
	if err != nil {
		return nil, err
	}
	return c, s.RefreshCourses(ctx)
}

// UpdateCourse invalidates courses.
func (s *Store) UpdateCourse(ctx context.Context, id string, patch CoursePatch) (*Course, error) {
	c, err := s.api.UpdateCourse(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return c, s.RefreshCourses(ctx)
}

// DeleteCourse invalidates courses.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	if err := s.api.DeleteCourse(ctx, id); err != nil {
		return err
	}
	return s.RefreshCourses(ctx)
}

// AddLesson invalidates courses.
func (s *Store) AddLesson(ctx context.Context, courseID, date, topic string) (*Course, error) {
	c, err := s.api.AddLesson(ctx, courseID, date, topic)
	if err != nil {
		return nil, err
	}
	return c, s.RefreshCourses(ctx)
}

// CreateStudent invalidates students.
func (s *Store) CreateStudent(ctx context.Context, in NewStudent) (*Student, error) {
	st, err := s.api.CreateStudent(ctx, in)
	if err != nil {
		return nil, err
	}
	return st, s.RefreshStudents(ctx)
}

// UpdateStudent invalidates students.
func (s *Store) UpdateStudent(ctx context.Context, id string, patch StudentPatch) (*Student, error) {
	st, err := s.api.UpdateStudent(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return st, s.RefreshStudents(ctx)
}

// DeleteStudent invalidates students.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	if err := s.api.DeleteStudent(ctx, id); err != nil {
		return err
	}
	return s.RefreshStudents(ctx)
}

// SaveAttendance sends a bulk attendance batch and invalidates students.
func (s *Store) SaveAttendance(ctx context.Context, updates []AttendanceUpdate) (*BulkResult, error) {
	res, err := s.api.BulkAttendance(ctx, updates)
	if err != nil {
		return nil, err
	}
	return res, s.RefreshStudents(ctx)
}

// ToggleStudentPaid flips the paid flag in the cache first and then on the
// server. The cached value is restored when the server rejects the change.
// Nothing is re-fetched.
func (s *Store) ToggleStudentPaid(ctx context.Context, id string) error {
	paid, ok := s.setPaid(id, nil)
	if !ok {
		return fmt.Errorf("student %s is not loaded", id)
	}
	if _, err := s.api.UpdateStudent(ctx, id, StudentPatch{Paid: &paid}); err != nil {
		prev := !paid
		s.setPaid(id, &prev)
		return err
	}
	return nil
}

// setPaid sets the cached paid flag to *to, or flips it when to is nil, and
// returns the new value.
func (s *Store) setPaid(id string, to *bool) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID != id {
			continue
		}
		if to != nil {
			s.students[i].Paid = *to
		} else {
			s.students[i].Paid = !s.students[i].Paid
		}
		return s.students[i].Paid, true
	}
	return false, false
}
