package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

// In-memory repositories shared by the service tests. IDs starting with "!"
// are treated as malformed, like a non-hex ObjectID.

func malformed(id string) bool {
	return len(id) > 0 && id[0] == '!'
}

func inScope(scope ports.TenantScope, center string) bool {
	if center == "" {
		return scope.IncludeUntagged
	}
	return center == scope.CenterName
}

type stubUserRepo struct {
	mu     sync.Mutex
	seq    int
	users  map[string]*domain.User
	failOn string // username whose UsernameExists call fails
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Devices = append([]domain.Device(nil), u.Devices...)
	return &clone
}

// seed stores u as-is and returns its id.
func (r *stubUserRepo) seed(u *domain.User) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.users[u.ID] = cloneUser(u)
	return u.ID
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.seq++
	stored := cloneUser(u)
	stored.ID = fmt.Sprintf("u%d", r.seq)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if malformed(id) {
		return nil, domain.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	if r.failOn != "" && username == r.failOn {
		return false, fmt.Errorf("connection reset")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) List(_ context.Context, scope ports.TenantScope) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if inScope(scope, u.CenterName) {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.users {
		if id != u.ID && other.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	devices := stored.Devices
	next := cloneUser(u)
	next.Devices = devices
	r.users[u.ID] = next
	return nil
}

func (r *stubUserRepo) AddCurrentDevice(_ context.Context, id string, d domain.Device) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.AddCurrentDevice(d)
	return cloneUser(u), nil
}

func (r *stubUserRepo) RemoveDevice(_ context.Context, id, deviceID string) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, false, domain.ErrUserNotFound
	}
	removed := u.RemoveDevice(deviceID)
	return cloneUser(u), removed, nil
}

// setDevices replaces a user's devices directly, for test setup.
func (r *stubUserRepo) setDevices(id string, devices []domain.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].Devices = append([]domain.Device(nil), devices...)
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *stubUserRepo) CenterExists(_ context.Context, centerName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.CenterName == centerName {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) RenameCenter(_ context.Context, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.CenterName == from {
			u.CenterName = to
			n++
		}
	}
	return n, nil
}

type stubCourseRepo struct {
	mu      sync.Mutex
	seq     int
	courses map[string]*domain.Course
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{courses: make(map[string]*domain.Course)}
}

func cloneCourse(c *domain.Course) *domain.Course {
	clone := *c
	clone.Lessons = append([]domain.Lesson{}, c.Lessons...)
	return &clone
}

func (r *stubCourseRepo) Create(_ context.Context, c *domain.Course) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := cloneCourse(c)
	stored.ID = fmt.Sprintf("c%d", r.seq)
	r.courses[stored.ID] = stored
	return cloneCourse(stored), nil
}

func (r *stubCourseRepo) FindByID(_ context.Context, id string) (*domain.Course, error) {
	if malformed(id) {
		return nil, domain.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (r *stubCourseRepo) List(_ context.Context, scope ports.TenantScope) ([]*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Course
	for _, c := range r.courses {
		if inScope(scope, c.CenterName) {
			out = append(out, cloneCourse(c))
		}
	}
	return out, nil
}

func (r *stubCourseRepo) Update(_ context.Context, c *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.courses[c.ID]
	if !ok {
		return domain.ErrCourseNotFound
	}
	next := cloneCourse(c)
	next.Lessons = stored.Lessons
	r.courses[c.ID] = next
	return nil
}

func (r *stubCourseRepo) AppendLesson(_ context.Context, id string, lesson domain.Lesson) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	c.Lessons = append(c.Lessons, lesson)
	return cloneCourse(c), nil
}

func (r *stubCourseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *stubCourseRepo) RenameCenter(_ context.Context, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.courses {
		if c.CenterName == from {
			c.CenterName = to
			n++
		}
	}
	return n, nil
}

type stubStudentRepo struct {
	mu        sync.Mutex
	seq       int
	students  map[string]*domain.Student
	failMerge string // student id whose MergeAttendance fails
}

func newStubStudentRepo() *stubStudentRepo {
	return &stubStudentRepo{students: make(map[string]*domain.Student)}
}

func cloneStudent(s *domain.Student) *domain.Student {
	clone := *s
	clone.Attendance = domain.Attendance{}
	clone.Attendance.Merge(s.Attendance)
	return &clone
}

func (r *stubStudentRepo) Create(_ context.Context, s *domain.Student) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := cloneStudent(s)
	stored.ID = fmt.Sprintf("s%d", r.seq)
	r.students[stored.ID] = stored
	return cloneStudent(stored), nil
}

func (r *stubStudentRepo) FindByID(_ context.Context, id string) (*domain.Student, error) {
	if malformed(id) {
		return nil, domain.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	return cloneStudent(s), nil
}

func (r *stubStudentRepo) List(_ context.Context, scope ports.TenantScope) ([]*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Student
	for _, s := range r.students {
		if !inScope(scope, s.CenterName) {
			continue
		}
		if scope.TeacherID != "" && s.TeacherID != scope.TeacherID {
			continue
		}
		out = append(out, cloneStudent(s))
	}
	return out, nil
}

func (r *stubStudentRepo) Update(_ context.Context, s *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; !ok {
		return domain.ErrStudentNotFound
	}
	r.students[s.ID] = cloneStudent(s)
	return nil
}

func (r *stubStudentRepo) MergeAttendance(_ context.Context, id string, partial domain.Attendance) (*domain.Student, error) {
	if id == r.failMerge {
		return nil, fmt.Errorf("write conflict")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	if s.Attendance == nil {
		s.Attendance = domain.Attendance{}
	}
	s.Attendance.Merge(partial)
	return cloneStudent(s), nil
}

func (r *stubStudentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return domain.ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}

func (r *stubStudentRepo) RenameCenter(_ context.Context, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.students {
		if s.CenterName == from {
			s.CenterName = to
			n++
		}
	}
	return n, nil
}

type stubThrottle struct {
	max      int
	failures map[string]int
	err      error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{max: max, failures: make(map[string]int)}
}

func (t *stubThrottle) Allow(_ context.Context, key string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	return t.failures[key] < t.max, nil
}

func (t *stubThrottle) Fail(_ context.Context, key string) error {
	t.failures[key]++
	return t.err
}

func (t *stubThrottle) Reset(_ context.Context, key string) error {
	delete(t.failures, key)
	return t.err
}
