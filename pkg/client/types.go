package client

import (
	"fmt"
	"time"
)

// Role values returned by the API.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleTeacher    = "TEACHER"
)

// Attendance statuses: B is present, Y is absent.
const (
	StatusPresent = "B"
	StatusAbsent  = "Y"
)

type Device struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastLogin time.Time `json:"lastLogin"`
	IP        string    `json:"ip"`
	IsCurrent bool      `json:"isCurrent"`
}

type User struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	CenterName    string    `json:"centerName"`
	CourseName    string    `json:"courseName,omitempty"`
	CoursePrice   float64   `json:"coursePrice,omitempty"`
	MonthlySalary float64   `json:"monthlySalary,omitempty"`
	SalaryPaid    bool      `json:"salaryPaid"`
	JoinDate      string    `json:"joinDate,omitempty"`
	IsLeft        bool      `json:"isLeft"`
	Devices       []Device  `json:"devices"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleSuperAdmin }

type Lesson struct {
	Date      string    `json:"date"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

type Course struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	TeacherID  string   `json:"teacherId,omitempty"`
	Schedule   string   `json:"schedule"`
	Price      float64  `json:"price"`
	CenterName string   `json:"centerName"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson returns the lesson held on date, if any.
func (c Course) Lesson(date string) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Date == date {
			return l, true
		}
	}
	return Lesson{}, false
}

type AttendanceRecord struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Attendance maps a lesson date to the student's record for it.
type Attendance map[string]AttendanceRecord

type Student struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	TeacherID  string     `json:"teacherId"`
	CourseName string     `json:"courseName"`
	Paid       bool       `json:"paid"`
	CenterName string     `json:"centerName"`
	Attendance Attendance `json:"attendance"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token           string `json:"token"`
	User            User   `json:"user"`
	CurrentDeviceID string `json:"currentDeviceId"`
}

// NewUser is the registration / add-teacher payload.
type NewUser struct {
	Role          string  `json:"role,omitempty"`
	Name          string  `json:"name"`
	Username      string  `json:"username"`
	Password      string  `json:"password"`
	CenterName    string  `json:"centerName,omitempty"`
	CourseName    string  `json:"courseName,omitempty"`
	CoursePrice   float64 `json:"coursePrice,omitempty"`
	MonthlySalary float64 `json:"monthlySalary,omitempty"`
	SalaryPaid    bool    `json:"salaryPaid,omitempty"`
	JoinDate      string  `json:"joinDate,omitempty"`
}

// UserPatch only sends the fields that are set.
type UserPatch struct {
	Role          *string  `json:"role,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Username      *string  `json:"username,omitempty"`
	Password      *string  `json:"password,omitempty"`
	CenterName    *string  `json:"centerName,omitempty"`
	CourseName    *string  `json:"courseName,omitempty"`
	CoursePrice   *float64 `json:"coursePrice,omitempty"`
	MonthlySalary *float64 `json:"monthlySalary,omitempty"`
	SalaryPaid    *bool    `json:"salaryPaid,omitempty"`
	JoinDate      *string  `json:"joinDate,omitempty"`
	IsLeft        *bool    `json:"isLeft,omitempty"`
}

type NewCourse struct {
	Name      string  `json:"name"`
	TeacherID string  `json:"teacherId,omitempty"`
	Schedule  string  `json:"schedule,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

type CoursePatch struct {
	Name      *string  `json:"name,omitempty"`
	TeacherID *string  `json:"teacherId,omitempty"`
	Schedule  *string  `json:"schedule,omitempty"`
	Price     *float64 `json:"price,omitempty"`
}

type NewStudent struct {
	Name       string     `json:"name"`
	TeacherID  string     `json:"teacherId,omitempty"`
	CourseName string     `json:"courseName,omitempty"`
	Paid       bool       `json:"paid,omitempty"`
	Attendance Attendance `json:"attendance,omitempty"`
}

// StudentPatch only sends the fields that are set. A non-nil Attendance
// replaces the stored map; use BulkAttendance to merge.
type StudentPatch struct {
	Name       *string    `json:"name,omitempty"`
	TeacherID  *string    `json:"teacherId,omitempty"`
	CourseName *string    `json:"courseName,omitempty"`
	Paid       *bool      `json:"paid,omitempty"`
	Attendance Attendance `json:"attendance,omitempty"`
}

// AttendanceUpdate is one item of a bulk attendance request.
type AttendanceUpdate struct {
	ID         string     `json:"id"`
	Attendance Attendance `json:"attendance"`
}

type AttendanceResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// BulkResult lists the written students and one result per requested item.
type BulkResult struct {
	Students []Student          `json:"students"`
	Results  []AttendanceResult `json:"results"`
}

// Skipped returns the items the server did not apply.
func (r BulkResult) Skipped() []AttendanceResult {
	var out []AttendanceResult
	for _, res := range r.Results {
		if res.Status != "updated" {
			out = append(out, res)
		}
	}
	return out
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode  int      `json:"-"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lcstudio: %d %s", e.StatusCode, e.Message)
}
