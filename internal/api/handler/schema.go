package handler

import "time"

// messageResponse is returned by endpoints that have nothing else to say.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token           string       `json:"token"`
	User            userResponse `json:"user"`
	CurrentDeviceID string       `json:"currentDeviceId"`
}

type setupResponse struct {
	NeedsSetup bool `json:"needsSetup"`
}

// --- Users ---

type deviceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastLogin time.Time `json:"lastLogin"`
	IP        string    `json:"ip"`
	IsCurrent bool      `json:"isCurrent"`
}

type userResponse struct {
	ID            string           `json:"id"`
	Role          string           `json:"role"`
	Name          string           `json:"name"`
	Username      string           `json:"username"`
	CenterName    string           `json:"centerName"`
	CourseName    string           `json:"courseName,omitempty"`
	CoursePrice   float64          `json:"coursePrice,omitempty"`
	MonthlySalary float64          `json:"monthlySalary,omitempty"`
	SalaryPaid    bool             `json:"salaryPaid"`
	JoinDate      string           `json:"joinDate,omitempty"`
	IsLeft        bool             `json:"isLeft"`
	Devices       []deviceResponse `json:"devices"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type createUserRequest struct {
	Role          string  `json:"role"          validate:"omitempty,oneof=SUPER_ADMIN TEACHER"`
	Name          string  `json:"name"          validate:"required"`
	Username      string  `json:"username"      validate:"required"`
	Password      string  `json:"password"      validate:"required"`
	CenterName    string  `json:"centerName"`
	CourseName    string  `json:"courseName"`
	CoursePrice   float64 `json:"coursePrice"   validate:"gte=0"`
	MonthlySalary float64 `json:"monthlySalary" validate:"gte=0"`
	SalaryPaid    bool    `json:"salaryPaid"`
	JoinDate      string  `json:"joinDate"      validate:"omitempty,datetime=2006-01-02"`
	IsLeft        bool    `json:"isLeft"`
}

type updateUserRequest struct {
	Role          *string  `json:"role"          validate:"omitempty,oneof=SUPER_ADMIN TEACHER"`
	Name          *string  `json:"name"`
	Username      *string  `json:"username"`
	Password      *string  `json:"password"`
	CenterName    *string  `json:"centerName"`
	CourseName    *string  `json:"courseName"`
	CoursePrice   *float64 `json:"coursePrice"   validate:"omitempty,gte=0"`
	MonthlySalary *float64 `json:"monthlySalary" validate:"omitempty,gte=0"`
	SalaryPaid    *bool    `json:"salaryPaid"`
	JoinDate      *string  `json:"joinDate"`
	IsLeft        *bool    `json:"isLeft"`
}

// --- Courses ---

type lessonResponse struct {
	Date      string    `json:"date"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

type courseResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	TeacherID  string           `json:"teacherId,omitempty"`
	Schedule   string           `json:"schedule"`
	Price      float64          `json:"price"`
	CenterName string           `json:"centerName"`
	Lessons    []lessonResponse `json:"lessons"`
}

type createCourseRequest struct {
	Name      string  `json:"name"      validate:"required"`
	TeacherID string  `json:"teacherId"`
	Schedule  string  `json:"schedule"`
	Price     float64 `json:"price"     validate:"gte=0"`
}

type updateCourseRequest struct {
	Name      *string  `json:"name"`
	TeacherID *string  `json:"teacherId"`
	Schedule  *string  `json:"schedule"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
}

type lessonRequest struct {
	Date  string `json:"date"  validate:"required"`
	Topic string `json:"topic" validate:"required"`
}

// --- Students ---

type attendanceRecord struct {
	Status string `json:"status"           validate:"oneof=B Y"`
	Reason string `json:"reason,omitempty"`
}

type studentResponse struct {
	ID         string                      `json:"id"`
	Name       string                      `json:"name"`
	TeacherID  string                      `json:"teacherId"`
	CourseName string                      `json:"courseName"`
	Paid       bool                        `json:"paid"`
	CenterName string                      `json:"centerName"`
	Attendance map[string]attendanceRecord `json:"attendance"`
}

type createStudentRequest struct {
	Name       string                      `json:"name"       validate:"required"`
	TeacherID  string                      `json:"teacherId"`
	CourseName string                      `json:"courseName"`
	Paid       bool                        `json:"paid"`
	Attendance map[string]attendanceRecord `json:"attendance" validate:"omitempty,dive"`
}

type updateStudentRequest struct {
	Name       *string                     `json:"name"`
	TeacherID  *string                     `json:"teacherId"`
	CourseName *string                     `json:"courseName"`
	Paid       *bool                       `json:"paid"`
	Attendance map[string]attendanceRecord `json:"attendance" validate:"omitempty,dive"`
}

// attendanceUpdateRequest items are checked one by one by the service so a
// bad item is skipped instead of failing the whole batch.
type attendanceUpdateRequest struct {
	ID         string                      `json:"id"`
	Attendance map[string]attendanceRecord `json:"attendance"`
}

type bulkAttendanceRequest struct {
	Updates []attendanceUpdateRequest `json:"updates" validate:"required"`
}

type attendanceResultResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type bulkAttendanceResponse struct {
	Students []studentResponse          `json:"students"`
	Results  []attendanceResultResponse `json:"results"`
}
