package handler

import (
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

// --- Request → Service input ---

func toCreateUserInput(req createUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Role:          domain.Role(req.Role),
		Name:          req.Name,
		Username:      req.Username,
		Password:      req.Password,
		CenterName:    req.CenterName,
		CourseName:    req.CourseName,
		CoursePrice:   req.CoursePrice,
		MonthlySalary: req.MonthlySalary,
		SalaryPaid:    req.SalaryPaid,
		JoinDate:      req.JoinDate,
		IsLeft:        req.IsLeft,
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		Name:          req.Name,
		Username:      req.Username,
		Password:      req.Password,
		CenterName:    req.CenterName,
		CourseName:    req.CourseName,
		CoursePrice:   req.CoursePrice,
		MonthlySalary: req.MonthlySalary,
		SalaryPaid:    req.SalaryPaid,
		JoinDate:      req.JoinDate,
		IsLeft:        req.IsLeft,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	return in
}

func toAttendance(m map[string]attendanceRecord) domain.Attendance {
	if m == nil {
		return nil
	}
	out := make(domain.Attendance, len(m))
	for date, rec := range m {
		out[date] = domain.AttendanceRecord{Status: domain.AttendanceStatus(rec.Status), Reason: rec.Reason}
	}
	return out
}

func toAttendanceUpdates(req bulkAttendanceRequest) []ports.AttendanceUpdate {
	out := make([]ports.AttendanceUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		out = append(out, ports.AttendanceUpdate{StudentID: u.ID, Attendance: toAttendance(u.Attendance)})
	}
	return out
}

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	devices := make([]deviceResponse, 0, len(u.Devices))
	for _, d := range u.Devices {
		devices = append(devices, deviceResponse{
			ID:        d.ID,
			Name:      d.Name,
			LastLogin: d.LastLogin.UTC(),
			IP:        d.IP,
			IsCurrent: d.IsCurrent,
		})
	}
	return userResponse{
		ID:            u.ID,
		Role:          string(u.Role),
		Name:          u.Name,
		Username:      u.Username,
		CenterName:    u.CenterName,
		CourseName:    u.CourseName,
		CoursePrice:   u.CoursePrice,
		MonthlySalary: u.MonthlySalary,
		SalaryPaid:    u.SalaryPaid,
		JoinDate:      u.JoinDate,
		IsLeft:        u.IsLeft,
		Devices:       devices,
		CreatedAt:     u.CreatedAt.UTC(),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toCourseResponse(c *domain.Course) courseResponse {
	lessons := make([]lessonResponse, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		lessons = append(lessons, lessonResponse{Date: l.Date, Topic: l.Topic, CreatedAt: l.CreatedAt.UTC()})
	}
	return courseResponse{
		ID:         c.ID,
		Name:       c.Name,
		TeacherID:  c.TeacherID,
		Schedule:   c.Schedule,
		Price:      c.Price,
		CenterName: c.CenterName,
		Lessons:    lessons,
	}
}

func toCourseResponses(courses []*domain.Course) []courseResponse {
	out := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseResponse(c))
	}
	return out
}

func toStudentResponse(s *domain.Student) studentResponse {
	att := make(map[string]attendanceRecord, len(s.Attendance))
	for date, rec := range s.Attendance {
		att[date] = attendanceRecord{Status: string(rec.Status), Reason: rec.Reason}
	}
	return studentResponse{
		ID:         s.ID,
		Name:       s.Name,
		TeacherID:  s.TeacherID,
		CourseName: s.CourseName,
		Paid:       s.Paid,
		CenterName: s.CenterName,
		Attendance: att,
	}
}

func toStudentResponses(students []*domain.Student) []studentResponse {
	out := make([]studentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentResponse(s))
	}
	return out
}

func toBulkAttendanceResponse(r *ports.BulkAttendanceResult) bulkAttendanceResponse {
	results := make([]attendanceResultResponse, 0, len(r.Results))
	for _, res := range r.Results {
		results = append(results, attendanceResultResponse{ID: res.StudentID, Status: res.Status, Reason: res.Reason})
	}
	return bulkAttendanceResponse{
		Students: toStudentResponses(r.Students),
		Results:  results,
	}
}
