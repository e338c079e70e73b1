package domain

import (
	"fmt"
	"strings"
)

// AttendanceStatus marks a student present ("B") or absent ("Y") for a lesson.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "B"
	AttendanceAbsent  AttendanceStatus = "Y"
)

// AttendanceRecord is the state of one student for one lesson date.
type AttendanceRecord struct {
	Status AttendanceStatus
	Reason string
}

// Attendance maps a lesson date string to its record.
type Attendance map[string]AttendanceRecord

// Merge copies every entry of partial into a, overwriting existing dates.
func (a Attendance) Merge(partial Attendance) {
	for date, rec := range partial {
		a[date] = rec
	}
}

// Validate checks that every key can be stored as a document field name and
// every status is known.
func (a Attendance) Validate() error {
	for date, rec := range a {
		if err := ValidateLessonDate(date); err != nil {
			return err
		}
		if rec.Status != AttendancePresent && rec.Status != AttendanceAbsent {
			return Invalid(fmt.Sprintf("attendance status for %s must be B or Y", date))
		}
	}
	return nil
}

// ValidateLessonDate checks that date can key an attendance map. Dates are
// stored as document field names, so dots and dollar signs are rejected.
func ValidateLessonDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return Invalid("lesson date is required")
	}
	if strings.ContainsAny(date, ".$") {
		return Invalid(fmt.Sprintf("lesson date %q contains forbidden characters", date))
	}
	return nil
}

// Student is enrolled with exactly one teacher.
type Student struct {
	ID         string
	Name       string
	TeacherID  string
	CourseName string
	Paid       bool
	CenterName string
	Attendance Attendance
}
