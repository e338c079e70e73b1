package domain

import "time"

// Lesson is a single dated class session of a course.
type Lesson struct {
	Date      string
	Topic     string
	CreatedAt time.Time
}

// Course groups lessons taught by at most one teacher.
type Course struct {
	ID         string
	Name       string
	TeacherID  string
	Schedule   string
	Price      float64
	CenterName string
	Lessons    []Lesson
}
