package client

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// LessonEditWindow is how long after a lesson is created its attendance may
// still be changed.
const LessonEditWindow = time.Hour

var (
	ErrLessonLocked   = errors.New("attendance for this lesson can no longer be edited")
	ErrUnknownStudent = errors.New("student is not loaded")
	ErrNothingToSave  = errors.New("no staged attendance changes")
)

// AttendanceDraft stages attendance marks locally until Save sends them in
// one bulk request. The lesson lock is checked here only; the server accepts
// late edits.
type AttendanceDraft struct {
	store *Store
	now   func() time.Time

	mu      sync.Mutex
	pending map[string]Attendance
}

func NewAttendanceDraft(store *Store) *AttendanceDraft {
	return &AttendanceDraft{
		store:   store,
		now:     time.Now,
		pending: make(map[string]Attendance),
	}
}

// MarkPresent stages a present mark.
func (d *AttendanceDraft) MarkPresent(studentID, date string) error {
	return d.stage(studentID, date, AttendanceRecord{Status: StatusPresent})
}

// MarkAbsent stages an absent mark with the reason collected from the user.
func (d *AttendanceDraft) MarkAbsent(studentID, date, reason string) error {
	return d.stage(studentID, date, AttendanceRecord{Status: StatusAbsent, Reason: reason})
}

// Locked reports whether the lesson held on date for the student's course is
// older than LessonEditWindow. Dates without a recorded lesson are never
// locked.
func (d *AttendanceDraft) Locked(studentID, date string) (bool, error) {
	st, ok := d.store.Student(studentID)
	if !ok {
		return false, ErrUnknownStudent
	}
	course, ok := d.store.CourseNamed(st.CourseName)
	if !ok {
		return false, nil
	}
	lesson, ok := course.Lesson(date)
	if !ok || lesson.CreatedAt.IsZero() {
		return false, nil
	}
	return d.now().Sub(lesson.CreatedAt) > LessonEditWindow, nil
}

func (d *AttendanceDraft) stage(studentID, date string, rec AttendanceRecord) error {
	locked, err := d.Locked(studentID, date)
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("%s: %w", date, ErrLessonLocked)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	att, ok := d.pending[studentID]
	if !ok {
		att = make(Attendance)
		d.pending[studentID] = att
	}
	att[date] = rec
	return nil
}

// Pending returns a copy of the staged changes keyed by student id.
func (d *AttendanceDraft) Pending() map[string]Attendance {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]Attendance, len(d.pending))
	for id, att := range d.pending {
		cp := make(Attendance, len(att))
		for date, rec := range att {
			cp[date] = rec
		}
		out[id] = cp
	}
	return out
}

// Discard drops every staged change.
func (d *AttendanceDraft) Discard() {
	d.mu.Lock()
	d.pending = make(map[string]Attendance)
	d.mu.Unlock()
}

// Save flushes the staged changes through the bulk endpoint and re-fetches
// students. Staged changes are kept when the request fails.
func (d *AttendanceDraft) Save(ctx context.Context) (*BulkResult, error) {
	pending := d.Pending()
	if len(pending) == 0 {
		return nil, ErrNothingToSave
	}

	updates := make([]AttendanceUpdate, 0, len(pending))
	for _, id := range slices.Sorted(maps.Keys(pending)) {
		updates = append(updates, AttendanceUpdate{ID: id, Attendance: pending[id]})
	}

	res, err := d.store.SaveAttendance(ctx, updates)
	if res == nil {
		return nil, err
	}
	d.Discard()
	return res, err
}
