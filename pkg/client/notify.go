package client

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type NotificationType string

const (
	NotificationWarning  NotificationType = "warning"
	NotificationCritical NotificationType = "critical"
	NotificationSuccess  NotificationType = "success"
)

type NotificationStatus string

const (
	NotificationActive   NotificationStatus = "active"
	NotificationResolved NotificationStatus = "resolved"
)

// Notification is a salary reminder shown to an admin. It only lives in
// memory.
type Notification struct {
	ID        string
	TeacherID string
	UserID    string
	Type      NotificationType
	Status    NotificationStatus
	Message   string
	Date      time.Time
	IsRead    bool
}

const (
	warnPrefix = "pay-warn-"
	critPrefix = "pay-crit-"

	warnFromDays = 2
	warnToDays   = 7
	// monthApprox wraps a pay day that already passed this month.
	monthApprox = 30
)

// SalaryNotifier derives salary reminders from the loaded teachers and the
// current date. Call Derive after every users refresh; entries accumulate
// across calls and are resolved once the salary is marked paid.
type SalaryNotifier struct {
	now func() time.Time

	mu      sync.Mutex
	entries []Notification
}

func NewSalaryNotifier() *SalaryNotifier {
	return &SalaryNotifier{now: time.Now}
}

// Derive updates the reminders for viewer and returns the current list.
// Only admins get reminders.
func (n *SalaryNotifier) Derive(viewer *User, users []User) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if viewer == nil || !viewer.IsAdmin() {
		return n.snapshot()
	}

	now := n.now()
	today := now.Day()
	for _, t := range users {
		if t.Role != RoleTeacher || t.IsLeft || t.JoinDate == "" {
			continue
		}
		joined, err := time.Parse("2006-01-02", t.JoinDate)
		if err != nil {
			continue
		}

		diff := joined.Day() - today
		if diff < 0 {
			diff += monthApprox
		}

		switch {
		case !t.SalaryPaid && diff >= warnFromDays && diff <= warnToDays:
			if !n.hasActive(t.ID) {
				n.entries = append(n.entries, Notification{
					ID:        fmt.Sprintf("%s%s-%d", warnPrefix, t.ID, now.UnixMilli()),
					TeacherID: t.ID,
					UserID:    viewer.ID,
					Type:      NotificationWarning,
					Status:    NotificationActive,
					Message:   fmt.Sprintf("Salary for %s (%s) is due in %d days.", t.Name, t.CourseName, diff),
					Date:      now,
				})
			}
		case !t.SalaryPaid && diff == 0:
			n.dropWarnings(t.ID)
			if !n.hasActiveCritical(t.ID) {
				n.entries = append(n.entries, Notification{
					ID:        fmt.Sprintf("%s%s-%d", critPrefix, t.ID, now.UnixMilli()),
					TeacherID: t.ID,
					UserID:    viewer.ID,
					Type:      NotificationCritical,
					Status:    NotificationActive,
					Message:   fmt.Sprintf("Pay the salary of %s (%s) today.", t.Name, t.CourseName),
					Date:      now,
				})
			}
		case t.SalaryPaid:
			for i := range n.entries {
				e := &n.entries[i]
				if e.TeacherID == t.ID && e.Status == NotificationActive {
					e.Status = NotificationResolved
					e.Type = NotificationSuccess
					e.Message = "Paid: " + e.Message
				}
			}
		}
	}
	return n.snapshot()
}

// Active returns the unresolved reminders.
func (n *SalaryNotifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Notification
	for _, e := range n.entries {
		if e.Status == NotificationActive {
			out = append(out, e)
		}
	}
	return out
}

// MarkRead flags one reminder as read.
func (n *SalaryNotifier) MarkRead(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.entries {
		if n.entries[i].ID == id {
			n.entries[i].IsRead = true
		}
	}
}

func (n *SalaryNotifier) hasActive(teacherID string) bool {
	for _, e := range n.entries {
		if e.TeacherID == teacherID && e.Status == NotificationActive {
			return true
		}
	}
	return false
}

func (n *SalaryNotifier) hasActiveCritical(teacherID string) bool {
	for _, e := range n.entries {
		if e.TeacherID == teacherID && e.Status == NotificationActive && strings.HasPrefix(e.ID, critPrefix) {
			return true
		}
	}
	return false
}

func (n *SalaryNotifier) dropWarnings(teacherID string) {
	kept := n.entries[:0]
	for _, e := range n.entries {
		if e.TeacherID == teacherID && strings.HasPrefix(e.ID, warnPrefix) {
			continue
		}
		kept = append(kept, e)
	}
	n.entries = kept
}

func (n *SalaryNotifier) snapshot() []Notification {
	return append([]Notification(nil), n.entries...)
}
