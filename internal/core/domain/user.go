package domain

import (
	"crypto/subtle"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleTeacher    Role = "TEACHER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleTeacher
}

// JoinDateLayout is the calendar format used for User.JoinDate.
const JoinDateLayout = "2006-01-02"

// Device is one login session of a user.
type Device struct {
	ID        string
	Name      string
	LastLogin time.Time
	IP        string
	IsCurrent bool
}

// User is an admin or teacher belonging to one education center.
type User struct {
	ID             string
	Role           Role
	Name           string
	Username       string
	PasswordHash   string
	// LegacyPassword is the plaintext password of a record written before
	// hashing was introduced. It is cleared by SetPassword.
	LegacyPassword string
	CenterName     string

	// Teacher-only fields.
	CourseName    string
	CoursePrice   float64
	MonthlySalary float64
	SalaryPaid    bool
	JoinDate      string
	IsLeft        bool

	Devices   []Device
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user administers its center.
func (u *User) IsAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// ValidatePassword rejects passwords that cannot be hashed.
func ValidatePassword(plain string) error {
	if len(plain) > MaxPasswordBytes {
		return Invalid("password must be at most 72 bytes")
	}
	return nil
}

// SetPassword stores a bcrypt hash of the plain password and drops any
// legacy plaintext.
func (u *User) SetPassword(plain string) error {
	if err := ValidatePassword(plain); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.LegacyPassword = ""
	return nil
}

// CheckPassword reports whether plain matches the stored hash, or the legacy
// plaintext when no hash exists yet.
func (u *User) CheckPassword(plain string) bool {
	if u.PasswordHash == "" {
		return u.LegacyPassword != "" && subtle.ConstantTimeCompare([]byte(u.LegacyPassword), []byte(plain)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// NeedsRehash reports whether the user still authenticates with a plaintext
// password.
func (u *User) NeedsRehash() bool {
	return u.PasswordHash == "" && u.LegacyPassword != ""
}

// HasDevice reports whether a device with the given id is still registered.
func (u *User) HasDevice(id string) bool {
	for _, d := range u.Devices {
		if d.ID == id {
			return true
		}
	}
	return false
}

// AddCurrentDevice clears the current flag on every known device and appends
// d as the only current one.
func (u *User) AddCurrentDevice(d Device) {
	devices := make([]Device, 0, len(u.Devices)+1)
	for _, old := range u.Devices {
		old.IsCurrent = false
		devices = append(devices, old)
	}
	d.IsCurrent = true
	u.Devices = append(devices, d)
}

// RemoveDevice drops the device with the given id. It reports whether
// anything was removed.
func (u *User) RemoveDevice(id string) bool {
	kept := u.Devices[:0:0]
	for _, d := range u.Devices {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	removed := len(kept) != len(u.Devices)
	u.Devices = kept
	return removed
}

// Actor is the authenticated caller of a tenant-scoped operation.
type Actor struct {
	UserID     string
	Role       Role
	CenterName string
}

// ActorOf builds the actor for an authenticated user.
func ActorOf(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, CenterName: u.CenterName}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleSuperAdmin
}
