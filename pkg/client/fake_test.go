package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeAPI is an in-memory stand-in for the server, enough to drive the client.
type fakeAPI struct {
	mu       sync.Mutex
	token    string
	users    []User
	courses  []Course
	students []Student
	calls    map[string]int
	lastBulk []AttendanceUpdate
	failBulk bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{token: "tkn", calls: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("GET /auth/me", f.auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.users[0])
	}))
	mux.HandleFunc("GET /users", f.auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.users)
	}))
	mux.HandleFunc("POST /users", f.createUser)
	mux.HandleFunc("PUT /users/{id}", f.auth(func(w http.ResponseWriter, r *http.Request) {
		var patch UserPatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		for i := range f.users {
			if f.users[i].ID == r.PathValue("id") {
				if patch.CenterName != nil {
					f.users[i].CenterName = *patch.CenterName
				}
				writeJSON(w, http.StatusOK, f.users[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, APIError{Message: "user not found"})
	}))
	mux.HandleFunc("GET /courses", f.auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.courses)
	}))
	mux.HandleFunc("GET /students", f.auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.students)
	}))
	mux.HandleFunc("POST /students", f.auth(func(w http.ResponseWriter, r *http.Request) {
		var in NewStudent
		_ = json.NewDecoder(r.Body).Decode(&in)
		st := Student{ID: "s" + string(rune('0'+len(f.students)+1)), Name: in.Name, TeacherID: in.TeacherID, Attendance: Attendance{}}
		f.students = append(f.students, st)
		writeJSON(w, http.StatusCreated, st)
	}))
	mux.HandleFunc("PUT /students/bulk", f.auth(f.bulk))
	mux.HandleFunc("PUT /students/{id}", f.auth(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "locked" {
			writeJSON(w, http.StatusForbidden, APIError{Message: "access forbidden"})
			return
		}
		var patch StudentPatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		for i := range f.students {
			if f.students[i].ID == r.PathValue("id") {
				if patch.Paid != nil {
					f.students[i].Paid = *patch.Paid
				}
				writeJSON(w, http.StatusOK, f.students[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, APIError{Message: "student not found"})
	}))
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls[r.Method+" "+r.URL.Path]++
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return f, New(srv.URL)
}

func (f *fakeAPI) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			writeJSON(w, http.StatusUnauthorized, APIError{Message: "authentication required"})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Username != "owner" || in.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, APIError{Message: "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, LoginResult{Token: f.token, User: f.users[0], CurrentDeviceID: "dev-1"})
}

func (f *fakeAPI) createUser(w http.ResponseWriter, r *http.Request) {
	var in NewUser
	_ = json.NewDecoder(r.Body).Decode(&in)
	for _, u := range f.users {
		if strings.EqualFold(u.Username, in.Username) {
			writeJSON(w, http.StatusBadRequest, APIError{
				Message:     "username is already taken",
				Suggestions: []string{in.Username + "7", in.Username + "2024", in.Username + "uz"},
			})
			return
		}
	}
	u := User{ID: "u" + string(rune('0'+len(f.users)+1)), Role: RoleTeacher, Name: in.Name, Username: in.Username}
	f.users = append(f.users, u)
	writeJSON(w, http.StatusCreated, u)
}

func (f *fakeAPI) bulk(w http.ResponseWriter, r *http.Request) {
	if f.failBulk {
		writeJSON(w, http.StatusInternalServerError, APIError{Message: "internal server error"})
		return
	}
	var in struct {
		Updates []AttendanceUpdate `json:"updates"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.lastBulk = in.Updates

	res := BulkResult{Students: []Student{}}
	for _, u := range in.Updates {
		found := false
		for i := range f.students {
			if f.students[i].ID != u.ID {
				continue
			}
			found = true
			if f.students[i].Attendance == nil {
				f.students[i].Attendance = Attendance{}
			}
			for date, rec := range u.Attendance {
				f.students[i].Attendance[date] = rec
			}
			res.Students = append(res.Students, f.students[i])
		}
		if found {
			res.Results = append(res.Results, AttendanceResult{ID: u.ID, Status: "updated"})
		} else {
			res.Results = append(res.Results, AttendanceResult{ID: u.ID, Status: "skipped", Reason: "not found"})
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
