// Package client is a typed Go client for the LC Studio REST API together with
// the client-side state the dashboard keeps: a refreshable Store of users,
// courses and students, staged attendance edits, salary reminders, and the
// persisted Session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client issues one REST call per method. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with a previously issued bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g.
// "https://lc.example.com/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// --- Auth ---

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// Me resolves the current token to its user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// NeedsSetup reports whether the server has no users yet.
func (c *Client) NeedsSetup(ctx context.Context) (bool, error) {
	var res struct {
		NeedsSetup bool `json:"needsSetup"`
	}
	if err := c.do(ctx, http.MethodGet, "/setup", nil, &res); err != nil {
		return false, err
	}
	return res.NeedsSetup, nil
}

// --- Users ---

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser registers a new center when the client has no token, otherwise
// adds a user to the caller's center. A taken username yields an *APIError
// carrying Suggestions.
func (c *Client) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/users", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), patch, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

// RemoveDevice revokes one login device; its token stops working.
func (c *Client) RemoveDevice(ctx context.Context, userID, deviceID string) (*User, error) {
	var u User
	path := "/users/" + url.PathEscape(userID) + "/devices/" + url.PathEscape(deviceID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- Courses ---

func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.do(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) CreateCourse(ctx context.Context, in NewCourse) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodPost, "/courses", in, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) UpdateCourse(ctx context.Context, id string, patch CoursePatch) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), patch, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddLesson(ctx context.Context, courseID, date, topic string) (*Course, error) {
	var course Course
	body := map[string]string{"date": date, "topic": topic}
	if err := c.do(ctx, http.MethodPost, "/courses/"+url.PathEscape(courseID)+"/lessons", body, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// --- Students ---

func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := c.do(ctx, http.MethodGet, "/students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) CreateStudent(ctx context.Context, in NewStudent) (*Student, error) {
	var s Student
	if err := c.do(ctx, http.MethodPost, "/students", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateStudent(ctx context.Context, id string, patch StudentPatch) (*Student, error) {
	var s Student
	if err := c.do(ctx, http.MethodPut, "/students/"+url.PathEscape(id), patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/students/"+url.PathEscape(id), nil, nil)
}

// BulkAttendance merges each item's attendance into the stored student.
func (c *Client) BulkAttendance(ctx context.Context, updates []AttendanceUpdate) (*BulkResult, error) {
	var res BulkResult
	body := map[string][]AttendanceUpdate{"updates": updates}
	if err := c.do(ctx, http.MethodPut, "/students/bulk", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). Any other status becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
