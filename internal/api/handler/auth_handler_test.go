package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/api/middleware"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUnauthenticated
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			if in.Username != "aziz" || in.Password != "pass123" {
				t.Fatalf("unexpected credentials: %+v", in)
			}
			if in.IP != "203.0.113.9" || !strings.Contains(in.UserAgent, "Firefox") {
				t.Fatalf("client details not forwarded: %+v", in)
			}
			return &ports.LoginResult{
				Token:           "tkn",
				CurrentDeviceID: "dev-1",
				User: &domain.User{
					ID:           "u1",
					Role:         domain.RoleTeacher,
					Username:     "aziz",
					PasswordHash: "$2a$10$secret",
					Devices:      []domain.Device{{ID: "dev-1", Name: "Linux PC (Firefox)", IsCurrent: true}},
				},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"aziz","password":"pass123"}`)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.9")
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tkn" || resp["currentDeviceId"] != "dev-1" {
		t.Fatalf("unexpected response: %v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" || user["role"] != "TEACHER" {
		t.Fatalf("unexpected user: %v", resp["user"])
	}
	devices, _ := user["devices"].([]any)
	if len(devices) != 1 {
		t.Fatalf("expected one device, got %v", user["devices"])
	}
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*ports.LoginResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	for _, body := range []string{`{"username":"aziz"}`, `{"password":"x"}`, `not json`} {
		rec := httptest.NewRecorder()
		err := h.Login(e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", body), rec))
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_PropagatesServiceErrors(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*ports.LoginResult, error) {
			return nil, domain.ErrTooManyAttempts
		},
	})

	err := h.Login(e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"a","password":"b"}`), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), rec)
	c.Set(middleware.ContextKeyUser, &domain.User{ID: "u1", Username: "aziz", CenterName: "Alpha"})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "u1" || resp.CenterName != "Alpha" {
		t.Fatalf("unexpected user: %+v", resp)
	}

	anon := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), httptest.NewRecorder())
	if err := h.Me(anon); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
