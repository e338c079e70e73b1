package ports

import (
	"context"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
)

// LoginInput carries credentials plus the request facts used to describe the
// new device.
type LoginInput struct {
	Username  string
	Password  string
	UserAgent string
	IP        string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token           string
	User            *domain.User
	CurrentDeviceID string
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	// Authenticate resolves a bearer token to the stored user it was issued for.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
