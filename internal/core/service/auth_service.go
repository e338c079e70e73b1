package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/metrics"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Role     string `json:"role"`
	DeviceID string `json:"did,omitempty"`
	jwt.RegisteredClaims
}

// AuthService implements login and token resolution.
type AuthService struct {
	users     ports.UserRepository
	throttle  ports.LoginThrottle
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// NewAuthService returns an AuthService. A tokenTTL <= 0 issues tokens
// without an expiry. throttle may be nil to disable login throttling.
func NewAuthService(users ports.UserRepository, throttle ports.LoginThrottle, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		throttle:  throttle,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	username := strings.TrimSpace(in.Username)
	password := strings.TrimSpace(in.Password)
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !s.allowed(ctx, username) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}
	// Unknown usernames and wrong passwords are indistinguishable to the caller.
	if user == nil || !user.CheckPassword(password) {
		s.fail(ctx, username)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if user.NeedsRehash() {
		s.rehash(ctx, user, password)
	}

	device := domain.Device{
		ID:        "dev-" + uuid.NewString(),
		Name:      domain.DeviceName(in.UserAgent),
		LastLogin: s.now().UTC(),
		IP:        in.IP,
	}
	user, err = s.users.AddCurrentDevice(ctx, user.ID, device)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: save device: %w", err)
	}

	token, err := s.generateToken(user, device.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	s.reset(ctx, username)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Str("user_id", user.ID).
		Str("center", user.CenterName).
		Str("device", device.Name).
		Msg("user logged in")

	return &ports.LoginResult{Token: token, User: user, CurrentDeviceID: device.ID}, nil
}

// Authenticate verifies the token signature, loads the user it names and
// rejects tokens whose device has been revoked.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if claims.DeviceID != "" && !user.HasDevice(claims.DeviceID) {
		return nil, domain.ErrSessionRevoked
	}
	return user, nil
}

// ParseToken validates an HS256 token and returns its claims.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *AuthService) generateToken(user *domain.User, deviceID string) (string, error) {
	now := s.now()
	claims := Claims{
		Role:     string(user.Role),
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// Throttle failures never block a login; they are only logged.

func (s *AuthService) allowed(ctx context.Context, username string) bool {
	if s.throttle == nil {
		return true
	}
	ok, err := s.throttle.Allow(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, allowing")
		return true
	}
	return ok
}

func (s *AuthService) fail(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Fail(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func (s *AuthService) reset(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
	}
}

// rehash replaces a legacy plaintext password with a bcrypt hash after it has
// been verified. Failures are logged; the login still succeeds.
func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	if err := user.SetPassword(password); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("legacy password not rehashed")
		return
	}
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("legacy password not rehashed")
		return
	}
	s.log.Info().Str("user_id", user.ID).Msg("legacy password rehashed")
}
