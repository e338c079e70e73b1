package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

const chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func seedTeacher(t *testing.T, repo *stubUserRepo, username, password, center string) *domain.User {
	t.Helper()
	u := &domain.User{Role: domain.RoleTeacher, Name: username, Username: username, CenterName: center}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	repo.seed(u)
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())

	res, err := svc.Login(context.Background(), ports.LoginInput{
		Username:  "  aziz ",
		Password:  "pass123 ",
		UserAgent: chromeOnWindows,
		IP:        "10.0.0.7",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" || res.CurrentDeviceID == "" {
		t.Fatalf("expected token and device id, got %+v", res)
	}

	stored, _ := repo.FindByID(context.Background(), seeded.ID)
	if len(stored.Devices) != 1 {
		t.Fatalf("expected one stored device, got %d", len(stored.Devices))
	}
	d := stored.Devices[0]
	if d.ID != res.CurrentDeviceID || !d.IsCurrent {
		t.Errorf("stored device does not match login result: %+v", d)
	}
	if d.Name != "Windows PC (Chrome)" || d.IP != "10.0.0.7" {
		t.Errorf("unexpected device fields: %+v", d)
	}

	claims, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != seeded.ID || claims.Role != string(domain.RoleTeacher) || claims.DeviceID != d.ID {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Error("expected exp claim with a positive ttl")
	}
}

func TestAuthService_Login_SecondDeviceBecomesCurrent(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", 0, zerolog.Nop())

	first, err := svc.Login(context.Background(), ports.LoginInput{Username: "aziz", Password: "pass123"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(context.Background(), ports.LoginInput{Username: "aziz", Password: "pass123"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), seeded.ID)
	if len(stored.Devices) != 2 {
		t.Fatalf("expected two devices, got %d", len(stored.Devices))
	}
	for _, d := range stored.Devices {
		if d.ID == first.CurrentDeviceID && d.IsCurrent {
			t.Error("first device must no longer be current")
		}
		if d.ID == second.CurrentDeviceID && !d.IsCurrent {
			t.Error("second device must be current")
		}
	}

	claims, err := svc.ParseToken(second.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Error("a zero ttl must issue tokens without exp")
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := newStubUserRepo()
	seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())

	cases := []ports.LoginInput{
		{Username: "aziz", Password: "wrong"},
		{Username: "ghost", Password: "pass123"},
		{Username: "", Password: "pass123"},
		{Username: "aziz", Password: "   "},
	}
	for _, in := range cases {
		if _, err := svc.Login(context.Background(), in); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login(%q): expected ErrInvalidCredentials, got %v", in.Username, err)
		}
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	throttle := newStubThrottle(2)
	svc := NewAuthService(repo, throttle, "secret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, ports.LoginInput{Username: "aziz", Password: "nope"}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := svc.Login(ctx, ports.LoginInput{Username: "aziz", Password: "pass123"}); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	delete(throttle.failures, "aziz")
	if _, err := svc.Login(ctx, ports.LoginInput{Username: "aziz", Password: "pass123"}); err != nil {
		t.Fatalf("expected login after window reset, got %v", err)
	}
}

func TestAuthService_Login_ThrottleFailsOpen(t *testing.T) {
	repo := newStubUserRepo()
	seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	throttle := newStubThrottle(1)
	throttle.err = errors.New("redis down")
	svc := NewAuthService(repo, throttle, "secret", time.Hour, zerolog.Nop())

	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "aziz", Password: "pass123"}); err != nil {
		t.Fatalf("expected login to succeed when the throttle is unavailable, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	res, err := svc.Login(ctx, ports.LoginInput{Username: "aziz", Password: "pass123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	user, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatalf("expected user %s, got %s", seeded.ID, user.ID)
	}

	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("garbage token: expected ErrUnauthenticated, got %v", err)
	}

	other := NewAuthService(repo, nil, "another-secret", time.Hour, zerolog.Nop())
	if _, err := other.Authenticate(ctx, res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("foreign signature: expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Authenticate_RevokedDevice(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	res, err := svc.Login(ctx, ports.LoginInput{Username: "aziz", Password: "pass123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	repo.setDevices(seeded.ID, nil)

	if _, err := svc.Authenticate(ctx, res.Token); !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestAuthService_Authenticate_DeletedUser(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	res, err := svc.Login(ctx, ports.LoginInput{Username: "aziz", Password: "pass123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	_ = repo.Delete(ctx, seeded.ID)

	if _, err := svc.Authenticate(ctx, res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_ParseToken_Expired(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", time.Minute, zerolog.Nop())

	issued := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, err := svc.generateToken(seeded, "dev-1")
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := svc.ParseToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_ParseToken_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), nil, "secret", time.Hour, zerolog.Nop())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ParseToken(token); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestAuthService_Login_RehashesLegacyPassword(t *testing.T) {
	repo := newStubUserRepo()
	id := repo.seed(&domain.User{Role: domain.RoleTeacher, Username: "old", CenterName: "Alpha", LegacyPassword: "legacy1"})
	svc := NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Login(ctx, ports.LoginInput{Username: "old", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong legacy password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, ports.LoginInput{Username: "old", Password: "legacy1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	stored, _ := repo.FindByID(ctx, id)
	if stored.LegacyPassword != "" || stored.PasswordHash == "" {
		t.Fatalf("password not rehashed: %+v", stored)
	}
	if !stored.CheckPassword("legacy1") {
		t.Fatal("rehashed password does not verify")
	}
	if len(stored.Devices) != 1 {
		t.Fatalf("expected the login device to be kept, got %+v", stored.Devices)
	}
}

func TestAuthService_Login_ConcurrentDevicesKept(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedTeacher(t, repo, "aziz", "pass123", "Alpha")
	svc := NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	const logins = 8
	var wg sync.WaitGroup
	errs := make(chan error, logins)
	for range logins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(ctx, ports.LoginInput{Username: "aziz", Password: "pass123"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
	}

	stored, _ := repo.FindByID(ctx, seeded.ID)
	if len(stored.Devices) != logins {
		t.Fatalf("expected %d devices, got %d", logins, len(stored.Devices))
	}
	current := 0
	for _, d := range stored.Devices {
		if d.IsCurrent {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("expected exactly one current device, got %d", current)
	}
}
