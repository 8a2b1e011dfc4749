package service

import (
	"context"
	"errors"
	"testing"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	mem := repository.NewMemoryRepo()
	svc := NewAuthService(mem, zap.NewNop())
	ctx := context.Background()

	org, err := svc.Register(ctx, RegisterRequest{
		Name:            "Acme",
		Email:           "acme@eco.local",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	require.NotZero(t, org.ID)
	// The raw password is never stored.
	require.NotEqual(t, "secret123", org.PasswordHash)
	require.NotContains(t, org.ToJSON(), "password")

	got, err := svc.Authenticate(ctx, "acme@eco.local", "secret123")
	require.NoError(t, err)
	require.Equal(t, org.ID, got.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	mem := repository.NewMemoryRepo()
	svc := NewAuthService(mem, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name: "Acme", Email: "acme@eco.local",
		Password: "secret123", ConfirmPassword: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "acme@eco.local", "wrong")
	require.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewAuthService(repository.NewMemoryRepo(), zap.NewNop())

	_, err := svc.Authenticate(context.Background(), "nadie@eco.local", "x")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAuthenticateEmptyEmailReportsUnknown(t *testing.T) {
	mem := repository.NewMemoryRepo()
	svc := NewAuthService(mem, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name: "Acme", Email: "acme@eco.local",
		Password: "secret123", ConfirmPassword: "secret123",
	})
	require.NoError(t, err)

	// An empty email is an unknown organization, not a bad password.
	_, err = svc.Authenticate(ctx, "", "secret123")
	require.True(t, errors.Is(err, domain.ErrNotFound))

	// An empty password against a real account is a bad password.
	_, err = svc.Authenticate(ctx, "acme@eco.local", "")
	require.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestRegisterPasswordMismatchNeverPersists(t *testing.T) {
	mem := repository.NewMemoryRepo()
	svc := NewAuthService(mem, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name:            "Acme",
		Email:           "acme@eco.local",
		Password:        "secret123",
		ConfirmPassword: "secret124",
	})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, "Las contraseñas no coinciden", vErr.Fields["confirm_password"])

	_, err = mem.GetByEmail(ctx, "acme@eco.local")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRegisterDuplicate(t *testing.T) {
	mem := repository.NewMemoryRepo()
	svc := NewAuthService(mem, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name: "Acme", Email: "acme@eco.local",
		Password: "secret123", ConfirmPassword: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{
		Name: "Acme", Email: "otra@eco.local",
		Password: "secret123", ConfirmPassword: "secret123",
	})
	require.True(t, errors.Is(err, domain.ErrDuplicateEntity))
}

func TestRegisterMissingFields(t *testing.T) {
	svc := NewAuthService(repository.NewMemoryRepo(), zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterRequest{})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Contains(t, vErr.Fields, "name")
	require.Contains(t, vErr.Fields, "email")
	require.Contains(t, vErr.Fields, "password")
}
