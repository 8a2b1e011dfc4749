package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService validates credentials and registers organizations.
type AuthService interface {
	// Authenticate looks the organization up by exact email and verifies
	// the password against the stored salted hash. domain.ErrNotFound
	// when the email is unknown, domain.ErrInvalidCredentials when the
	// hash does not verify.
	Authenticate(ctx context.Context, email, password string) (*domain.Organization, error)

	// Register validates and creates a new organization. The raw
	// password is never stored; mismatched confirmation surfaces as a
	// field-level ValidationError, uniqueness violations as
	// domain.ErrDuplicateEntity.
	Register(ctx context.Context, req RegisterRequest) (*domain.Organization, error)
}

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	// Client metadata, for logs only.
	IPAddress string
	UserAgent string
}

type authService struct {
	orgs   repository.OrganizationsRepository
	logger *zap.Logger
}

func NewAuthService(orgs repository.OrganizationsRepository, logger *zap.Logger) AuthService {
	return &authService{orgs: orgs, logger: logger}
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*domain.Organization, error) {
	// No pre-validation: an empty email misses the lookup and reports
	// the unknown-email outcome, an empty password fails the hash check.
	email = strings.TrimSpace(email)
	org, err := s.orgs.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Login failed: unknown email",
				zap.String("reason", "not_found"),
			)
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup organization: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(org.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Login failed: password mismatch",
			zap.Int64("organization_id", org.ID),
			zap.String("reason", "invalid_credentials"),
		)
		return nil, domain.ErrInvalidCredentials
	}

	return org, nil
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*domain.Organization, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "Este campo es obligatorio"
	}
	if req.Email == "" {
		fields["email"] = "Este campo es obligatorio"
	}
	if req.Password == "" {
		fields["password"] = "Este campo es obligatorio"
	}
	if req.Password != req.ConfirmPassword {
		fields["confirm_password"] = "Las contraseñas no coinciden"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	org := &domain.Organization{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	id, err := s.orgs.Create(ctx, org)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntity) {
			s.logger.Warn("Registration rejected: duplicate organization",
				zap.String("ip_address", req.IPAddress),
				zap.String("user_agent", req.UserAgent),
			)
			return nil, domain.ErrDuplicateEntity
		}
		return nil, fmt.Errorf("create organization: %w", err)
	}
	org.ID = id
	org.Status = domain.StatusActive

	s.logger.Info("Organization registered", zap.Int64("organization_id", id))
	return org, nil
}
