package repository

import (
	"context"
	"errors"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/session"
)

// TenantResolver turns session state (plus an optional authenticated
// principal) into the acting organization id. Every protected operation
// goes through it; a view that cannot resolve a tenant fails with
// domain.ErrInvalidSession and must never fall back to cross-tenant data.
type TenantResolver interface {
	Resolve(ctx context.Context, sess *session.Session, principal *domain.Principal) (int64, error)
}

type tenantResolver struct {
	orgs OrganizationsRepository
}

func NewTenantResolver(orgs OrganizationsRepository) TenantResolver {
	return &tenantResolver{orgs: orgs}
}

// Resolve order: session organization id (re-validated against the
// store; a stale id falls through), then the principal's profile-level
// organization, then the principal's direct organization.
func (r *tenantResolver) Resolve(ctx context.Context, sess *session.Session, principal *domain.Principal) (int64, error) {
	if sess != nil && sess.OrganizationID > 0 {
		org, err := r.orgs.GetByID(ctx, sess.OrganizationID)
		if err == nil {
			return org.ID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return 0, err
		}
	}
	if principal != nil {
		if principal.ProfileOrganizationID.Valid {
			return principal.ProfileOrganizationID.Int64, nil
		}
		if principal.OrganizationID.Valid {
			return principal.OrganizationID.Int64, nil
		}
	}
	return 0, domain.ErrInvalidSession
}
