package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eco-dashboard/internal/domain"
)

type PostgresOrganizationsRepo struct {
	db *sql.DB
}

func NewPostgresOrganizationsRepo(db *sql.DB) *PostgresOrganizationsRepo {
	return &PostgresOrganizationsRepo{db: db}
}

var _ OrganizationsRepository = (*PostgresOrganizationsRepo)(nil)

const organizationColumns = `
	organization_id,
	name,
	email,
	password,
	status,
	created_at,
	updated_at,
	deleted_at`

func scanOrganization(row *sql.Row) (*domain.Organization, error) {
	var org domain.Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Email,
		&org.PasswordHash,
		&org.Status,
		&org.CreatedAt,
		&org.UpdatedAt,
		&org.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	return &org, nil
}

func (r *PostgresOrganizationsRepo) GetByEmail(ctx context.Context, email string) (*domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE email = $1 AND deleted_at IS NULL`, email)
	return scanOrganization(row)
}

func (r *PostgresOrganizationsRepo) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE organization_id = $1 AND deleted_at IS NULL`, id)
	return scanOrganization(row)
}

func (r *PostgresOrganizationsRepo) Create(ctx context.Context, org *domain.Organization) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO organizations (name, email, password, status)
		VALUES ($1, $2, $3, $4)
		RETURNING organization_id`,
		org.Name, org.Email, org.PasswordHash, domain.StatusActive,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateEntity
		}
		return 0, fmt.Errorf("create organization: %w", err)
	}
	return id, nil
}
