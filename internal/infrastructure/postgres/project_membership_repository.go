package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

var _ repository.ProjectMembershipRepository = (*ProjectMembershipRepo)(nil)

const membershipColumns = `id, grant_id, user_id, external_user_id, external_username, external_role,
	external_session_token, external_token_expires_at, status, revoked_at, revoked_by, created_at, updated_at`

// ProjectMembershipRepo membresías usuario × acceso sobre PostgreSQL.
type ProjectMembershipRepo struct {
	q Querier
}

// NewProjectMembershipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectMembershipRepository(q Querier) *ProjectMembershipRepo {
	return &ProjectMembershipRepo{q: q}
}

// GetByGrantAndUser devuelve (nil, nil) si no existe.
func (r *ProjectMembershipRepo) GetByGrantAndUser(ctx context.Context, grantID, userID string) (*entity.ProjectMembership, error) {
	query := `SELECT ` + membershipColumns + ` FROM project_memberships WHERE grant_id = $1 AND user_id = $2`
	m, err := scanMembership(r.q.QueryRow(ctx, query, grantID, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// CreateIfAbsent inserta la membresía; si ya existe (grant_id, user_id) no hace nada y devuelve false.
func (r *ProjectMembershipRepo) CreateIfAbsent(ctx context.Context, m *entity.ProjectMembership) (bool, error) {
	query := `
		INSERT INTO project_memberships (id, grant_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uq_project_memberships_grant_user DO NOTHING`
	cmd, err := r.q.Exec(ctx, query, m.ID, m.GrantID, m.UserID, m.Status, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return false, mapError("insert membership", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// Update guarda el resultado del registro externo y la sesión cacheada.
func (r *ProjectMembershipRepo) Update(ctx context.Context, m *entity.ProjectMembership) error {
	query := `
		UPDATE project_memberships SET external_user_id = $2, external_username = $3, external_role = $4,
		       external_session_token = $5, external_token_expires_at = $6, status = $7,
		       revoked_at = $8, revoked_by = $9, updated_at = $10
		 WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ExternalUserID, m.ExternalUsername, m.ExternalRole,
		m.ExternalSessionToken, m.ExternalTokenExpiresAt, m.Status,
		m.RevokedAt, m.RevokedBy, m.UpdatedAt,
	)
	return mapError("update membership", err)
}

// ListByGrant membresías de un acceso.
func (r *ProjectMembershipRepo) ListByGrant(ctx context.Context, grantID string) ([]*entity.ProjectMembership, error) {
	rows, err := r.q.Query(ctx, `SELECT `+membershipColumns+` FROM project_memberships WHERE grant_id = $1 ORDER BY created_at`, grantID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProjectMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMembership(row pgx.Row) (*entity.ProjectMembership, error) {
	var m entity.ProjectMembership
	err := row.Scan(
		&m.ID, &m.GrantID, &m.UserID, &m.ExternalUserID, &m.ExternalUsername, &m.ExternalRole,
		&m.ExternalSessionToken, &m.ExternalTokenExpiresAt, &m.Status, &m.RevokedAt, &m.RevokedBy,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
