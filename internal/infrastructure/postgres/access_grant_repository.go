package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

var _ repository.AccessGrantRepository = (*AccessGrantRepo)(nil)

const grantColumns = `id, company_id, project_id, status, credentials_cipher, external_company_id,
	notes, approved_by, approved_at, created_at, updated_at`

// AccessGrantRepo permisos empresa × proyecto sobre PostgreSQL.
type AccessGrantRepo struct {
	q Querier
}

// NewAccessGrantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccessGrantRepository(q Querier) *AccessGrantRepo {
	return &AccessGrantRepo{q: q}
}

// GetByCompanyAndProject devuelve (nil, nil) si no existe.
func (r *AccessGrantRepo) GetByCompanyAndProject(ctx context.Context, companyID, projectID string) (*entity.AccessGrant, error) {
	query := `SELECT ` + grantColumns + ` FROM access_grants WHERE company_id = $1 AND project_id = $2`
	return r.getOne(ctx, query, companyID, projectID)
}

// GetByID obtiene un acceso por ID.
func (r *AccessGrantRepo) GetByID(ctx context.Context, id string) (*entity.AccessGrant, error) {
	return r.getOne(ctx, `SELECT `+grantColumns+` FROM access_grants WHERE id = $1`, id)
}

// Create inserta el acceso. Si otra petición concurrente ya creó la fila (company_id, project_id)
// se sobrescribe con estos valores y grant.ID pasa a ser el de la fila existente.
func (r *AccessGrantRepo) Create(ctx context.Context, g *entity.AccessGrant) error {
	query := `
		INSERT INTO access_grants (` + grantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT ON CONSTRAINT uq_access_grants_company_project DO UPDATE SET
		       status              = EXCLUDED.status,
		       credentials_cipher  = CASE WHEN EXCLUDED.credentials_cipher = '' THEN access_grants.credentials_cipher
		                                  ELSE EXCLUDED.credentials_cipher END,
		       external_company_id = EXCLUDED.external_company_id,
		       notes               = EXCLUDED.notes,
		       approved_by         = EXCLUDED.approved_by,
		       approved_at         = EXCLUDED.approved_at,
		       updated_at          = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		g.ID, g.CompanyID, g.ProjectID, g.Status, g.CredentialsCipher, g.ExternalCompanyID,
		g.Notes, g.ApprovedBy, g.ApprovedAt, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID, &g.CreatedAt)
	return mapError("insert access grant", err)
}

// Update actualiza un acceso existente.
func (r *AccessGrantRepo) Update(ctx context.Context, g *entity.AccessGrant) error {
	query := `
		UPDATE access_grants SET status = $2, credentials_cipher = $3, external_company_id = $4,
		       notes = $5, approved_by = $6, approved_at = $7, updated_at = $8
		 WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		g.ID, g.Status, g.CredentialsCipher, g.ExternalCompanyID,
		g.Notes, g.ApprovedBy, g.ApprovedAt, g.UpdatedAt,
	)
	return mapError("update access grant", err)
}

// ListByCompany accesos de una empresa.
func (r *AccessGrantRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.AccessGrant, error) {
	rows, err := r.q.Query(ctx, `SELECT `+grantColumns+` FROM access_grants WHERE company_id = $1 ORDER BY created_at`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list access grants: %w", err)
	}
	defer rows.Close()
	var list []*entity.AccessGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access grant: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *AccessGrantRepo) getOne(ctx context.Context, query string, args ...any) (*entity.AccessGrant, error) {
	g, err := scanGrant(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get access grant: %w", err)
	}
	return g, nil
}

func scanGrant(row pgx.Row) (*entity.AccessGrant, error) {
	var g entity.AccessGrant
	err := row.Scan(
		&g.ID, &g.CompanyID, &g.ProjectID, &g.Status, &g.CredentialsCipher, &g.ExternalCompanyID,
		&g.Notes, &g.ApprovedBy, &g.ApprovedAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
