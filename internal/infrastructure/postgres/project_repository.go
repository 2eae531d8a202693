package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

const projectColumns = `id, slug, name, integration_type, base_url, auth_type, sso_url,
	api_key_cipher, api_secret_cipher, is_active, created_at, updated_at`

// ProjectRepo catálogo de proyectos externos sobre PostgreSQL.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

// Create persiste un proyecto; slug duplicado ⇒ domain.ErrDuplicate.
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Slug, p.Name, p.IntegrationType, p.BaseURL, p.AuthType, p.SSOURL,
		p.APIKeyCipher, p.APISecretCipher, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert project", err)
}

// GetByID obtiene un proyecto por ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return r.getOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

// GetBySlug obtiene un proyecto por slug.
func (r *ProjectRepo) GetBySlug(ctx context.Context, slug string) (*entity.Project, error) {
	return r.getOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug)
}

// Update actualiza un proyecto (el slug no cambia).
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	query := `
		UPDATE projects SET name = $2, integration_type = $3, base_url = $4, auth_type = $5,
		       sso_url = $6, api_key_cipher = $7, api_secret_cipher = $8, is_active = $9,
		       updated_at = $10
		 WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.IntegrationType, p.BaseURL, p.AuthType, p.SSOURL,
		p.APIKeyCipher, p.APISecretCipher, p.IsActive, p.UpdatedAt,
	)
	return mapError("update project", err)
}

// List devuelve el catálogo ordenado por nombre.
func (r *ProjectRepo) List(ctx context.Context) ([]*entity.Project, error) {
	rows, err := r.q.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var list []*entity.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProjectRepo) getOne(ctx context.Context, query string, arg any) (*entity.Project, error) {
	p, err := scanProject(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var p entity.Project
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.IntegrationType, &p.BaseURL, &p.AuthType, &p.SSOURL,
		&p.APIKeyCipher, &p.APISecretCipher, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
