package repository

import (
	"context"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// AccessGrantRepository persistencia de permisos empresa × proyecto.
type AccessGrantRepository interface {
	// GetByCompanyAndProject devuelve (nil, nil) si no existe.
	GetByCompanyAndProject(ctx context.Context, companyID, projectID string) (*entity.AccessGrant, error)
	GetByID(ctx context.Context, id string) (*entity.AccessGrant, error)
	Create(ctx context.Context, grant *entity.AccessGrant) error
	Update(ctx context.Context, grant *entity.AccessGrant) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.AccessGrant, error)
}

// ProjectMembershipRepository persistencia de membresías usuario × acceso.
type ProjectMembershipRepository interface {
	// GetByGrantAndUser devuelve (nil, nil) si no existe.
	GetByGrantAndUser(ctx context.Context, grantID, userID string) (*entity.ProjectMembership, error)
	// CreateIfAbsent inserta la membresía si no existe (grant_id, user_id).
	// Devuelve true si la fila fue creada.
	CreateIfAbsent(ctx context.Context, m *entity.ProjectMembership) (bool, error)
	Update(ctx context.Context, m *entity.ProjectMembership) error
	ListByGrant(ctx context.Context, grantID string) ([]*entity.ProjectMembership, error)
}
