package repository

import (
	"context"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// ProjectRepository catálogo de proyectos externos.
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Project, error)
	Update(ctx context.Context, project *entity.Project) error
	List(ctx context.Context) ([]*entity.Project, error)
}
