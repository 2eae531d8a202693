package repository

import (
	"context"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	// List filtra por estado si status no está vacío.
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Company, error)
}
