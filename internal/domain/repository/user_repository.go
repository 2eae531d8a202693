package repository

import (
	"context"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
	// ListActiveByCompany devuelve todos los usuarios con status=active de la empresa.
	ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.User, error)
}
