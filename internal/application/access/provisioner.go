package access

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

// Provisioner materializa una membresía por cada usuario activo de la empresa del acceso.
// Es idempotente y nunca elimina membresías de usuarios que dejaron de estar activos.
type Provisioner struct {
	now func() time.Time
}

// NewProvisioner construye el provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{now: time.Now}
}

// Provision crea las membresías faltantes de grant. Los errores de persistencia se propagan.
func (p *Provisioner) Provision(
	ctx context.Context,
	grant *entity.AccessGrant,
	users repository.UserRepository,
	memberships repository.ProjectMembershipRepository,
) (dto.ProvisionStats, error) {
	var stats dto.ProvisionStats

	active, err := users.ListActiveByCompany(ctx, grant.CompanyID)
	if err != nil {
		return stats, fmt.Errorf("provision: listar usuarios activos: %w", err)
	}
	stats.Found = len(active)

	now := p.now()
	for _, u := range active {
		created, err := memberships.CreateIfAbsent(ctx, &entity.ProjectMembership{
			ID:        uuid.New().String(),
			GrantID:   grant.ID,
			UserID:    u.ID,
			Status:    entity.MembershipStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return stats, fmt.Errorf("provision: membresía de %s: %w", u.ID, err)
		}
		if created {
			stats.Created++
		} else {
			stats.Existing++
		}
	}
	return stats, nil
}
