package repository

import (
	"context"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// SubscriptionPlanRepository catálogo de planes.
type SubscriptionPlanRepository interface {
	Create(ctx context.Context, plan *entity.SubscriptionPlan) error
	GetByID(ctx context.Context, id string) (*entity.SubscriptionPlan, error)
	Update(ctx context.Context, plan *entity.SubscriptionPlan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, onlyActive bool) ([]*entity.SubscriptionPlan, error)
	// CountLiveSubscriptions cuenta suscripciones active/trialing que referencian el plan.
	CountLiveSubscriptions(ctx context.Context, planID string) (int, error)
}

// SubscriptionRepository suscripciones (una por empresa).
type SubscriptionRepository interface {
	GetByCompany(ctx context.Context, companyID string) (*entity.Subscription, error)
	// Upsert inserta o actualiza por company_id.
	Upsert(ctx context.Context, sub *entity.Subscription) error
}
