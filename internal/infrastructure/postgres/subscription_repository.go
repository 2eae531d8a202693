package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

var (
	_ repository.SubscriptionPlanRepository = (*SubscriptionPlanRepo)(nil)
	_ repository.SubscriptionRepository     = (*SubscriptionRepo)(nil)
)

const planColumns = `id, name, amount, currency, interval, features, is_active, created_at, updated_at`

// SubscriptionPlanRepo catálogo de planes; amount es NUMERIC ↔ decimal.Decimal.
type SubscriptionPlanRepo struct {
	q Querier
}

// NewSubscriptionPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionPlanRepository(q Querier) *SubscriptionPlanRepo {
	return &SubscriptionPlanRepo{q: q}
}

// Create persiste un plan.
func (r *SubscriptionPlanRepo) Create(ctx context.Context, p *entity.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Amount, p.Currency, p.Interval, p.Features, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert plan", err)
}

// GetByID obtiene un plan.
func (r *SubscriptionPlanRepo) GetByID(ctx context.Context, id string) (*entity.SubscriptionPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// Update actualiza un plan.
func (r *SubscriptionPlanRepo) Update(ctx context.Context, p *entity.SubscriptionPlan) error {
	query := `
		UPDATE subscription_plans SET name = $2, amount = $3, currency = $4, interval = $5,
		       features = $6, is_active = $7, updated_at = $8
		 WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Amount, p.Currency, p.Interval, p.Features, p.IsActive, p.UpdatedAt,
	)
	return mapError("update plan", err)
}

// Delete elimina un plan. Si alguna suscripción (incluso cancelada) lo referencia ⇒ domain.ErrPlanInUse.
func (r *SubscriptionPlanRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete plan: %w", domain.ErrPlanInUse)
		}
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// List planes ordenados por precio.
func (r *SubscriptionPlanRepo) List(ctx context.Context, onlyActive bool) ([]*entity.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE (NOT $1 OR is_active) ORDER BY amount, name`
	rows, err := r.q.Query(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var list []*entity.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountLiveSubscriptions cuenta suscripciones active/trialing del plan.
func (r *SubscriptionPlanRepo) CountLiveSubscriptions(ctx context.Context, planID string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM subscriptions
		 WHERE plan_id = $1 AND status IN ('active', 'trialing')`
	var n int
	if err := r.q.QueryRow(ctx, query, planID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count live subscriptions: %w", err)
	}
	return n, nil
}

func scanPlan(row pgx.Row) (*entity.SubscriptionPlan, error) {
	var p entity.SubscriptionPlan
	err := row.Scan(&p.ID, &p.Name, &p.Amount, &p.Currency, &p.Interval, &p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return &p, nil
}

const subscriptionColumns = `id, company_id, plan_id, customer_ref, payment_ref, status,
	current_period_start, current_period_end, cancel_at_period_end, canceled_at, created_at, updated_at`

// SubscriptionRepo suscripciones (una por empresa).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// GetByCompany devuelve (nil, nil) si la empresa no tiene suscripción.
func (r *SubscriptionRepo) GetByCompany(ctx context.Context, companyID string) (*entity.Subscription, error) {
	var s entity.Subscription
	err := r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE company_id = $1`, companyID).Scan(
		&s.ID, &s.CompanyID, &s.PlanID, &s.CustomerRef, &s.PaymentRef, &s.Status,
		&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CancelAtPeriodEnd, &s.CanceledAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza por company_id.
func (r *SubscriptionRepo) Upsert(ctx context.Context, s *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (company_id) DO UPDATE SET
		       plan_id              = EXCLUDED.plan_id,
		       customer_ref         = EXCLUDED.customer_ref,
		       payment_ref          = EXCLUDED.payment_ref,
		       status               = EXCLUDED.status,
		       current_period_start = EXCLUDED.current_period_start,
		       current_period_end   = EXCLUDED.current_period_end,
		       cancel_at_period_end = EXCLUDED.cancel_at_period_end,
		       canceled_at          = EXCLUDED.canceled_at,
		       updated_at           = EXCLUDED.updated_at
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.ID, s.CompanyID, s.PlanID, s.CustomerRef, s.PaymentRef, s.Status,
		s.CurrentPeriodStart, s.CurrentPeriodEnd, s.CancelAtPeriodEnd, s.CanceledAt,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	return mapError("upsert subscription", err)
}
