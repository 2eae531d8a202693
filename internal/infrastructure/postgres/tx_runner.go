package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

// Ensure TxRunner implements access.TxRunner, subscription.TxRunner and usecase.OnboardingTx.
var (
	_ access.TxRunner       = (*TxRunner)(nil)
	_ subscription.TxRunner = (*TxRunner)(nil)
	_ usecase.OnboardingTx  = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunAccess inicia una transacción con los repos de accesos, membresías y usuarios
// (alta del acceso + provisión de membresías).
func (r *TxRunner) RunAccess(ctx context.Context, fn func(
	grants repository.AccessGrantRepository,
	memberships repository.ProjectMembershipRepository,
	users repository.UserRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewAccessGrantRepository(tx), NewProjectMembershipRepository(tx), NewUserRepository(tx))
	})
}

// RunSubscription inicia una transacción con los repos de suscripción y empresa (activación, mora, cancelación).
func (r *TxRunner) RunSubscription(ctx context.Context, fn func(
	subs repository.SubscriptionRepository,
	companies repository.CompanyRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewSubscriptionRepository(tx), NewCompanyRepository(tx))
	})
}

// RunOnboarding inicia una transacción con los repos de empresa y usuario (alta pública).
func (r *TxRunner) RunOnboarding(ctx context.Context, fn func(
	companies repository.CompanyRepository,
	users repository.UserRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewCompanyRepository(tx), NewUserRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
