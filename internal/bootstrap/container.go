// Package bootstrap arma el grafo de dependencias compartido por la API y crmctl.
package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/application/auth"
	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
	"github.com/jhoicas/crm-portal-api/internal/application/usecase"
	"github.com/jhoicas/crm-portal-api/internal/infrastructure/crypto"
	"github.com/jhoicas/crm-portal-api/internal/infrastructure/external"
	"github.com/jhoicas/crm-portal-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/crm-portal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/crm-portal-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/crm-portal-api/internal/infrastructure/redis"
	infrastripe "github.com/jhoicas/crm-portal-api/internal/infrastructure/stripe"
	"github.com/jhoicas/crm-portal-api/pkg/config"
	"github.com/jhoicas/crm-portal-api/pkg/logger"
)

// Container casos de uso y repositorios listos para usar.
type Container struct {
	Pool  *pgxpool.Pool
	Redis *goredis.Client // nil si REDIS_ADDR no está configurado

	Companies *postgres.CompanyRepo
	Plans     *postgres.SubscriptionPlanRepo

	AuthUC         *auth.AuthUseCase
	CompanyUC      *usecase.CompanyUseCase
	UserUC         *usecase.UserUseCase
	ProjectUC      *usecase.ProjectUseCase
	AccessUC       *access.AccessUseCase
	SubscriptionUC *subscription.UseCase
	Observer       metrics.Observer
}

// New conecta PostgreSQL (y Redis si está configurado) y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	cipher, err := crypto.NewAESCipher(cfg.App.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("cifrador de secretos: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}

	c := &Container{Pool: pool}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	grantRepo := postgres.NewAccessGrantRepository(pool)
	membershipRepo := postgres.NewProjectMembershipRepository(pool)
	planRepo := postgres.NewSubscriptionPlanRepository(pool)
	subRepo := postgres.NewSubscriptionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	c.Companies = companyRepo
	c.Plans = planRepo

	// Integraciones de registro externo, una por slug de proyecto.
	vendorLog := log.Component("external")
	doctor := external.NewDoctorPlatform(external.Options{
		Timeout:       cfg.Registration.ItemTimeout,
		RatePerSecond: cfg.Registration.RatePerSecond,
		Role:          cfg.Vendors.DoctorPlatformRole,
	}, vendorLog)
	tgc := external.NewTGCalabria(external.TGCalabriaOptions{
		Options: external.Options{
			Timeout:       cfg.Registration.ItemTimeout,
			RatePerSecond: cfg.Registration.RatePerSecond,
			Role:          cfg.Vendors.TGCRole,
		},
		ServiceEmail:    cfg.Vendors.TGCServiceEmail,
		ServicePassword: cfg.Vendors.TGCServicePassword,
	}, vendorLog)

	registrar := access.NewRegistrar(membershipRepo, cipher, c.Observer, access.RegistrarConfig{
		Concurrency: cfg.Registration.Concurrency,
		ItemTimeout: cfg.Registration.ItemTimeout,
		SessionTTL:  cfg.Registration.SessionTTL,
	}, log.Component("registrar"), doctor, tgc)

	c.AccessUC = access.NewAccessUseCase(access.Deps{
		Tx:          txRunner,
		Companies:   companyRepo,
		Projects:    projectRepo,
		Grants:      grantRepo,
		Memberships: membershipRepo,
		Users:       userRepo,
		Cipher:      cipher,
		Registrar:   registrar,
		SessionTTL:  cfg.Registration.SessionTTL,
		Log:         log.Component("access"),
	})

	subDeps := subscription.Deps{
		Tx:            txRunner,
		Plans:         planRepo,
		Subscriptions: subRepo,
		Companies:     companyRepo,
		Gateway:       infrastripe.NewGateway(infrastripe.FromAppConfig(cfg.Stripe)),
		Receipts:      infrapdf.NewMarotoReceiptGenerator(cfg.App.Name),
		Observer:      c.Observer,
		Log:           log.Component("subscription"),
	}
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, err
		}
		c.Redis = rdb
		subDeps.Deduper = infraredis.NewEventDeduper(rdb, 0)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: los webhooks se procesan sin registro de duplicados")
	}
	c.SubscriptionUC = subscription.NewUseCase(subDeps)

	c.AuthUC = auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	c.CompanyUC = usecase.NewCompanyUseCase(companyRepo, userRepo, txRunner, cipher, log.Component("company"))
	c.UserUC = usecase.NewUserUseCase(userRepo, cipher, log.Component("user"))
	c.ProjectUC = usecase.NewProjectUseCase(projectRepo, cipher)

	return c, nil
}

// Close libera conexiones.
func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	c.Pool.Close()
}
