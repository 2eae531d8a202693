package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/ports"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// OnboardingTx ejecuta fn en una transacción: la empresa y su administrador se crean juntos.
type OnboardingTx interface {
	RunOnboarding(ctx context.Context, fn func(
		companies repository.CompanyRepository,
		users repository.UserRepository,
	) error) error
}

// CompanyUseCase alta pública de empresas y su aprobación por el operador.
type CompanyUseCase struct {
	repo   repository.CompanyRepository
	users  repository.UserRepository
	tx     OnboardingTx
	cipher ports.SecretCipher
	log    zerolog.Logger
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, users repository.UserRepository, tx OnboardingTx, cipher ports.SecretCipher, log zerolog.Logger) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, users: users, tx: tx, cipher: cipher, log: log}
}

// Signup crea la empresa en estado pending y su usuario administrador.
// Devuelve domain.ErrDuplicate si el NIT ya existe y domain.ErrEmailAlreadyExists si el email está tomado.
// Si el alta del administrador falla no queda empresa huérfana.
func (uc *CompanyUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.SignupResponse, error) {
	existing, err := uc.repo.GetByTaxID(ctx, strings.TrimSpace(in.TaxID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	email := strings.ToLower(strings.TrimSpace(in.AdminEmail))
	taken, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, sealed, err := sealPassword(uc.cipher, in.AdminPassword)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	company := &entity.Company{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(in.CompanyName),
		TaxID:              strings.TrimSpace(in.TaxID),
		Email:              strings.TrimSpace(in.CompanyEmail),
		Phone:              in.Phone,
		Status:             entity.CompanyStatusPending,
		SubscriptionStatus: entity.SubscriptionStatusNone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if company.Email == "" {
		company.Email = email
	}
	name := strings.TrimSpace(in.AdminName)
	if name == "" {
		name = email
	}
	admin := &entity.User{
		ID:             uuid.New().String(),
		CompanyID:      company.ID,
		Email:          email,
		PasswordHash:   hash,
		PasswordCipher: sealed,
		Name:           name,
		Role:           entity.RoleAdmin,
		Status:         entity.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.tx.RunOnboarding(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		if err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("crear administrador: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", company.ID).Str("tax_id", company.TaxID).Msg("Empresa registrada, pendiente de aprobación")
	return &dto.SignupResponse{Company: *entityToCompanyResponse(company), Admin: *entityToUserResponse(admin)}, nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación; status vacío no filtra.
func (uc *CompanyUseCase) List(ctx context.Context, status string, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Approve habilita a la empresa para contratar una suscripción.
func (uc *CompanyUseCase) Approve(ctx context.Context, actor entity.Actor, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if company.Status != entity.CompanyStatusPending && company.Status != entity.CompanyStatusRejected {
		return nil, fmt.Errorf("%w: la empresa está en estado %s", domain.ErrConflict, company.Status)
	}
	now := time.Now()
	company.Status = entity.CompanyStatusApproved
	company.SubscriptionStatus = entity.SubscriptionStatusApproved
	company.ApprovedBy = actor.UserID
	company.ApprovedAt = &now
	company.UpdatedAt = now
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", id).Str("actor", actor.UserID).Msg("Empresa aprobada")
	return entityToCompanyResponse(company), nil
}

// Reject rechaza el alta de una empresa pendiente.
func (uc *CompanyUseCase) Reject(ctx context.Context, actor entity.Actor, id, reason string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if company.Status != entity.CompanyStatusPending {
		return nil, fmt.Errorf("%w: solo se rechazan empresas pendientes", domain.ErrConflict)
	}
	company.Status = entity.CompanyStatusRejected
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", id).Str("actor", actor.UserID).Str("reason", reason).Msg("Empresa rechazada")
	return entityToCompanyResponse(company), nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:                 c.ID,
		Name:               c.Name,
		TaxID:              c.TaxID,
		Email:              c.Email,
		Phone:              c.Phone,
		Status:             c.Status,
		SubscriptionStatus: c.SubscriptionStatus,
		ApprovedAt:         c.ApprovedAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
