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

// UserUseCase aplica reglas de negocio para usuarios de una empresa.
type UserUseCase struct {
	repo   repository.UserRepository
	cipher ports.SecretCipher
	log    zerolog.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, cipher ports.SecretCipher, log zerolog.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, cipher: cipher, log: log}
}

// Create da de alta un usuario en la empresa del actor. Guarda el hash y la copia cifrada
// de la contraseña para poder reenviarla a los sistemas externos.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if actor.CompanyID == "" {
		return nil, domain.ErrForbidden
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, sealed, err := sealPassword(uc.cipher, in.Password)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	now := time.Now()
	user := &entity.User{
		ID:             uuid.New().String(),
		CompanyID:      actor.CompanyID,
		Email:          email,
		PasswordHash:   hash,
		PasswordCipher: sealed,
		Name:           name,
		Role:           role,
		Status:         entity.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", actor.CompanyID).Str("user_id", user.ID).Str("actor", actor.UserID).Msg("Usuario creado")
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return entityToUserResponse(user), nil
}

// List usuarios de la empresa del actor.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.UserListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, actor.CompanyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// UpdateStatus activa o desactiva un usuario de la misma empresa. Desactivar no toca membresías.
func (uc *UserUseCase) UpdateStatus(ctx context.Context, actor entity.Actor, id, status string) (*dto.UserResponse, error) {
	if status != entity.UserStatusActive && status != entity.UserStatusInactive {
		return nil, fmt.Errorf("%w: estado de usuario %q", domain.ErrInvalidInput, status)
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || (user.CompanyID != actor.CompanyID && !actor.IsSuperAdmin()) {
		return nil, domain.ErrUserNotFound
	}
	if user.ID == actor.UserID && status == entity.UserStatusInactive {
		return nil, fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrConflict)
	}
	user.Status = status
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
