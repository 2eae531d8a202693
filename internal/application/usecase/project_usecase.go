package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/ports"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ProjectUseCase catálogo de proyectos externos (operador).
type ProjectUseCase struct {
	repo   repository.ProjectRepository
	cipher ports.SecretCipher
}

// NewProjectUseCase construye el caso de uso.
func NewProjectUseCase(repo repository.ProjectRepository, cipher ports.SecretCipher) *ProjectUseCase {
	return &ProjectUseCase{repo: repo, cipher: cipher}
}

// Create registra un proyecto. El slug es único y en minúsculas.
func (uc *ProjectUseCase) Create(ctx context.Context, in dto.ProjectRequest) (*dto.ProjectResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug %q", domain.ErrInvalidInput, in.Slug)
	}
	existing, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	p := &entity.Project{
		ID:        uuid.New().String(),
		Slug:      slug,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.apply(p, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return entityToProjectResponse(p), nil
}

// Update modifica un proyecto. El slug no cambia; las llaves solo se reemplazan si llegan.
func (uc *ProjectUseCase) Update(ctx context.Context, id string, in dto.ProjectRequest) (*dto.ProjectResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.apply(p, in); err != nil {
		return nil, err
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return entityToProjectResponse(p), nil
}

// GetByID obtiene un proyecto.
func (uc *ProjectUseCase) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return entityToProjectResponse(p), nil
}

// List lista el catálogo.
func (uc *ProjectUseCase) List(ctx context.Context) ([]dto.ProjectResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *entityToProjectResponse(p))
	}
	return out, nil
}

func (uc *ProjectUseCase) apply(p *entity.Project, in dto.ProjectRequest) error {
	p.Name = strings.TrimSpace(in.Name)
	p.IntegrationType = in.IntegrationType
	p.BaseURL = strings.TrimRight(in.BaseURL, "/")
	p.AuthType = in.AuthType
	p.SSOURL = in.SSOURL
	if in.APIKey != "" {
		key, err := uc.cipher.Encrypt(in.APIKey)
		if err != nil {
			return err
		}
		secret, err := uc.cipher.Encrypt(in.APISecret)
		if err != nil {
			return err
		}
		p.APIKeyCipher, p.APISecretCipher = key, secret
	}
	return nil
}

func entityToProjectResponse(p *entity.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:              p.ID,
		Slug:            p.Slug,
		Name:            p.Name,
		IntegrationType: p.IntegrationType,
		BaseURL:         p.BaseURL,
		AuthType:        p.AuthType,
		SSOURL:          p.SSOURL,
		HasCredentials:  p.APIKeyCipher != "",
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
