package access

import (
	"context"
	"encoding/json"
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

// Deps dependencias del caso de uso de accesos.
type Deps struct {
	Tx          TxRunner
	Companies   repository.CompanyRepository
	Projects    repository.ProjectRepository
	Grants      repository.AccessGrantRepository
	Memberships repository.ProjectMembershipRepository
	Users       repository.UserRepository
	Cipher      ports.SecretCipher
	Registrar   *Registrar
	// SessionTTL vigencia de un token externo cuyo exp no puede leerse.
	SessionTTL time.Duration
	Log        zerolog.Logger
}

// AccessUseCase registro de accesos empresa × proyecto, provisión de membresías,
// registro externo y sesiones SSO.
type AccessUseCase struct {
	tx          TxRunner
	companies   repository.CompanyRepository
	projects    repository.ProjectRepository
	grants      repository.AccessGrantRepository
	memberships repository.ProjectMembershipRepository
	users       repository.UserRepository
	cipher      ports.SecretCipher
	registrar   *Registrar
	provisioner *Provisioner
	sessionTTL  time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewAccessUseCase construye el caso de uso.
func NewAccessUseCase(d Deps) *AccessUseCase {
	ttl := d.SessionTTL
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	return &AccessUseCase{
		tx:          d.Tx,
		companies:   d.Companies,
		projects:    d.Projects,
		grants:      d.Grants,
		memberships: d.Memberships,
		users:       d.Users,
		cipher:      d.Cipher,
		registrar:   d.Registrar,
		provisioner: NewProvisioner(),
		sessionTTL:  ttl,
		log:         d.Log,
		now:         time.Now,
	}
}

// GrantAccess crea o actualiza el acceso de una empresa a un proyecto y provisiona membresías.
// Si el acceso queda activo y el proyecto tiene integración, registra a los usuarios
// pendientes después del commit; un fallo de registro nunca revierte el acceso.
func (uc *AccessUseCase) GrantAccess(ctx context.Context, actor entity.Actor, companyID, projectID string, in dto.GrantAccessRequest) (*dto.AccessGrantResponse, error) {
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = entity.GrantStatusActive
	}
	if !entity.ValidGrantStatus(status) {
		return nil, fmt.Errorf("%w: estado de acceso %q", domain.ErrInvalidInput, status)
	}

	company, project, err := uc.loadPair(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}

	var credCipher string
	if in.Credentials != nil {
		raw, err := json.Marshal(entity.GrantCredentials{APIKey: in.Credentials.APIKey, APISecret: in.Credentials.APISecret})
		if err != nil {
			return nil, err
		}
		if credCipher, err = uc.cipher.Encrypt(string(raw)); err != nil {
			return nil, fmt.Errorf("cifrar credenciales: %w", err)
		}
	}

	var (
		grant *entity.AccessGrant
		stats dto.ProvisionStats
	)
	now := uc.now()
	err = uc.tx.RunAccess(ctx, func(grants repository.AccessGrantRepository, memberships repository.ProjectMembershipRepository, users repository.UserRepository) error {
		existing, err := grants.GetByCompanyAndProject(ctx, companyID, projectID)
		if err != nil {
			return err
		}
		if existing != nil {
			grant = existing
			grant.Status = status
			grant.ExternalCompanyID = in.ExternalCompanyID
			grant.Notes = in.Notes
			if credCipher != "" {
				grant.CredentialsCipher = credCipher
			}
			stampApproval(grant, actor, status, now)
			grant.UpdatedAt = now
			if err := grants.Update(ctx, grant); err != nil {
				return err
			}
		} else {
			grant = &entity.AccessGrant{
				ID:                uuid.New().String(),
				CompanyID:         companyID,
				ProjectID:         projectID,
				Status:            status,
				CredentialsCipher: credCipher,
				ExternalCompanyID: in.ExternalCompanyID,
				Notes:             in.Notes,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			stampApproval(grant, actor, status, now)
			if err := grants.Create(ctx, grant); err != nil {
				return err
			}
		}
		stats, err = uc.provisioner.Provision(ctx, grant, users, memberships)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", companyID).
		Str("project", project.Slug).
		Str("status", grant.Status).
		Int("found", stats.Found).
		Int("created", stats.Created).
		Int("existing", stats.Existing).
		Msg("Acceso a proyecto otorgado")

	out := toGrantResponse(grant, project)
	out.Provisioning = &stats
	if grant.Status == entity.GrantStatusActive && uc.registrar.Supports(project.Slug) {
		res, err := uc.registerPending(ctx, company, project, grant)
		if err != nil {
			uc.log.Error().Err(err).Str("grant_id", grant.ID).Msg("No se pudo preparar el registro externo")
			res = &dto.RegistrationResult{
				Message: err.Error(),
				Results: dto.RegistrationResults{Success: []dto.RegisteredUser{}, Failed: []dto.FailedUser{}},
			}
		}
		out.RegistrationResult = res
	}
	return out, nil
}

// RevokeAccess marca el acceso como revocado. Las membresías no se tocan.
func (uc *AccessUseCase) RevokeAccess(ctx context.Context, actor entity.Actor, companyID, projectID string) (*dto.AccessGrantResponse, error) {
	return uc.UpdateAccessStatus(ctx, actor, companyID, projectID, entity.GrantStatusRevoked)
}

// UpdateAccessStatus cambia solo el estado del acceso.
func (uc *AccessUseCase) UpdateAccessStatus(ctx context.Context, actor entity.Actor, companyID, projectID, status string) (*dto.AccessGrantResponse, error) {
	if !entity.ValidGrantStatus(status) {
		return nil, fmt.Errorf("%w: estado de acceso %q", domain.ErrInvalidInput, status)
	}
	grant, project, err := uc.findGrant(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	grant.Status = status
	stampApproval(grant, actor, status, now)
	grant.UpdatedAt = now
	if err := uc.grants.Update(ctx, grant); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", companyID).
		Str("project", project.Slug).
		Str("status", status).
		Str("actor", actor.UserID).
		Msg("Estado de acceso actualizado")
	return toGrantResponse(grant, project), nil
}

// ListCompanyAccess accesos de una empresa.
func (uc *AccessUseCase) ListCompanyAccess(ctx context.Context, companyID string) ([]dto.AccessGrantResponse, error) {
	grants, err := uc.grants.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccessGrantResponse, 0, len(grants))
	for _, g := range grants {
		project, err := uc.projects.GetByID(ctx, g.ProjectID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toGrantResponse(g, project))
	}
	return out, nil
}

// ListProjectMemberships membresías del acceso empresa × proyecto, con datos del usuario.
func (uc *AccessUseCase) ListProjectMemberships(ctx context.Context, companyID, projectID string) ([]dto.MembershipResponse, error) {
	grant, _, err := uc.findGrant(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}
	list, err := uc.memberships.ListByGrant(ctx, grant.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MembershipResponse, 0, len(list))
	for _, m := range list {
		r := toMembershipResponse(m)
		if u, err := uc.users.GetByID(ctx, m.UserID); err == nil && u != nil {
			r.UserName = u.Name
			r.UserEmail = u.Email
		}
		out = append(out, r)
	}
	return out, nil
}

// Reregister reintenta el registro externo de las membresías sin external_user_id.
func (uc *AccessUseCase) Reregister(ctx context.Context, actor entity.Actor, companyID, projectID string) (*dto.RegistrationResult, error) {
	grant, project, err := uc.findGrant(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}
	if grant.Status != entity.GrantStatusActive {
		return nil, domain.ErrGrantInactive
	}
	if !uc.registrar.Supports(project.Slug) {
		return nil, domain.ErrNoRegistrar
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	uc.log.Info().Str("company_id", companyID).Str("project", project.Slug).Str("actor", actor.UserID).Msg("Reintento de registro externo")
	return uc.registerPending(ctx, company, project, grant)
}

// registerPending ejecuta el registro para membresías activas sin identificador externo
// cuyos usuarios siguen activos.
func (uc *AccessUseCase) registerPending(ctx context.Context, company *entity.Company, project *entity.Project, grant *entity.AccessGrant) (*dto.RegistrationResult, error) {
	list, err := uc.memberships.ListByGrant(ctx, grant.ID)
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(list))
	for _, m := range list {
		if m.Status != entity.MembershipStatusActive || m.ExternalUserID != nil {
			continue
		}
		u, err := uc.users.GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil || u.Status != entity.UserStatusActive {
			continue
		}
		members = append(members, Member{User: u, Membership: m})
	}
	return uc.registrar.RegisterUsers(ctx, uc.target(company, project, grant), members), nil
}

// target arma el contexto del lote y resuelve credenciales operativas:
// primero las del acceso, luego llave/secreto del proyecto.
func (uc *AccessUseCase) target(company *entity.Company, project *entity.Project, grant *entity.AccessGrant) Target {
	t := Target{Project: project, Company: company, Grant: grant}
	if grant.CredentialsCipher != "" {
		raw, err := uc.cipher.Decrypt(grant.CredentialsCipher)
		if err != nil {
			uc.log.Warn().Err(err).Str("grant_id", grant.ID).Msg("No se pudieron descifrar las credenciales del acceso")
		} else {
			var creds entity.GrantCredentials
			if err := json.Unmarshal([]byte(raw), &creds); err != nil {
				uc.log.Warn().Err(err).Str("grant_id", grant.ID).Msg("Credenciales del acceso con formato inválido")
			} else if creds.APIKey != "" {
				t.ServiceCredentials = &creds
				return t
			}
		}
	}
	if project.APIKeyCipher != "" {
		key, errK := uc.cipher.Decrypt(project.APIKeyCipher)
		secret, errS := uc.cipher.Decrypt(project.APISecretCipher)
		if errK != nil || errS != nil {
			uc.log.Warn().Str("project", project.Slug).Msg("No se pudieron descifrar las llaves del proyecto")
			return t
		}
		t.ServiceCredentials = &entity.GrantCredentials{APIKey: key, APISecret: secret}
	}
	return t
}

func (uc *AccessUseCase) loadPair(ctx context.Context, companyID, projectID string) (*entity.Company, *entity.Project, error) {
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, fmt.Errorf("%w: empresa", domain.ErrNotFound)
	}
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, fmt.Errorf("%w: proyecto", domain.ErrNotFound)
	}
	return company, project, nil
}

func (uc *AccessUseCase) findGrant(ctx context.Context, companyID, projectID string) (*entity.AccessGrant, *entity.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, fmt.Errorf("%w: proyecto", domain.ErrNotFound)
	}
	grant, err := uc.grants.GetByCompanyAndProject(ctx, companyID, projectID)
	if err != nil {
		return nil, nil, err
	}
	if grant == nil {
		return nil, nil, domain.ErrGrantNotFound
	}
	return grant, project, nil
}

func stampApproval(g *entity.AccessGrant, actor entity.Actor, status string, now time.Time) {
	if status != entity.GrantStatusActive {
		return
	}
	g.ApprovedBy = actor.UserID
	t := now
	g.ApprovedAt = &t
}

func toGrantResponse(g *entity.AccessGrant, p *entity.Project) *dto.AccessGrantResponse {
	r := &dto.AccessGrantResponse{
		ID:                g.ID,
		CompanyID:         g.CompanyID,
		ProjectID:         g.ProjectID,
		Status:            g.Status,
		ExternalCompanyID: g.ExternalCompanyID,
		HasCredentials:    g.CredentialsCipher != "",
		Notes:             g.Notes,
		ApprovedBy:        g.ApprovedBy,
		ApprovedAt:        g.ApprovedAt,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
	if p != nil {
		r.ProjectSlug = p.Slug
	}
	return r
}

func toMembershipResponse(m *entity.ProjectMembership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:               m.ID,
		GrantID:          m.GrantID,
		UserID:           m.UserID,
		ExternalUserID:   m.ExternalUserID,
		ExternalUsername: m.ExternalUsername,
		ExternalRole:     m.ExternalRole,
		TokenExpiresAt:   m.ExternalTokenExpiresAt,
		Status:           m.Status,
		CreatedAt:        m.CreatedAt,
	}
}
