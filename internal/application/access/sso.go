package access

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// OpenSession devuelve una sesión del sistema externo para el usuario que llama.
// Reutiliza el token guardado en la membresía mientras no haya vencido.
func (uc *AccessUseCase) OpenSession(ctx context.Context, actor entity.Actor, projectID string) (*dto.SSOSessionResponse, error) {
	if actor.CompanyID == "" {
		return nil, domain.ErrForbidden
	}
	company, project, err := uc.loadPair(ctx, actor.CompanyID, projectID)
	if err != nil {
		return nil, err
	}
	grant, err := uc.grants.GetByCompanyAndProject(ctx, actor.CompanyID, projectID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, domain.ErrGrantNotFound
	}
	if grant.Status != entity.GrantStatusActive {
		return nil, domain.ErrGrantInactive
	}
	membership, err := uc.memberships.GetByGrantAndUser(ctx, grant.ID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if membership == nil || membership.Status != entity.MembershipStatusActive {
		return nil, domain.ErrNoMembership
	}

	if membership.HasValidSession(uc.now()) {
		return sessionResponse(project, membership, true)
	}

	provider, ok := uc.registrar.Provider(project.Slug)
	if !ok {
		return nil, domain.ErrNoRegistrar
	}
	user, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if membership.ExternalUserID == nil {
		res := uc.registrar.RegisterUsers(ctx, uc.target(company, project, grant), []Member{{User: user, Membership: membership}})
		if !res.Success {
			msg := res.Message
			if len(res.Results.Failed) > 0 {
				msg = res.Results.Failed[0].Error
			}
			if msg == msgCredentialUnavailable {
				return nil, domain.ErrCredentialUnset
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrExternalAuth, msg)
		}
		if membership.HasValidSession(uc.now()) {
			return sessionResponse(project, membership, false)
		}
	}

	password, err := uc.registrar.recoverPassword(user)
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("Credencial del usuario no disponible para SSO")
		return nil, domain.ErrCredentialUnset
	}
	sess, err := provider.Login(ctx, uc.target(company, project, grant), user.Email, password)
	if err != nil {
		var extErr *ExternalError
		if errors.As(err, &extErr) {
			return nil, fmt.Errorf("%w: %s", domain.ErrExternalAuth, extErr.Message)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalAuth, err)
	}

	expires := sess.ExpiresAt
	if expires.IsZero() {
		expires = uc.now().Add(uc.sessionTTL)
	}
	membership.ExternalSessionToken = sess.Token
	membership.ExternalTokenExpiresAt = &expires
	if membership.ExternalUserID == nil && sess.ExternalUserID != nil {
		membership.ExternalUserID = sess.ExternalUserID
	}
	membership.UpdatedAt = uc.now()
	if err := uc.memberships.Update(ctx, membership); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("user_id", user.ID).Str("project", project.Slug).Msg("Sesión externa renovada")
	return sessionResponse(project, membership, false)
}

func sessionResponse(p *entity.Project, m *entity.ProjectMembership, cached bool) (*dto.SSOSessionResponse, error) {
	redirect, err := redirectURL(p, m.ExternalSessionToken)
	if err != nil {
		return nil, err
	}
	return &dto.SSOSessionResponse{
		ProjectSlug: p.Slug,
		RedirectURL: redirect,
		Token:       m.ExternalSessionToken,
		ExpiresAt:   *m.ExternalTokenExpiresAt,
		Cached:      cached,
	}, nil
}

func redirectURL(p *entity.Project, token string) (string, error) {
	base := p.SSOURL
	if base == "" {
		base = p.BaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: url SSO del proyecto", domain.ErrInvalidInput)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
