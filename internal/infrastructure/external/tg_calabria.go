package external

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

var _ access.ExternalProvider = (*TGCalabria)(nil)

const (
	tgcLoginPath = "/api/auth/login"
	tgcUsersPath = "/api/users"
)

type tgcRegistration struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	CompanyName     string `json:"company_name,omitempty"`
}

// TGCalabriaOptions agrega la cuenta de servicio de respaldo.
type TGCalabriaOptions struct {
	Options
	ServiceEmail    string
	ServicePassword string
}

// TGCalabria integración por cuenta de servicio: un login por lote y el token
// bearer se reutiliza en cada alta de usuario.
type TGCalabria struct {
	t        *transport
	role     string
	fallback entity.GrantCredentials
	log      zerolog.Logger
}

// NewTGCalabria construye el cliente.
func NewTGCalabria(opts TGCalabriaOptions, log zerolog.Logger) *TGCalabria {
	if opts.Role == "" {
		opts.Role = "operator"
	}
	l := log.With().Str("vendor", entity.SlugTGCalabria).Logger()
	return &TGCalabria{
		t:        newTransport(opts.Options, l),
		role:     opts.Role,
		fallback: entity.GrantCredentials{APIKey: opts.ServiceEmail, APISecret: opts.ServicePassword},
		log:      l,
	}
}

// Slug identifica el proyecto atendido.
func (p *TGCalabria) Slug() string { return entity.SlugTGCalabria }

// OpenBatch inicia sesión con la cuenta de servicio: credenciales del acceso o del
// proyecto (ya resueltas en target) y, si no hay, las de configuración.
func (p *TGCalabria) OpenBatch(ctx context.Context, target access.Target) (access.ProviderBatch, error) {
	creds := p.fallback
	if target.ServiceCredentials != nil && target.ServiceCredentials.APIKey != "" {
		creds = *target.ServiceCredentials
	}
	if creds.APIKey == "" || creds.APISecret == "" {
		return nil, &access.ExternalError{Message: "credenciales de la cuenta de servicio no configuradas"}
	}
	s, err := p.login(ctx, target.Project.BaseURL, creds.APIKey, creds.APISecret)
	if err != nil {
		return nil, err
	}
	return &tgcBatch{p: p, baseURL: target.Project.BaseURL, token: s.Token}, nil
}

// Login autentica al usuario final con sus propias credenciales.
func (p *TGCalabria) Login(ctx context.Context, target access.Target, email, password string) (*access.ExternalSession, error) {
	return p.login(ctx, target.Project.BaseURL, email, password)
}

func (p *TGCalabria) login(ctx context.Context, baseURL, email, password string) (*access.ExternalSession, error) {
	d, err := p.t.post(ctx, joinURL(baseURL, tgcLoginPath), "", doctorCredentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	s := session(d)
	if s.Token == "" {
		return nil, &access.ExternalError{StatusCode: 401, Message: "el sistema externo no devolvió token"}
	}
	return s, nil
}

type tgcBatch struct {
	p       *TGCalabria
	baseURL string
	token   string
}

// Register da de alta al usuario con el token de la cuenta de servicio. No hay sesión del usuario.
func (b *tgcBatch) Register(ctx context.Context, u access.ExternalUser) (*access.ExternalAccount, error) {
	username := Username(u.Name, u.Email)
	d, err := b.p.t.postOnce(ctx, joinURL(b.baseURL, tgcUsersPath), b.token, tgcRegistration{
		Name:            u.Name,
		Username:        username,
		Email:           u.Email,
		Password:        u.Password,
		ConfirmPassword: u.Password,
		Role:            b.p.role,
		CompanyName:     u.CompanyName,
	})
	if err != nil {
		return nil, err
	}
	if assigned := d.username(); assigned != "" {
		username = assigned
	}
	return &access.ExternalAccount{
		ExternalUserID: d.externalID(),
		Username:       username,
		Role:           b.p.role,
	}, nil
}
