package external

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

var _ access.ExternalProvider = (*DoctorPlatform)(nil)

const (
	doctorLoginPath    = "/api/auth/login"
	doctorRegisterPath = "/api/auth/register"
)

type doctorCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type doctorRegistration struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	CompanyName     string `json:"companyName"`
}

// DoctorPlatform integración con la plataforma médica: cada usuario se autentica
// con su propio email y contraseña; el registro no requiere token.
type DoctorPlatform struct {
	t    *transport
	role string
	log  zerolog.Logger
}

// NewDoctorPlatform construye el cliente.
func NewDoctorPlatform(opts Options, log zerolog.Logger) *DoctorPlatform {
	if opts.Role == "" {
		opts.Role = "doctor"
	}
	l := log.With().Str("vendor", entity.SlugDoctorPlatform).Logger()
	return &DoctorPlatform{t: newTransport(opts, l), role: opts.Role, log: l}
}

// Slug identifica el proyecto atendido.
func (p *DoctorPlatform) Slug() string { return entity.SlugDoctorPlatform }

// OpenBatch no requiere sesión previa: cada registro inicia sesión con el propio usuario.
func (p *DoctorPlatform) OpenBatch(_ context.Context, target access.Target) (access.ProviderBatch, error) {
	return &doctorBatch{p: p, baseURL: target.Project.BaseURL}, nil
}

// Login autentica al usuario final.
func (p *DoctorPlatform) Login(ctx context.Context, target access.Target, email, password string) (*access.ExternalSession, error) {
	return p.login(ctx, target.Project.BaseURL, email, password)
}

func (p *DoctorPlatform) login(ctx context.Context, baseURL, email, password string) (*access.ExternalSession, error) {
	d, err := p.t.post(ctx, joinURL(baseURL, doctorLoginPath), "", doctorCredentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	s := session(d)
	if s.Token == "" {
		return nil, &access.ExternalError{StatusCode: 401, Message: "el sistema externo no devolvió token"}
	}
	return s, nil
}

type doctorBatch struct {
	p       *DoctorPlatform
	baseURL string
}

// Register: si el login funciona la cuenta ya existe; si no, se registra y se vuelve a iniciar sesión.
func (b *doctorBatch) Register(ctx context.Context, u access.ExternalUser) (*access.ExternalAccount, error) {
	if s, err := b.p.login(ctx, b.baseURL, u.Email, u.Password); err == nil {
		return accountFromSession(s, u.Email, b.p.role), nil
	} else if !isAuthRejection(err) {
		return nil, err
	}

	d, err := b.p.t.postOnce(ctx, joinURL(b.baseURL, doctorRegisterPath), "", doctorRegistration{
		FullName:        u.Name,
		Email:           u.Email,
		Password:        u.Password,
		ConfirmPassword: u.Password,
		Role:            b.p.role,
		CompanyName:     u.CompanyName,
	})
	if err != nil {
		return nil, err
	}
	acc := &access.ExternalAccount{
		ExternalUserID: d.externalID(),
		Username:       u.Email,
		Role:           b.p.role,
	}

	s, err := b.p.login(ctx, b.baseURL, u.Email, u.Password)
	if err != nil {
		b.p.log.Debug().Err(err).Str("user_id", u.UserID).Msg("Registrado sin sesión inicial")
		return acc, nil
	}
	acc.SessionToken = s.Token
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt
		acc.TokenExpiresAt = &exp
	}
	if acc.ExternalUserID == nil {
		acc.ExternalUserID = s.ExternalUserID
	}
	return acc, nil
}

func accountFromSession(s *access.ExternalSession, username, role string) *access.ExternalAccount {
	acc := &access.ExternalAccount{
		ExternalUserID: s.ExternalUserID,
		Username:       username,
		Role:           role,
		SessionToken:   s.Token,
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt
		acc.TokenExpiresAt = &exp
	}
	return acc
}
