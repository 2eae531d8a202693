package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/ports"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Resultados de registro (etiqueta de métricas).
const (
	OutcomeRegistered = "registered"
	OutcomeFailed     = "failed"
)

const (
	msgCredentialUnavailable = "credential unavailable"
	msgNotPersisted          = "registrado en el sistema externo pero no se pudo guardar la membresía"
)

// Member usuario local con su membresía, pendiente de registro externo.
type Member struct {
	User       *entity.User
	Membership *entity.ProjectMembership
}

// RegistrarConfig parámetros del pool de registro.
type RegistrarConfig struct {
	Concurrency int
	ItemTimeout time.Duration
	// SessionTTL vigencia del token obtenido al registrar cuando no trae exp legible.
	SessionTTL time.Duration
}

// Registrar orquesta el registro de usuarios en sistemas externos.
// El transporte de cada proveedor vive en infraestructura; aquí solo la secuencia
// precondición → autenticación → registro → persistencia → agregado.
type Registrar struct {
	providers   map[string]ExternalProvider
	memberships repository.ProjectMembershipRepository
	cipher      ports.SecretCipher
	observer    RegistrationObserver
	cfg         RegistrarConfig
	log         zerolog.Logger
}

// NewRegistrar construye el orquestador. observer puede ser nil.
func NewRegistrar(
	memberships repository.ProjectMembershipRepository,
	cipher ports.SecretCipher,
	observer RegistrationObserver,
	cfg RegistrarConfig,
	log zerolog.Logger,
	providers ...ExternalProvider,
) *Registrar {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 30 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 60 * time.Minute
	}
	m := make(map[string]ExternalProvider, len(providers))
	for _, p := range providers {
		m[p.Slug()] = p
	}
	return &Registrar{
		providers:   m,
		memberships: memberships,
		cipher:      cipher,
		observer:    observer,
		cfg:         cfg,
		log:         log,
	}
}

// Provider devuelve la integración registrada para slug.
func (r *Registrar) Provider(slug string) (ExternalProvider, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.providers[slug]
	return p, ok
}

// Supports informa si existe integración para slug.
func (r *Registrar) Supports(slug string) bool {
	_, ok := r.Provider(slug)
	return ok
}

type outcome struct {
	account *ExternalAccount
	err     error
}

// RegisterUsers registra members en el sistema externo de target.Project.
// Un fallo individual nunca cancela a los demás; el orden del resultado sigue al de entrada.
func (r *Registrar) RegisterUsers(ctx context.Context, target Target, members []Member) *dto.RegistrationResult {
	slug := target.Project.Slug
	log := r.log.With().Str("project", slug).Str("company_id", target.Grant.CompanyID).Logger()

	provider, ok := r.Provider(slug)
	if !ok {
		return r.aggregate(slug, members, failAll(members, fmt.Errorf("%w: %s", errNoProvider, slug)))
	}

	outcomes := make([]outcome, len(members))
	inputs := make([]ExternalUser, len(members))
	pending := make([]int, 0, len(members))
	for i, m := range members {
		password, err := r.recoverPassword(m.User)
		if err != nil {
			log.Warn().Err(err).Str("user_id", m.User.ID).Msg("Credencial del usuario no disponible")
			outcomes[i] = outcome{err: errors.New(msgCredentialUnavailable)}
			continue
		}
		inputs[i] = ExternalUser{
			UserID:      m.User.ID,
			Name:        m.User.Name,
			Email:       m.User.Email,
			Password:    password,
			CompanyName: companyName(target.Company),
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return r.aggregate(slug, members, outcomes)
	}

	batch, err := provider.OpenBatch(ctx, target)
	if err != nil {
		log.Error().Err(err).Msg("No se pudo abrir el lote de registro externo")
		for _, i := range pending {
			outcomes[i] = outcome{err: err}
		}
		return r.aggregate(slug, members, outcomes)
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for _, i := range pending {
		g.Go(func() error {
			outcomes[i] = r.registerOne(ctx, batch, inputs[i], members[i].Membership, log)
			return nil
		})
	}
	_ = g.Wait()

	return r.aggregate(slug, members, outcomes)
}

func (r *Registrar) registerOne(
	ctx context.Context,
	batch ProviderBatch,
	in ExternalUser,
	membership *entity.ProjectMembership,
	log zerolog.Logger,
) (out outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("user_id", in.UserID).Msg("Pánico registrando usuario externo")
			out = outcome{err: fmt.Errorf("error interno: %v", rec)}
		}
	}()

	itemCtx, cancel := context.WithTimeout(ctx, r.cfg.ItemTimeout)
	defer cancel()

	acc, err := batch.Register(itemCtx, in)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("tiempo de espera agotado con el sistema externo: %w", err)
		}
		log.Warn().Err(err).Str("user_id", in.UserID).Msg("Registro externo fallido")
		return outcome{err: err}
	}

	if membership != nil {
		now := time.Now()
		membership.ExternalUserID = acc.ExternalUserID
		if acc.Username != "" {
			membership.ExternalUsername = acc.Username
		}
		if acc.Role != "" {
			membership.ExternalRole = acc.Role
		}
		if acc.SessionToken != "" {
			expires := now.Add(r.cfg.SessionTTL)
			if acc.TokenExpiresAt != nil {
				expires = *acc.TokenExpiresAt
			}
			membership.ExternalSessionToken = acc.SessionToken
			membership.ExternalTokenExpiresAt = &expires
		}
		membership.UpdatedAt = now
		// Persistir con el ctx del lote: el del ítem puede estar casi vencido.
		if err := r.memberships.Update(ctx, membership); err != nil {
			log.Error().Err(err).Str("user_id", in.UserID).Msg("Usuario registrado pero no se pudo guardar la membresía")
			return outcome{account: acc, err: fmt.Errorf("%s: %w", msgNotPersisted, err)}
		}
	}
	return outcome{account: acc}
}

func (r *Registrar) recoverPassword(u *entity.User) (string, error) {
	if u.PasswordCipher == "" {
		return "", errors.New("sin copia de contraseña")
	}
	plain, err := r.cipher.Decrypt(u.PasswordCipher)
	if err != nil {
		return "", err
	}
	if plain == "" {
		return "", errors.New("copia de contraseña vacía")
	}
	return plain, nil
}

func (r *Registrar) aggregate(slug string, members []Member, outcomes []outcome) *dto.RegistrationResult {
	res := &dto.RegistrationResult{
		Total: len(members),
		Results: dto.RegistrationResults{
			Success: []dto.RegisteredUser{},
			Failed:  []dto.FailedUser{},
		},
	}
	for i, m := range members {
		o := outcomes[i]
		if o.err == nil && o.account != nil {
			res.Results.Success = append(res.Results.Success, dto.RegisteredUser{
				UserID:         m.User.ID,
				Name:           m.User.Name,
				Email:          m.User.Email,
				ExternalUserID: o.account.ExternalUserID,
			})
			r.observe(slug, OutcomeRegistered)
			continue
		}
		err := o.err
		if err == nil {
			err = errors.New("sin respuesta del sistema externo")
		}
		failed := dto.FailedUser{
			UserID: m.User.ID,
			Name:   m.User.Name,
			Email:  m.User.Email,
			Error:  err.Error(),
		}
		var extErr *ExternalError
		if errors.As(err, &extErr) {
			failed.Error = extErr.Message
			failed.Details = extErr.Details
		}
		if o.account != nil && o.account.ExternalUserID != nil {
			failed.Details = map[string][]string{"external_user_id": {*o.account.ExternalUserID}}
		}
		res.Results.Failed = append(res.Results.Failed, failed)
		r.observe(slug, OutcomeFailed)
	}

	ok := len(res.Results.Success)
	res.Success = ok > 0
	switch {
	case res.Total == 0:
		res.Message = "No hay usuarios pendientes de registro"
	case ok == res.Total:
		res.Message = fmt.Sprintf("%d usuarios registrados correctamente", ok)
	case ok > 0:
		res.Message = fmt.Sprintf("%d de %d usuarios registrados; revise los fallidos", ok, res.Total)
	default:
		res.Message = "Ningún usuario pudo registrarse en el sistema externo"
	}
	return res
}

func (r *Registrar) observe(slug, outcome string) {
	if r.observer != nil {
		r.observer.ObserveRegistration(slug, outcome)
	}
}

var errNoProvider = errors.New("sin integración para el proyecto")

func failAll(members []Member, err error) []outcome {
	out := make([]outcome, len(members))
	for i := range out {
		out[i] = outcome{err: err}
	}
	return out
}

func companyName(c *entity.Company) string {
	if c == nil {
		return ""
	}
	return c.Name
}
