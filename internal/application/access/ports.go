package access

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// El alta/actualización del acceso y la materialización de membresías son atómicas.
type TxRunner interface {
	RunAccess(ctx context.Context, fn func(
		grants repository.AccessGrantRepository,
		memberships repository.ProjectMembershipRepository,
		users repository.UserRepository,
	) error) error
}

// Target contexto de un lote contra un proyecto externo.
type Target struct {
	Project *entity.Project
	Company *entity.Company
	Grant   *entity.AccessGrant
	// ServiceCredentials credenciales operativas resueltas (acceso > proyecto); nil si no hay.
	ServiceCredentials *entity.GrantCredentials
}

// ExternalUser datos de un usuario local que se envían al sistema externo.
type ExternalUser struct {
	UserID      string
	Name        string
	Email       string
	Password    string
	CompanyName string
}

// ExternalAccount resultado de registrar un usuario en el sistema externo.
type ExternalAccount struct {
	ExternalUserID *string // nil si el proveedor respondió 2xx sin identificador
	Username       string
	Role           string
	SessionToken   string
	TokenExpiresAt *time.Time
}

// ExternalSession sesión de un usuario final en el sistema externo.
type ExternalSession struct {
	Token          string
	ExpiresAt      time.Time
	ExternalUserID *string
}

// ExternalProvider integración con un sistema externo; una implementación por slug.
type ExternalProvider interface {
	Slug() string
	// OpenBatch prepara un lote de registros. La variante de cuenta de servicio inicia
	// sesión aquí una sola vez y reutiliza el token en cada Register.
	OpenBatch(ctx context.Context, target Target) (ProviderBatch, error)
	// Login autentica a un usuario final con sus propias credenciales (SSO).
	Login(ctx context.Context, target Target, email, password string) (*ExternalSession, error)
}

// ProviderBatch registra usuarios dentro de un lote abierto. Debe ser seguro para uso concurrente.
type ProviderBatch interface {
	Register(ctx context.Context, u ExternalUser) (*ExternalAccount, error)
}

// RegistrationObserver recibe el resultado de cada usuario (métricas).
type RegistrationObserver interface {
	ObserveRegistration(projectSlug, outcome string)
}

// ExternalError error devuelto por un sistema externo, ya decodificado.
type ExternalError struct {
	StatusCode int
	Message    string
	Details    map[string][]string
}

func (e *ExternalError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("sistema externo HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "sistema externo: " + e.Message
}
