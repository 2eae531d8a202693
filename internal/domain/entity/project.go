package entity

import "time"

// Estilos de integración de un proyecto externo.
const (
	IntegrationAPI    = "api"
	IntegrationIframe = "iframe"
	IntegrationHybrid = "hybrid"
)

// Slugs de los sistemas externos con registro automático de usuarios.
const (
	SlugDoctorPlatform = "doctor-platform"
	SlugTGCalabria     = "tg-calabria"
)

// Project describe un sistema externo registrado por los operadores de la plataforma.
type Project struct {
	ID              string
	Slug            string // identificador estable; decide la integración a usar
	Name            string
	IntegrationType string // api, iframe, hybrid
	BaseURL         string
	AuthType        string // bearer, api_key, none
	SSOURL          string
	APIKeyCipher    string // cifrado; vacío si no aplica
	APISecretCipher string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
