package entity

import "time"

// Estados de AccessGrant.
const (
	GrantStatusPending   = "pending"
	GrantStatusActive    = "active"
	GrantStatusSuspended = "suspended"
	GrantStatusRevoked   = "revoked"
)

// ValidGrantStatus informa si s es un estado de acceso conocido.
func ValidGrantStatus(s string) bool {
	switch s {
	case GrantStatusPending, GrantStatusActive, GrantStatusSuspended, GrantStatusRevoked:
		return true
	}
	return false
}

// AccessGrant permiso de una empresa sobre un proyecto. Único por (CompanyID, ProjectID).
// Nunca se borra: revocar es un cambio de estado.
type AccessGrant struct {
	ID                string
	CompanyID         string
	ProjectID         string
	Status            string
	CredentialsCipher string // JSON {api_key, api_secret} cifrado; vacío = sin credenciales propias
	ExternalCompanyID string
	Notes             string
	ApprovedBy        string
	ApprovedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// GrantCredentials credenciales por acceso (texto plano, solo en memoria).
type GrantCredentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}
