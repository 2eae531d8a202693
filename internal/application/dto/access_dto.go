package dto

import "time"

// GrantAccessRequest otorga o actualiza el acceso de una empresa a un proyecto.
type GrantAccessRequest struct {
	Status            string             `json:"status"`
	ExternalCompanyID string             `json:"external_company_id"`
	Notes             string             `json:"notes"`
	Credentials       *AccessCredentials `json:"credentials,omitempty"`
}

// AccessCredentials credenciales propias del acceso (se guardan cifradas).
type AccessCredentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// UpdateAccessStatusRequest transición directa de estado.
type UpdateAccessStatusRequest struct {
	Status string `json:"status"`
}

// AccessGrantResponse salida de un acceso.
type AccessGrantResponse struct {
	ID                 string              `json:"id"`
	CompanyID          string              `json:"company_id"`
	ProjectID          string              `json:"project_id"`
	ProjectSlug        string              `json:"project_slug,omitempty"`
	Status             string              `json:"status"`
	ExternalCompanyID  string              `json:"external_company_id,omitempty"`
	HasCredentials     bool                `json:"has_credentials"`
	Notes              string              `json:"notes,omitempty"`
	ApprovedBy         string              `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time          `json:"approved_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Provisioning       *ProvisionStats     `json:"provisioning,omitempty"`
	RegistrationResult *RegistrationResult `json:"registration_result,omitempty"`
}

// ProvisionStats conteos de la materialización de membresías (solo observabilidad).
type ProvisionStats struct {
	Found    int `json:"found"`
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

// RegistrationResult agregado de un lote de registro en un sistema externo.
type RegistrationResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Total   int                 `json:"total"`
	Results RegistrationResults `json:"results"`
}

// RegistrationResults éxitos y fallos por usuario.
type RegistrationResults struct {
	Success []RegisteredUser `json:"success"`
	Failed  []FailedUser     `json:"failed"`
}

// RegisteredUser usuario registrado en el sistema externo.
type RegisteredUser struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	ExternalUserID *string `json:"external_user_id"`
}

// FailedUser usuario cuyo registro falló.
type FailedUser struct {
	UserID  string              `json:"user_id"`
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

// MembershipResponse membresía de un usuario en un acceso.
type MembershipResponse struct {
	ID               string     `json:"id"`
	GrantID          string     `json:"grant_id"`
	UserID           string     `json:"user_id"`
	UserName         string     `json:"user_name,omitempty"`
	UserEmail        string     `json:"user_email,omitempty"`
	ExternalUserID   *string    `json:"external_user_id"`
	ExternalUsername string     `json:"external_username,omitempty"`
	ExternalRole     string     `json:"external_role,omitempty"`
	TokenExpiresAt   *time.Time `json:"token_expires_at,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
}

// SSOSessionResponse datos para redirigir al usuario al sistema externo.
type SSOSessionResponse struct {
	ProjectSlug string    `json:"project_slug"`
	RedirectURL string    `json:"redirect_url"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Cached      bool      `json:"cached"`
}
