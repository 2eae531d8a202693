package dto

import "time"

// ProjectRequest alta/edición de un proyecto externo (operador).
type ProjectRequest struct {
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	IntegrationType string `json:"integration_type"`
	BaseURL         string `json:"base_url"`
	AuthType        string `json:"auth_type"`
	SSOURL          string `json:"sso_url"`
	APIKey          string `json:"api_key"`
	APISecret       string `json:"api_secret"`
	IsActive        *bool  `json:"is_active"`
}

// Validate valida el proyecto.
func (r ProjectRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.Slug == "" {
		errs.Add("slug", "es requerido")
	}
	if r.Name == "" {
		errs.Add("name", "es requerido")
	}
	switch r.IntegrationType {
	case "api", "iframe", "hybrid":
	default:
		errs.Add("integration_type", "debe ser api, iframe o hybrid")
	}
	if r.BaseURL == "" {
		errs.Add("base_url", "es requerido")
	}
	return errs
}

// ProjectResponse salida de un proyecto (sin secretos).
type ProjectResponse struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	IntegrationType string    `json:"integration_type"`
	BaseURL         string    `json:"base_url"`
	AuthType        string    `json:"auth_type"`
	SSOURL          string    `json:"sso_url,omitempty"`
	HasCredentials  bool      `json:"has_credentials"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
