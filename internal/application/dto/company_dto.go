package dto

import "time"

// SignupRequest solicitud pública de alta de empresa con su usuario administrador.
type SignupRequest struct {
	CompanyName   string `json:"company_name"`
	TaxID         string `json:"tax_id"`
	CompanyEmail  string `json:"company_email"`
	Phone         string `json:"phone"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// Validate valida campos obligatorios.
func (r SignupRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.CompanyName == "" {
		errs.Add("company_name", "es requerido")
	}
	if r.TaxID == "" {
		errs.Add("tax_id", "es requerido")
	}
	if r.AdminEmail == "" {
		errs.Add("admin_email", "es requerido")
	}
	if len(r.AdminPassword) < 8 {
		errs.Add("admin_password", "debe tener al menos 8 caracteres")
	}
	return errs
}

// RejectCompanyRequest motivo opcional del rechazo.
type RejectCompanyRequest struct {
	Reason string `json:"reason"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	TaxID              string     `json:"tax_id"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Status             string     `json:"status"`
	SubscriptionStatus string     `json:"subscription_status"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SignupResponse empresa pendiente + usuario administrador creado.
type SignupResponse struct {
	Company CompanyResponse `json:"company"`
	Admin   UserResponse    `json:"admin"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
