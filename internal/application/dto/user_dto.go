package dto

import "time"

// CreateUserRequest alta de usuario dentro de la empresa del administrador.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Validate valida el alta.
func (r CreateUserRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.Email == "" {
		errs.Add("email", "es requerido")
	}
	if len(r.Password) < 8 {
		errs.Add("password", "debe tener al menos 8 caracteres")
	}
	switch r.Role {
	case "", "admin", "agent", "user":
	default:
		errs.Add("role", "debe ser admin, agent o user")
	}
	return errs
}

// UpdateUserStatusRequest activa o desactiva un usuario.
type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

// UserResponse salida de un usuario (sin password ni copia cifrada).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token JWT + usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MeResponse usuario autenticado y estado de su empresa.
type MeResponse struct {
	User    UserResponse     `json:"user"`
	Company *CompanyResponse `json:"company,omitempty"`
}
