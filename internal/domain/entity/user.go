package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "super_admin" // operador de la plataforma, sin empresa obligatoria
	RoleAdmin      = "admin"
	RoleAgent      = "agent"
	RoleUser       = "user"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema (pertenece a una Company, salvo super_admin).
type User struct {
	ID           string
	CompanyID    string // vacío para super_admin
	Email        string
	PasswordHash string // bcrypt
	// PasswordCipher copia cifrada (reversible) de la contraseña; solo existe para
	// reenviarla a los sistemas externos que no ofrecen otro flujo de alta.
	PasswordCipher string
	Name           string
	Role           string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsSuperAdmin informa si el usuario es operador de la plataforma.
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}
