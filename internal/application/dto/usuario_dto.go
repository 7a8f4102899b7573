package dto

import (
	"time"

	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// LoginRequest body para POST /api/auth/login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse representación pública de un usuario (sin hash).
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	RoleDisplay string     `json:"role_display"`
	IsActive    bool       `json:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	DateJoined  time.Time  `json:"date_joined"`
}

// FromUsuario mapea la entidad a su representación pública.
func FromUsuario(u *entity.Usuario) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		RoleDisplay: entity.NombreRol(u.Role),
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		DateJoined:  u.DateJoined,
	}
}

// LoginResponse token de sesión más el perfil del usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AdminSetupStatusResponse respuesta del chequeo de bootstrap.
type AdminSetupStatusResponse struct {
	SuperAdminExists bool   `json:"super_admin_exists"`
	Message          string `json:"message"`
}

// CreateAdminRequest body para crear el primer super-administrador.
type CreateAdminRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// SystemStatusResponse estado general del sistema.
type SystemStatusResponse struct {
	SystemInitialized bool `json:"system_initialized"`
	TotalUsers        int  `json:"total_users"`
	SuperAdmins       int  `json:"super_admins"`
}

// CreateUserRequest body para crear un usuario desde la administración.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

// UpdateUserRequest body para actualizar un usuario. Los punteros
// distinguen "no enviado" de "enviado vacío".
type UpdateUserRequest struct {
	Username    *string `json:"username,omitempty"`
	Email       *string `json:"email,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	NewPassword *string `json:"new_password,omitempty"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Page  PageResponse   `json:"pagination"`
}

// RoleDTO rol del sistema con su descripción.
type RoleDTO struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
