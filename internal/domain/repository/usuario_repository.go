package repository

import (
	"time"

	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// UsuarioFilter filtros de listado de usuarios.
type UsuarioFilter struct {
	Search string // username, nombre, apellido o email
	Role   string
	Limit  int
	Offset int
}

// UsuarioRepository define el puerto de persistencia para Usuario (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el usuario no existe.
type UsuarioRepository interface {
	Create(u *entity.Usuario) error
	GetByID(id string) (*entity.Usuario, error)
	GetByUsername(username string) (*entity.Usuario, error)
	GetByEmail(email string) (*entity.Usuario, error)
	Update(u *entity.Usuario) error
	UpdateLastLogin(id string, when time.Time) error
	List(filter UsuarioFilter) ([]*entity.Usuario, int, error)
	Delete(id string) error
	CountSuperAdmins() (int, error)
	CountTotal() (int, error)
}
