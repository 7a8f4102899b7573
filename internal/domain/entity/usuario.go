package entity

import "time"

// Roles válidos para Usuario. Representación canónica única del rol:
// no existen alias booleanos ni grupos paralelos.
const (
	RoleSuperAdmin        = "SUPER_ADMIN"
	RoleSupervisorGeneral = "SUPERVISOR_GENERAL"
	RoleSupervisor        = "SUPERVISOR"
	RoleEncargadoBodega   = "ENCARGADO_BODEGA"
	RoleTecnico           = "TECNICO"
)

// Roles lista cerrada de roles del sistema.
var Roles = []string{
	RoleSuperAdmin, RoleSupervisorGeneral, RoleSupervisor, RoleEncargadoBodega, RoleTecnico,
}

// RolValido indica si el rol pertenece al catálogo.
func RolValido(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// DescripcionRol devuelve la descripción legible de cada rol del sistema.
func DescripcionRol(role string) string {
	switch role {
	case RoleSuperAdmin:
		return "Acceso completo al sistema. Puede gestionar usuarios, configuración y todas las funcionalidades."
	case RoleSupervisorGeneral:
		return "Supervisa todas las áreas: inventario, reportes y gestión de usuarios (excepto super admins)."
	case RoleSupervisor:
		return "Puede gestionar órdenes de trabajo, inventario, reportes y crear usuarios (excepto super admins)."
	case RoleEncargadoBodega:
		return "Gestiona inventario, repuestos, solicitudes y movimientos de stock."
	case RoleTecnico:
		return "Accede a órdenes de trabajo asignadas, registra servicios y utiliza la aplicación móvil."
	default:
		return "Rol del sistema"
	}
}

// NombreRol devuelve el nombre legible del rol.
func NombreRol(role string) string {
	switch role {
	case RoleSuperAdmin:
		return "Super Administrador"
	case RoleSupervisorGeneral:
		return "Supervisor General"
	case RoleSupervisor:
		return "Supervisor"
	case RoleEncargadoBodega:
		return "Encargado de Bodega"
	case RoleTecnico:
		return "Técnico"
	default:
		return role
	}
}

// Capacidades del sistema. Las rutas y los casos de uso preguntan por
// capacidad, nunca por comparación de strings de rol dispersa.
type Capability string

const (
	CapGestionarUsuarios    Capability = "gestionar_usuarios"
	CapEliminarUsuarios     Capability = "eliminar_usuarios"
	CapGestionarRepuestos   Capability = "gestionar_repuestos"
	CapEliminarRepuestos    Capability = "eliminar_repuestos"
	CapEliminacionForzada   Capability = "eliminacion_forzada"
	CapRegistrarMovimientos Capability = "registrar_movimientos"
	CapVerMovimientos       Capability = "ver_movimientos"
	CapExportarMovimientos  Capability = "exportar_movimientos"
	CapGestionarAlertas     Capability = "gestionar_alertas"
)

// CapabilitiesFor resuelve el conjunto de capacidades de un rol.
// Punto único de decisión de privilegios (se normaliza una vez en el
// borde de sesión; el resto del sistema consulta aquí).
func CapabilitiesFor(role string) map[Capability]bool {
	caps := map[Capability]bool{}
	switch role {
	case RoleSuperAdmin:
		for _, c := range []Capability{
			CapGestionarUsuarios, CapEliminarUsuarios,
			CapGestionarRepuestos, CapEliminarRepuestos, CapEliminacionForzada,
			CapRegistrarMovimientos, CapVerMovimientos, CapExportarMovimientos,
			CapGestionarAlertas,
		} {
			caps[c] = true
		}
	case RoleSupervisorGeneral, RoleSupervisor:
		for _, c := range []Capability{
			CapGestionarUsuarios,
			CapGestionarRepuestos,
			CapRegistrarMovimientos, CapVerMovimientos, CapExportarMovimientos,
			CapGestionarAlertas,
		} {
			caps[c] = true
		}
	case RoleEncargadoBodega:
		for _, c := range []Capability{
			CapGestionarRepuestos, CapEliminarRepuestos,
			CapRegistrarMovimientos, CapVerMovimientos, CapExportarMovimientos,
			CapGestionarAlertas,
		} {
			caps[c] = true
		}
	case RoleTecnico:
		caps[CapVerMovimientos] = true
	}
	return caps
}

// TieneCapacidad indica si el rol posee la capacidad.
func TieneCapacidad(role string, c Capability) bool {
	return CapabilitiesFor(role)[c]
}

// Usuario representa un usuario del sistema.
type Usuario struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Email        string
	FirstName    string
	LastName     string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	DateJoined   time.Time
}

// EsSuperAdmin indica si el usuario tiene el rol de mayor privilegio.
func (u *Usuario) EsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
