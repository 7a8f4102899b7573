package repository

import "github.com/tallerpro/repuestos-api/internal/domain/entity"

// AlertaFilter filtros de listado de alertas.
type AlertaFilter struct {
	RepuestoID string
	Estado     string
	Limit      int
	Offset     int
}

// AlertaRepository define el puerto de persistencia para Alerta.
// El listado debe devolver primero las PENDIENTE y dentro de cada grupo
// las más recientes por fecha de creación.
type AlertaRepository interface {
	Create(a *entity.Alerta) error
	GetByID(id string) (*entity.Alerta, error)
	// GetAbiertaPorRepuesto devuelve la alerta abierta (PENDIENTE o
	// NOTIFICADA) del repuesto, o (nil, nil) si no hay.
	GetAbiertaPorRepuesto(repuestoID string) (*entity.Alerta, error)
	Update(a *entity.Alerta) error
	List(filter AlertaFilter) ([]*entity.Alerta, int, error)
	CountByRepuesto(repuestoID string) (total int, pendientes int, err error)
	DeleteByRepuesto(repuestoID string) (int, error)
}
