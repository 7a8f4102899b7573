package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// MovimientoFilter filtros de búsqueda del historial de movimientos.
type MovimientoFilter struct {
	Search         string // proveedor, número de factura, número de OT u observaciones
	TipoMovimiento string
	RepuestoID     string
	RegistradoPor  string
	FechaDesde     *time.Time
	FechaHasta     *time.Time
	// Ordering acepta "fecha_movimiento" o "-fecha_movimiento" (descendente, por defecto).
	Ordering string
	Limit    int
	Offset   int
}

// EstadisticasMovimientos agregados del historial para un filtro dado.
type EstadisticasMovimientos struct {
	Total          int
	PorTipo        map[string]int
	ValorTotal     decimal.Decimal
	UltimoRegistro *time.Time
}

// MovimientoRepository define el puerto de persistencia del libro de
// movimientos. El libro es append-only: no existe Update ni Delete
// individual; DeleteByRepuesto existe solo para la eliminación forzada
// en cascada.
type MovimientoRepository interface {
	Create(m *entity.Movimiento) error
	GetByID(id string) (*entity.Movimiento, error)
	List(filter MovimientoFilter) ([]*entity.Movimiento, int, error)
	CountByRepuesto(repuestoID string) (int, error)
	CountByRepuestoSince(repuestoID string, since time.Time) (int, error)
	Estadisticas(filter MovimientoFilter) (*EstadisticasMovimientos, error)
	DeleteByRepuesto(repuestoID string) (int, error)
}
