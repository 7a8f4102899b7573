package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// RepuestoFilter filtros de listado de repuestos.
type RepuestoFilter struct {
	Search        string // busca en nombre, descripción, marca, modelo y código de barras (sin acentos)
	Activo        *bool
	SoloStockBajo bool
	Limit         int
	Offset        int
}

// RepuestoRepository define el puerto de persistencia para Repuesto (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el recurso no existe.
type RepuestoRepository interface {
	Create(r *entity.Repuesto) error
	GetByID(id string) (*entity.Repuesto, error)
	// GetByIDForUpdate bloquea la fila del repuesto (SELECT FOR UPDATE);
	// solo tiene sentido dentro de una transacción.
	GetByIDForUpdate(id string) (*entity.Repuesto, error)
	GetByCodigoBarras(codigo string) (*entity.Repuesto, error)
	Update(r *entity.Repuesto) error
	// UpdateStock fija el stock actual. Reservado al motor de movimientos.
	UpdateStock(id string, stock int) error
	List(filter RepuestoFilter) ([]*entity.Repuesto, int, error)
	Delete(id string) error

	// Agregados para el panel de estadísticas.
	CountRepuestos() (total int, activos int, err error)
	CountStockBajo() (int, error)
	ValorInventario() (decimal.Decimal, error)
}
