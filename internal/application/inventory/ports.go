package inventory

import (
	"context"

	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// movimientos: el stock, el registro del libro y la alerta se confirman
// o se revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		repuestoRepo repository.RepuestoRepository,
		movRepo repository.MovimientoRepository,
		alertaRepo repository.AlertaRepository,
	) error) error
}
