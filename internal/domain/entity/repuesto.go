package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida válidas para un repuesto.
const (
	UnidadUnidades = "unidades"
	UnidadMetros   = "metros"
	UnidadKilos    = "kilos"
	UnidadLitros   = "litros"
	UnidadCajas    = "cajas"
	UnidadPaquetes = "paquetes"
)

// UnidadesMedida lista cerrada de unidades aceptadas.
var UnidadesMedida = []string{
	UnidadUnidades, UnidadMetros, UnidadKilos, UnidadLitros, UnidadCajas, UnidadPaquetes,
}

// UnidadMedidaValida indica si la unidad pertenece al catálogo.
func UnidadMedidaValida(u string) bool {
	for _, v := range UnidadesMedida {
		if v == u {
			return true
		}
	}
	return false
}

// Repuesto representa un repuesto del inventario. StockActual nunca se
// modifica directamente: solo a través de un Movimiento registrado.
type Repuesto struct {
	ID                   string
	Nombre               string
	Descripcion          string
	Marca                string
	Modelo               string
	CodigoBarras         string // opcional; único cuando está presente
	UnidadMedida         string
	StockMinimoSeguridad int
	CostoUnitario        *decimal.Decimal // opcional, >= 0
	StockActual          int
	Activo               bool
	FechaCreacion        time.Time
	FechaActualizacion   time.Time
}

// NecesitaReposicion indica si el stock cayó por debajo del mínimo de seguridad.
func (r *Repuesto) NecesitaReposicion() bool {
	return r.StockActual < r.StockMinimoSeguridad
}
