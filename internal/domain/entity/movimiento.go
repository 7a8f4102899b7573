package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovimientoEntrada              = "ENTRADA"
	MovimientoSalidaUso            = "SALIDA_USO"
	MovimientoSalidaSolicitud      = "SALIDA_SOLICITUD"
	MovimientoAjustePositivo       = "AJUSTE_POSITIVO"
	MovimientoAjusteNegativo       = "AJUSTE_NEGATIVO"
	MovimientoBajaPorDanho         = "BAJA_POR_DANHO"
	MovimientoCompraExternaDirecta = "COMPRA_EXTERNA_USO_DIRECTO"
	MovimientoDevolucion           = "DEVOLUCION"
)

// TiposMovimiento lista cerrada de tipos aceptados.
var TiposMovimiento = []string{
	MovimientoEntrada, MovimientoSalidaUso, MovimientoSalidaSolicitud,
	MovimientoAjustePositivo, MovimientoAjusteNegativo, MovimientoBajaPorDanho,
	MovimientoCompraExternaDirecta, MovimientoDevolucion,
}

// TipoMovimientoValido indica si el tipo pertenece a la taxonomía.
func TipoMovimientoValido(t string) bool {
	for _, v := range TiposMovimiento {
		if v == t {
			return true
		}
	}
	return false
}

// SignoMovimiento devuelve el efecto del tipo sobre el stock:
// +1 incrementa, -1 decrementa, 0 se registra sin tocar stock
// (COMPRA_EXTERNA_USO_DIRECTO: compra de uso directo que no pasa por bodega).
func SignoMovimiento(tipo string) int {
	switch tipo {
	case MovimientoEntrada, MovimientoAjustePositivo, MovimientoDevolucion:
		return 1
	case MovimientoSalidaUso, MovimientoSalidaSolicitud, MovimientoAjusteNegativo, MovimientoBajaPorDanho:
		return -1
	default:
		return 0
	}
}

// EsAjuste indica si el tipo es un ajuste manual (requiere observaciones y autorización).
func EsAjuste(tipo string) bool {
	return tipo == MovimientoAjustePositivo || tipo == MovimientoAjusteNegativo
}

// Movimiento es una entrada inmutable del libro de movimientos de stock.
// StockAnterior y StockPosterior son instantáneas del stock del repuesto
// al momento de registrar; una vez creado el registro no se modifica.
type Movimiento struct {
	ID                   string
	RepuestoID           string
	TipoMovimiento       string
	Cantidad             int // siempre > 0; el signo lo aporta el tipo
	StockAnterior        int
	StockPosterior       int
	FechaMovimiento      time.Time // asignada por el servidor
	RegistradoPor        string    // Usuario.ID
	AutorizadoPor        string    // Usuario.ID; obligatorio en ajustes
	Proveedor            string
	NumeroFactura        string
	NumeroOT             string
	Observaciones        string
	ValorTotalMovimiento *decimal.Decimal
}
