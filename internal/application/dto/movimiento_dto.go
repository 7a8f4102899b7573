package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// RegistrarMovimientoRequest body para POST /api/inventario/movimientos/.
type RegistrarMovimientoRequest struct {
	RepuestoID     string           `json:"repuesto_id"`
	TipoMovimiento string           `json:"tipo_movimiento"`
	Cantidad       int              `json:"cantidad"`
	AutorizadoPor  string           `json:"autorizado_por,omitempty"` // obligatorio en ajustes
	Proveedor      string           `json:"proveedor,omitempty"`
	NumeroFactura  string           `json:"numero_factura,omitempty"`
	NumeroOT       string           `json:"numero_ot,omitempty"`
	Observaciones  string           `json:"observaciones,omitempty"`
	CostoUnitario  *decimal.Decimal `json:"costo_unitario,omitempty"`
}

// EntradaItem una línea de la entrada masiva de repuestos.
type EntradaItem struct {
	RepuestoID    string           `json:"repuesto_id"`
	Cantidad      int              `json:"cantidad"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario,omitempty"`
}

// EntradaRepuestosRequest body para POST /movimientos/entrada_repuestos/.
type EntradaRepuestosRequest struct {
	Items         []EntradaItem `json:"items"`
	Proveedor     string        `json:"proveedor,omitempty"`
	NumeroFactura string        `json:"numero_factura,omitempty"`
	Observaciones string        `json:"observaciones,omitempty"`
}

// MovimientoResponse representación pública de un movimiento del libro.
type MovimientoResponse struct {
	ID                   string           `json:"id"`
	RepuestoID           string           `json:"repuesto_id"`
	TipoMovimiento       string           `json:"tipo_movimiento"`
	Cantidad             int              `json:"cantidad"`
	StockAnterior        int              `json:"stock_anterior"`
	StockPosterior       int              `json:"stock_posterior"`
	FechaMovimiento      time.Time        `json:"fecha_movimiento"`
	RegistradoPor        string           `json:"registrado_por"`
	AutorizadoPor        string           `json:"autorizado_por,omitempty"`
	Proveedor            string           `json:"proveedor,omitempty"`
	NumeroFactura        string           `json:"numero_factura,omitempty"`
	NumeroOT             string           `json:"numero_ot,omitempty"`
	Observaciones        string           `json:"observaciones,omitempty"`
	ValorTotalMovimiento *decimal.Decimal `json:"valor_total_movimiento,omitempty"`
}

// FromMovimiento mapea la entidad a su representación pública.
func FromMovimiento(m *entity.Movimiento) MovimientoResponse {
	return MovimientoResponse{
		ID:                   m.ID,
		RepuestoID:           m.RepuestoID,
		TipoMovimiento:       m.TipoMovimiento,
		Cantidad:             m.Cantidad,
		StockAnterior:        m.StockAnterior,
		StockPosterior:       m.StockPosterior,
		FechaMovimiento:      m.FechaMovimiento,
		RegistradoPor:        m.RegistradoPor,
		AutorizadoPor:        m.AutorizadoPor,
		Proveedor:            m.Proveedor,
		NumeroFactura:        m.NumeroFactura,
		NumeroOT:             m.NumeroOT,
		Observaciones:        m.Observaciones,
		ValorTotalMovimiento: m.ValorTotalMovimiento,
	}
}

// MovimientoListResponse listado paginado de movimientos.
type MovimientoListResponse struct {
	Results []MovimientoResponse `json:"results"`
	Page    PageResponse         `json:"pagination"`
}

// EstadisticasMovimientosResponse agregados del historial.
type EstadisticasMovimientosResponse struct {
	Total          int             `json:"total"`
	PorTipo        map[string]int  `json:"por_tipo"`
	ValorTotal     decimal.Decimal `json:"valor_total"`
	UltimoRegistro *time.Time      `json:"ultimo_registro,omitempty"`
}

// ResumenUsuarioResponse resumen de actividad del usuario autenticado.
type ResumenUsuarioResponse struct {
	Username         string         `json:"username"`
	TotalMovimientos int            `json:"total_movimientos"`
	PorTipo          map[string]int `json:"por_tipo"`
	UltimoRegistro   *time.Time     `json:"ultimo_registro,omitempty"`
}
