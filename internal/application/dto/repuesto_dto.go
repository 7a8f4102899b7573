package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// CreateRepuestoRequest body para POST /api/inventario/repuestos/.
type CreateRepuestoRequest struct {
	Nombre               string           `json:"nombre"`
	Descripcion          string           `json:"descripcion,omitempty"`
	Marca                string           `json:"marca,omitempty"`
	Modelo               string           `json:"modelo,omitempty"`
	CodigoBarras         string           `json:"codigo_barras,omitempty"`
	UnidadMedida         string           `json:"unidad_medida"`
	StockMinimoSeguridad int              `json:"stock_minimo_seguridad"`
	CostoUnitario        *decimal.Decimal `json:"costo_unitario,omitempty"`
}

// UpdateRepuestoRequest body para PUT. Punteros para distinguir omisión.
type UpdateRepuestoRequest struct {
	Nombre               *string          `json:"nombre,omitempty"`
	Descripcion          *string          `json:"descripcion,omitempty"`
	Marca                *string          `json:"marca,omitempty"`
	Modelo               *string          `json:"modelo,omitempty"`
	CodigoBarras         *string          `json:"codigo_barras,omitempty"`
	UnidadMedida         *string          `json:"unidad_medida,omitempty"`
	StockMinimoSeguridad *int             `json:"stock_minimo_seguridad,omitempty"`
	CostoUnitario        *decimal.Decimal `json:"costo_unitario,omitempty"`
	Activo               *bool            `json:"activo,omitempty"`
}

// RepuestoResponse representación pública de un repuesto.
type RepuestoResponse struct {
	ID                   string           `json:"id"`
	Nombre               string           `json:"nombre"`
	Descripcion          string           `json:"descripcion,omitempty"`
	Marca                string           `json:"marca,omitempty"`
	Modelo               string           `json:"modelo,omitempty"`
	CodigoBarras         string           `json:"codigo_barras,omitempty"`
	UnidadMedida         string           `json:"unidad_medida"`
	StockMinimoSeguridad int              `json:"stock_minimo_seguridad"`
	CostoUnitario        *decimal.Decimal `json:"costo_unitario,omitempty"`
	StockActual          int              `json:"stock_actual"`
	NecesitaReposicion   bool             `json:"necesita_reposicion"`
	Activo               bool             `json:"activo"`
	FechaCreacion        time.Time        `json:"fecha_creacion"`
}

// FromRepuesto mapea la entidad a su representación pública.
func FromRepuesto(r *entity.Repuesto) RepuestoResponse {
	return RepuestoResponse{
		ID:                   r.ID,
		Nombre:               r.Nombre,
		Descripcion:          r.Descripcion,
		Marca:                r.Marca,
		Modelo:               r.Modelo,
		CodigoBarras:         r.CodigoBarras,
		UnidadMedida:         r.UnidadMedida,
		StockMinimoSeguridad: r.StockMinimoSeguridad,
		CostoUnitario:        r.CostoUnitario,
		StockActual:          r.StockActual,
		NecesitaReposicion:   r.NecesitaReposicion(),
		Activo:               r.Activo,
		FechaCreacion:        r.FechaCreacion,
	}
}

// RepuestoListResponse listado paginado de repuestos.
type RepuestoListResponse struct {
	Results []RepuestoResponse `json:"results"`
	Page    PageResponse       `json:"pagination"`
}

// EstadisticasRepuestosResponse panel de estadísticas del inventario.
// Parciales nombra las métricas que no pudieron calcularse: un fallo en
// una consulta no bloquea el resto del panel.
type EstadisticasRepuestosResponse struct {
	TotalRepuestos   int             `json:"total_repuestos"`
	RepuestosActivos int             `json:"repuestos_activos"`
	StockBajo        int             `json:"stock_bajo"`
	ValorInventario  decimal.Decimal `json:"valor_inventario"`
	Parciales        []string        `json:"parciales,omitempty"`
}

// AjusteStockRequest body para POST /repuestos/{id}/ajustar_stock/.
type AjusteStockRequest struct {
	TipoAjuste    string `json:"tipo_ajuste"` // POSITIVO | NEGATIVO
	Cantidad      int    `json:"cantidad"`
	Observaciones string `json:"observaciones"`
}

// ValidationItem error tipado de la guardia de eliminación.
type ValidationItem struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ImpactWarning resumen informativo del impacto de una eliminación forzada.
type ImpactWarning struct {
	StockActual          int `json:"stock_actual"`
	TotalMovimientos     int `json:"total_movimientos"`
	MovimientosRecientes int `json:"movimientos_recientes"`
	TotalAlertas         int `json:"total_alertas"`
	AlertasPendientes    int `json:"alertas_pendientes"`
}

// ValidateDeleteResponse resultado de validar la eliminación de un repuesto.
type ValidateDeleteResponse struct {
	CanDelete        bool             `json:"can_delete"`
	UserRole         string           `json:"user_role"`
	ValidationErrors []ValidationItem `json:"validation_errors,omitempty"`
	Warnings         []string         `json:"warnings,omitempty"`
	ImpactWarning    *ImpactWarning   `json:"impact_warning,omitempty"`
}

// DeleteChallengeResponse desafío de confirmación (two-phase commit de
// eliminación): el cliente debe devolver el token junto con el texto
// exacto esperado.
type DeleteChallengeResponse struct {
	Token        string    `json:"token"`
	ExpectedText string    `json:"expected_text"`
	Forced       bool      `json:"forced_deletion"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ConfirmDeleteRequest respuesta al desafío de eliminación.
type ConfirmDeleteRequest struct {
	Token        string `json:"token"`
	Confirmation string `json:"confirmation"`
}

// DeletedItems conteos de lo eliminado en cascada.
type DeletedItems struct {
	StockPerdido int `json:"stock_perdido"`
	Movimientos  int `json:"movimientos"`
	Alertas      int `json:"alertas"`
}

// DeleteResultResponse resultado de una eliminación confirmada.
type DeleteResultResponse struct {
	Message        string        `json:"message"`
	ForcedDeletion bool          `json:"forced_deletion"`
	DeletedItems   *DeletedItems `json:"deleted_items,omitempty"`
}
