package dto

import (
	"time"

	"github.com/tallerpro/repuestos-api/internal/domain/entity"
)

// AlertaResponse representación pública de una alerta de stock bajo.
type AlertaResponse struct {
	ID                  string     `json:"id"`
	RepuestoID          string     `json:"repuesto_id"`
	RepuestoNombre      string     `json:"repuesto_nombre,omitempty"`
	StockActual         int        `json:"stock_actual"`
	StockMinimo         int        `json:"stock_minimo"`
	Deficit             int        `json:"deficit"`
	Estado              string     `json:"estado"`
	EstadoDisplay       string     `json:"estado_display"`
	FechaCreacion       time.Time  `json:"fecha_creacion"`
	FechaResolucion     *time.Time `json:"fecha_resolucion,omitempty"`
	ResueltaPorUsername string     `json:"resuelta_por_username,omitempty"`
	Observaciones       string     `json:"observaciones,omitempty"`
}

var estadoAlertaDisplay = map[string]string{
	entity.AlertaPendiente:  "Pendiente",
	entity.AlertaNotificada: "Notificada",
	entity.AlertaResuelta:   "Resuelta",
	entity.AlertaIgnorada:   "Ignorada",
}

// FromAlerta mapea la entidad a su representación pública.
func FromAlerta(a *entity.Alerta) AlertaResponse {
	deficit := a.StockMinimo - a.StockActual
	if deficit < 0 {
		deficit = 0
	}
	return AlertaResponse{
		ID:                  a.ID,
		RepuestoID:          a.RepuestoID,
		RepuestoNombre:      a.RepuestoNombre,
		StockActual:         a.StockActual,
		StockMinimo:         a.StockMinimo,
		Deficit:             deficit,
		Estado:              a.Estado,
		EstadoDisplay:       estadoAlertaDisplay[a.Estado],
		FechaCreacion:       a.FechaCreacion,
		FechaResolucion:     a.FechaResolucion,
		ResueltaPorUsername: a.ResueltaPorUsername,
		Observaciones:       a.Observaciones,
	}
}

// AlertaListResponse listado paginado de alertas (pendientes primero).
type AlertaListResponse struct {
	Results []AlertaResponse `json:"results"`
	Page    PageResponse     `json:"pagination"`
}

// ResolverAlertaRequest body para marcar_resuelta / ignorar.
type ResolverAlertaRequest struct {
	Observaciones string `json:"observaciones,omitempty"`
}
