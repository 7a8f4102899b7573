package entity

import "time"

// Estados del ciclo de vida de una alerta de stock bajo.
// Lineal: PENDIENTE → NOTIFICADA → RESUELTA | IGNORADA (terminales).
const (
	AlertaPendiente  = "PENDIENTE"
	AlertaNotificada = "NOTIFICADA"
	AlertaResuelta   = "RESUELTA"
	AlertaIgnorada   = "IGNORADA"
)

// EstadoAlertaTerminal indica si el estado ya no admite transiciones.
func EstadoAlertaTerminal(estado string) bool {
	return estado == AlertaResuelta || estado == AlertaIgnorada
}

// EstadoAlertaAbierto indica si la alerta sigue abierta (PENDIENTE o NOTIFICADA).
func EstadoAlertaAbierto(estado string) bool {
	return estado == AlertaPendiente || estado == AlertaNotificada
}

// Alerta es un aviso de stock bajo derivado de cruzar el mínimo de seguridad.
// StockActual y StockMinimo son instantáneas al momento de la creación.
type Alerta struct {
	ID              string
	RepuestoID      string
	StockActual     int
	StockMinimo     int
	Estado          string
	FechaCreacion   time.Time
	FechaResolucion *time.Time
	ResueltaPor     string // Usuario.ID; se fija al resolver
	Observaciones   string

	// RepuestoNombre y ResueltaPorUsername se denormalizan en los listados (join).
	RepuestoNombre      string
	ResueltaPorUsername string
}
