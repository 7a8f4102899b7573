package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de negocio expuestos en /metrics.
var (
	movimientosRegistrados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_movimientos_registrados_total",
		Help: "Movimientos de inventario registrados, por tipo.",
	}, []string{"tipo"})

	alertasCerradas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_alertas_cerradas_total",
		Help: "Alertas de stock bajo cerradas, por estado final.",
	}, []string{"estado"})

	repuestosEliminados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_repuestos_eliminados_total",
		Help: "Repuestos eliminados, según si la eliminación fue forzada.",
	}, []string{"forzada"})

	exportacionesExcel = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventario_exportaciones_excel_total",
		Help: "Exportaciones del historial de movimientos a Excel.",
	})
)
