package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// FilaExportacion fila denormalizada del historial lista para exportar:
// nombres de repuesto y usuarios en lugar de IDs.
type FilaExportacion struct {
	Fecha          time.Time
	Repuesto       string
	TipoMovimiento string
	Cantidad       int
	StockAnterior  int
	StockPosterior int
	RegistradoPor  string
	AutorizadoPor  string
	Proveedor      string
	NumeroFactura  string
	NumeroOT       string
	ValorTotal     *decimal.Decimal
	Observaciones  string
}

// ExportarUseCase arma las filas de exportación del historial.
type ExportarUseCase struct {
	movRepo      repository.MovimientoRepository
	repuestoRepo repository.RepuestoRepository
	userRepo     repository.UsuarioRepository
	limite       int
}

// NewExportarUseCase construye el caso de uso. limite acota cuántas
// filas puede llevar una exportación.
func NewExportarUseCase(movRepo repository.MovimientoRepository, repuestoRepo repository.RepuestoRepository, userRepo repository.UsuarioRepository, limite int) *ExportarUseCase {
	if limite <= 0 {
		limite = 10000
	}
	return &ExportarUseCase{movRepo: movRepo, repuestoRepo: repuestoRepo, userRepo: userRepo, limite: limite}
}

// Filas aplica el filtro (mismos parámetros que el listado) y devuelve
// las filas denormalizadas, acotadas al límite de exportación.
func (uc *ExportarUseCase) Filas(filter repository.MovimientoFilter) ([]FilaExportacion, error) {
	filter.Limit = uc.limite
	filter.Offset = 0

	movs, _, err := uc.movRepo.List(filter)
	if err != nil {
		return nil, err
	}

	nombres := map[string]string{}
	usuarios := map[string]string{}

	filas := make([]FilaExportacion, 0, len(movs))
	for _, m := range movs {
		nombre, ok := nombres[m.RepuestoID]
		if !ok {
			nombre = uc.nombreRepuesto(m.RepuestoID)
			nombres[m.RepuestoID] = nombre
		}
		filas = append(filas, FilaExportacion{
			Fecha:          m.FechaMovimiento,
			Repuesto:       nombre,
			TipoMovimiento: m.TipoMovimiento,
			Cantidad:       m.Cantidad,
			StockAnterior:  m.StockAnterior,
			StockPosterior: m.StockPosterior,
			RegistradoPor:  uc.username(usuarios, m.RegistradoPor),
			AutorizadoPor:  uc.username(usuarios, m.AutorizadoPor),
			Proveedor:      m.Proveedor,
			NumeroFactura:  m.NumeroFactura,
			NumeroOT:       m.NumeroOT,
			ValorTotal:     m.ValorTotalMovimiento,
			Observaciones:  m.Observaciones,
		})
	}
	return filas, nil
}

func (uc *ExportarUseCase) nombreRepuesto(id string) string {
	rep, err := uc.repuestoRepo.GetByID(id)
	if err != nil || rep == nil {
		return id
	}
	return rep.Nombre
}

func (uc *ExportarUseCase) username(cache map[string]string, id string) string {
	if id == "" {
		return ""
	}
	if name, ok := cache[id]; ok {
		return name
	}
	name := id
	if u, err := uc.userRepo.GetByID(id); err == nil && u != nil {
		name = u.Username
	}
	cache[id] = name
	return name
}
