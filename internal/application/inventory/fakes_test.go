package inventory_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria para los tests de casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type memRepuestos struct {
	items map[string]*entity.Repuesto
}

func newMemRepuestos(reps ...*entity.Repuesto) *memRepuestos {
	m := &memRepuestos{items: map[string]*entity.Repuesto{}}
	for _, r := range reps {
		copia := *r
		m.items[r.ID] = &copia
	}
	return m
}

func (m *memRepuestos) Create(r *entity.Repuesto) error {
	copia := *r
	m.items[r.ID] = &copia
	return nil
}

func (m *memRepuestos) GetByID(id string) (*entity.Repuesto, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copia := *r
	return &copia, nil
}

func (m *memRepuestos) GetByIDForUpdate(id string) (*entity.Repuesto, error) {
	return m.GetByID(id)
}

func (m *memRepuestos) GetByCodigoBarras(codigo string) (*entity.Repuesto, error) {
	for _, r := range m.items {
		if r.CodigoBarras == codigo && codigo != "" {
			copia := *r
			return &copia, nil
		}
	}
	return nil, nil
}

func (m *memRepuestos) Update(r *entity.Repuesto) error {
	copia := *r
	m.items[r.ID] = &copia
	return nil
}

func (m *memRepuestos) UpdateStock(id string, stock int) error {
	if r, ok := m.items[id]; ok {
		r.StockActual = stock
	}
	return nil
}

func (m *memRepuestos) List(filter repository.RepuestoFilter) ([]*entity.Repuesto, int, error) {
	var out []*entity.Repuesto
	for _, r := range m.items {
		if filter.Activo != nil && r.Activo != *filter.Activo {
			continue
		}
		if filter.SoloStockBajo && !r.NecesitaReposicion() {
			continue
		}
		copia := *r
		out = append(out, &copia)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, len(out), nil
}

func (m *memRepuestos) Delete(id string) error {
	delete(m.items, id)
	return nil
}

func (m *memRepuestos) CountRepuestos() (int, int, error) {
	activos := 0
	for _, r := range m.items {
		if r.Activo {
			activos++
		}
	}
	return len(m.items), activos, nil
}

func (m *memRepuestos) CountStockBajo() (int, error) {
	n := 0
	for _, r := range m.items {
		if r.Activo && r.NecesitaReposicion() {
			n++
		}
	}
	return n, nil
}

func (m *memRepuestos) ValorInventario() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range m.items {
		if r.Activo && r.CostoUnitario != nil {
			total = total.Add(r.CostoUnitario.Mul(decimal.NewFromInt(int64(r.StockActual))))
		}
	}
	return total, nil
}

type memMovimientos struct {
	items []*entity.Movimiento
}

func newMemMovimientos() *memMovimientos { return &memMovimientos{} }

func (m *memMovimientos) Create(mov *entity.Movimiento) error {
	copia := *mov
	m.items = append(m.items, &copia)
	return nil
}

func (m *memMovimientos) GetByID(id string) (*entity.Movimiento, error) {
	for _, mov := range m.items {
		if mov.ID == id {
			copia := *mov
			return &copia, nil
		}
	}
	return nil, nil
}

func (m *memMovimientos) matches(mov *entity.Movimiento, f repository.MovimientoFilter) bool {
	if f.TipoMovimiento != "" && mov.TipoMovimiento != f.TipoMovimiento {
		return false
	}
	if f.RepuestoID != "" && mov.RepuestoID != f.RepuestoID {
		return false
	}
	if f.RegistradoPor != "" && mov.RegistradoPor != f.RegistradoPor {
		return false
	}
	if f.FechaDesde != nil && mov.FechaMovimiento.Before(*f.FechaDesde) {
		return false
	}
	if f.FechaHasta != nil && mov.FechaMovimiento.After(*f.FechaHasta) {
		return false
	}
	return true
}

func (m *memMovimientos) List(filter repository.MovimientoFilter) ([]*entity.Movimiento, int, error) {
	var out []*entity.Movimiento
	for _, mov := range m.items {
		if m.matches(mov, filter) {
			copia := *mov
			out = append(out, &copia)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaMovimiento.After(out[j].FechaMovimiento) })
	return out, len(out), nil
}

func (m *memMovimientos) CountByRepuesto(repuestoID string) (int, error) {
	n := 0
	for _, mov := range m.items {
		if mov.RepuestoID == repuestoID {
			n++
		}
	}
	return n, nil
}

func (m *memMovimientos) CountByRepuestoSince(repuestoID string, since time.Time) (int, error) {
	n := 0
	for _, mov := range m.items {
		if mov.RepuestoID == repuestoID && !mov.FechaMovimiento.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memMovimientos) Estadisticas(filter repository.MovimientoFilter) (*repository.EstadisticasMovimientos, error) {
	stats := &repository.EstadisticasMovimientos{PorTipo: map[string]int{}, ValorTotal: decimal.Zero}
	for _, mov := range m.items {
		if !m.matches(mov, filter) {
			continue
		}
		stats.Total++
		stats.PorTipo[mov.TipoMovimiento]++
		if mov.ValorTotalMovimiento != nil {
			stats.ValorTotal = stats.ValorTotal.Add(*mov.ValorTotalMovimiento)
		}
		if stats.UltimoRegistro == nil || mov.FechaMovimiento.After(*stats.UltimoRegistro) {
			t := mov.FechaMovimiento
			stats.UltimoRegistro = &t
		}
	}
	return stats, nil
}

func (m *memMovimientos) DeleteByRepuesto(repuestoID string) (int, error) {
	var rest []*entity.Movimiento
	n := 0
	for _, mov := range m.items {
		if mov.RepuestoID == repuestoID {
			n++
			continue
		}
		rest = append(rest, mov)
	}
	m.items = rest
	return n, nil
}

type memAlertas struct {
	items map[string]*entity.Alerta
}

func newMemAlertas() *memAlertas { return &memAlertas{items: map[string]*entity.Alerta{}} }

func (m *memAlertas) Create(a *entity.Alerta) error {
	copia := *a
	m.items[a.ID] = &copia
	return nil
}

func (m *memAlertas) GetByID(id string) (*entity.Alerta, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copia := *a
	return &copia, nil
}

func (m *memAlertas) GetAbiertaPorRepuesto(repuestoID string) (*entity.Alerta, error) {
	for _, a := range m.items {
		if a.RepuestoID == repuestoID && entity.EstadoAlertaAbierto(a.Estado) {
			copia := *a
			return &copia, nil
		}
	}
	return nil, nil
}

func (m *memAlertas) Update(a *entity.Alerta) error {
	copia := *a
	m.items[a.ID] = &copia
	return nil
}

func (m *memAlertas) List(filter repository.AlertaFilter) ([]*entity.Alerta, int, error) {
	var out []*entity.Alerta
	for _, a := range m.items {
		if filter.RepuestoID != "" && a.RepuestoID != filter.RepuestoID {
			continue
		}
		if filter.Estado != "" && a.Estado != filter.Estado {
			continue
		}
		copia := *a
		out = append(out, &copia)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Estado == entity.AlertaPendiente, out[j].Estado == entity.AlertaPendiente
		if pi != pj {
			return pi
		}
		return out[i].FechaCreacion.After(out[j].FechaCreacion)
	})
	return out, len(out), nil
}

func (m *memAlertas) CountByRepuesto(repuestoID string) (int, int, error) {
	total, pendientes := 0, 0
	for _, a := range m.items {
		if a.RepuestoID != repuestoID {
			continue
		}
		total++
		if a.Estado == entity.AlertaPendiente {
			pendientes++
		}
	}
	return total, pendientes, nil
}

func (m *memAlertas) DeleteByRepuesto(repuestoID string) (int, error) {
	n := 0
	for id, a := range m.items {
		if a.RepuestoID == repuestoID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

// memTxRunner ejecuta el callback directamente contra los repos en
// memoria (sin transacción real).
type memTxRunner struct {
	repuestos *memRepuestos
	movs      *memMovimientos
	alertas   *memAlertas
}

func (t *memTxRunner) Run(_ context.Context, fn func(
	repuestoRepo repository.RepuestoRepository,
	movRepo repository.MovimientoRepository,
	alertaRepo repository.AlertaRepository,
) error) error {
	return fn(t.repuestos, t.movs, t.alertas)
}
