package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

const movimientoColumns = `id, repuesto_id, tipo_movimiento, cantidad, stock_anterior, stock_posterior,
	fecha_movimiento, registrado_por, coalesce(autorizado_por, ''), proveedor, numero_factura, numero_ot,
	observaciones, valor_total_movimiento`

// MovimientoRepo implementación del puerto MovimientoRepository sobre PostgreSQL.
// El libro es append-only: no hay UPDATE ni DELETE individual.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador de persistencia para movimientos. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

// Create persiste un movimiento del libro.
func (r *MovimientoRepo) Create(m *entity.Movimiento) error {
	query := `
		INSERT INTO movimientos (id, repuesto_id, tipo_movimiento, cantidad, stock_anterior, stock_posterior,
			fecha_movimiento, registrado_por, autorizado_por, proveedor, numero_factura, numero_ot,
			observaciones, valor_total_movimiento)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.RepuestoID, m.TipoMovimiento, m.Cantidad, m.StockAnterior, m.StockPosterior,
		m.FechaMovimiento, m.RegistradoPor, m.AutorizadoPor, m.Proveedor, m.NumeroFactura,
		m.NumeroOT, m.Observaciones, m.ValorTotalMovimiento,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

func (r *MovimientoRepo) scanMovimiento(row pgx.Row) (*entity.Movimiento, error) {
	var m entity.Movimiento
	err := row.Scan(
		&m.ID, &m.RepuestoID, &m.TipoMovimiento, &m.Cantidad, &m.StockAnterior, &m.StockPosterior,
		&m.FechaMovimiento, &m.RegistradoPor, &m.AutorizadoPor, &m.Proveedor, &m.NumeroFactura,
		&m.NumeroOT, &m.Observaciones, &m.ValorTotalMovimiento,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovimientoRepo) GetByID(id string) (*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumns + ` FROM movimientos WHERE id = $1`
	m, err := r.scanMovimiento(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movimiento: %w", err)
	}
	return m, nil
}

func buildMovimientoWhere(filter repository.MovimientoFilter) (string, []any, int) {
	where := "WHERE 1=1"
	args := []any{}
	n := 0

	if filter.Search != "" {
		n++
		term := "%" + normalizarBusqueda(filter.Search) + "%"
		where += fmt.Sprintf(" AND (%s LIKE $%d OR %s LIKE $%d OR %s LIKE $%d OR %s LIKE $%d)",
			sinAcentosSQL("proveedor"), n,
			sinAcentosSQL("numero_factura"), n,
			sinAcentosSQL("numero_ot"), n,
			sinAcentosSQL("observaciones"), n)
		args = append(args, term)
	}
	if filter.TipoMovimiento != "" {
		n++
		where += fmt.Sprintf(" AND tipo_movimiento = $%d", n)
		args = append(args, filter.TipoMovimiento)
	}
	if filter.RepuestoID != "" {
		n++
		where += fmt.Sprintf(" AND repuesto_id = $%d", n)
		args = append(args, filter.RepuestoID)
	}
	if filter.RegistradoPor != "" {
		n++
		where += fmt.Sprintf(" AND registrado_por = $%d", n)
		args = append(args, filter.RegistradoPor)
	}
	if filter.FechaDesde != nil {
		n++
		where += fmt.Sprintf(" AND fecha_movimiento >= $%d", n)
		args = append(args, *filter.FechaDesde)
	}
	if filter.FechaHasta != nil {
		n++
		where += fmt.Sprintf(" AND fecha_movimiento <= $%d", n)
		args = append(args, *filter.FechaHasta)
	}
	return where, args, n
}

// List devuelve movimientos paginados con su total según el filtro.
// Por defecto ordena del más reciente al más antiguo.
func (r *MovimientoRepo) List(filter repository.MovimientoFilter) ([]*entity.Movimiento, int, error) {
	where, args, n := buildMovimientoWhere(filter)

	var total int
	if err := r.q.QueryRow(context.Background(), "SELECT count(*) FROM movimientos "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movimientos: %w", err)
	}

	order := "ORDER BY fecha_movimiento DESC"
	if filter.Ordering == "fecha_movimiento" {
		order = "ORDER BY fecha_movimiento ASC"
	}

	query := `SELECT ` + movimientoColumns + ` FROM movimientos ` + where + ` ` + order
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()

	var result []*entity.Movimiento
	for rows.Next() {
		m, err := r.scanMovimiento(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movimiento: %w", err)
		}
		result = append(result, m)
	}
	return result, total, rows.Err()
}

// CountByRepuesto cuenta todos los movimientos de un repuesto.
func (r *MovimientoRepo) CountByRepuesto(repuestoID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM movimientos WHERE repuesto_id = $1`, repuestoID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movimientos: %w", err)
	}
	return n, nil
}

// CountByRepuestoSince cuenta los movimientos de un repuesto desde una fecha.
func (r *MovimientoRepo) CountByRepuestoSince(repuestoID string, since time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM movimientos WHERE repuesto_id = $1 AND fecha_movimiento >= $2`,
		repuestoID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movimientos recientes: %w", err)
	}
	return n, nil
}

// Estadisticas calcula agregados del historial para el filtro dado.
func (r *MovimientoRepo) Estadisticas(filter repository.MovimientoFilter) (*repository.EstadisticasMovimientos, error) {
	where, args, _ := buildMovimientoWhere(filter)

	stats := &repository.EstadisticasMovimientos{
		PorTipo:    map[string]int{},
		ValorTotal: decimal.Zero,
	}

	query := `
		SELECT count(*), coalesce(sum(valor_total_movimiento), 0), max(fecha_movimiento)
		FROM movimientos ` + where
	var ultimo *time.Time
	if err := r.q.QueryRow(context.Background(), query, args...).Scan(&stats.Total, &stats.ValorTotal, &ultimo); err != nil {
		return nil, fmt.Errorf("estadisticas movimientos: %w", err)
	}
	stats.UltimoRegistro = ultimo

	rows, err := r.q.Query(context.Background(),
		`SELECT tipo_movimiento, count(*) FROM movimientos `+where+` GROUP BY tipo_movimiento`, args...)
	if err != nil {
		return nil, fmt.Errorf("estadisticas por tipo: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tipo string
		var cnt int
		if err := rows.Scan(&tipo, &cnt); err != nil {
			return nil, fmt.Errorf("scan estadisticas: %w", err)
		}
		stats.PorTipo[tipo] = cnt
	}
	return stats, rows.Err()
}

// DeleteByRepuesto borra todo el historial de un repuesto. Solo lo usa
// la eliminación forzada, dentro de su transacción.
func (r *MovimientoRepo) DeleteByRepuesto(repuestoID string) (int, error) {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM movimientos WHERE repuesto_id = $1`, repuestoID)
	if err != nil {
		return 0, fmt.Errorf("delete movimientos: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
