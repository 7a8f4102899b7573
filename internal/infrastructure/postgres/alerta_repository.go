package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

var _ repository.AlertaRepository = (*AlertaRepo)(nil)

const alertaColumns = `a.id, a.repuesto_id, a.stock_actual, a.stock_minimo, a.estado,
	a.fecha_creacion, a.fecha_resolucion, coalesce(a.resuelta_por, ''), a.observaciones,
	coalesce(r.nombre, ''), coalesce(u.username, '')`

const alertaJoins = `
	FROM alertas a
	LEFT JOIN repuestos r ON r.id = a.repuesto_id
	LEFT JOIN usuarios u ON u.id = a.resuelta_por`

// AlertaRepo implementación del puerto AlertaRepository sobre PostgreSQL.
type AlertaRepo struct {
	q Querier
}

// NewAlertaRepository construye el adaptador de persistencia para alertas. Pasar pool o tx (Querier).
func NewAlertaRepository(q Querier) *AlertaRepo {
	return &AlertaRepo{q: q}
}

// Create persiste una alerta nueva. El índice parcial de la tabla
// garantiza a lo sumo una alerta abierta por repuesto.
func (r *AlertaRepo) Create(a *entity.Alerta) error {
	query := `
		INSERT INTO alertas (id, repuesto_id, stock_actual, stock_minimo, estado,
			fecha_creacion, fecha_resolucion, resuelta_por, observaciones)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.RepuestoID, a.StockActual, a.StockMinimo, a.Estado,
		a.FechaCreacion, a.FechaResolucion, a.ResueltaPor, a.Observaciones,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert alerta: %w", err)
	}
	return nil
}

func (r *AlertaRepo) scanAlerta(row pgx.Row) (*entity.Alerta, error) {
	var a entity.Alerta
	err := row.Scan(
		&a.ID, &a.RepuestoID, &a.StockActual, &a.StockMinimo, &a.Estado,
		&a.FechaCreacion, &a.FechaResolucion, &a.ResueltaPor, &a.Observaciones,
		&a.RepuestoNombre, &a.ResueltaPorUsername,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID obtiene una alerta por ID.
func (r *AlertaRepo) GetByID(id string) (*entity.Alerta, error) {
	query := `SELECT ` + alertaColumns + alertaJoins + ` WHERE a.id = $1`
	a, err := r.scanAlerta(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alerta: %w", err)
	}
	return a, nil
}

// GetAbiertaPorRepuesto devuelve la alerta PENDIENTE o NOTIFICADA del
// repuesto, o (nil, nil) si no hay ninguna abierta.
func (r *AlertaRepo) GetAbiertaPorRepuesto(repuestoID string) (*entity.Alerta, error) {
	query := `SELECT ` + alertaColumns + alertaJoins + `
		WHERE a.repuesto_id = $1 AND a.estado IN ('PENDIENTE', 'NOTIFICADA')`
	a, err := r.scanAlerta(r.q.QueryRow(context.Background(), query, repuestoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alerta abierta: %w", err)
	}
	return a, nil
}

// Update actualiza el estado y los campos de resolución de una alerta.
func (r *AlertaRepo) Update(a *entity.Alerta) error {
	query := `
		UPDATE alertas SET stock_actual = $2, estado = $3, fecha_resolucion = $4,
			resuelta_por = NULLIF($5, ''), observaciones = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		a.ID, a.StockActual, a.Estado, a.FechaResolucion, a.ResueltaPor, a.Observaciones,
	)
	if err != nil {
		return fmt.Errorf("update alerta: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve alertas paginadas: primero las PENDIENTE y dentro de
// cada grupo las más recientes.
func (r *AlertaRepo) List(filter repository.AlertaFilter) ([]*entity.Alerta, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	n := 0

	if filter.RepuestoID != "" {
		n++
		where += fmt.Sprintf(" AND a.repuesto_id = $%d", n)
		args = append(args, filter.RepuestoID)
	}
	if filter.Estado != "" {
		n++
		where += fmt.Sprintf(" AND a.estado = $%d", n)
		args = append(args, filter.Estado)
	}

	var total int
	if err := r.q.QueryRow(context.Background(), "SELECT count(*) FROM alertas a "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alertas: %w", err)
	}

	query := `SELECT ` + alertaColumns + alertaJoins + ` ` + where + `
		ORDER BY (a.estado = 'PENDIENTE') DESC, a.fecha_creacion DESC`
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
		return nil, 0, fmt.Errorf("list alertas: %w", err)
	}
	defer rows.Close()

	var result []*entity.Alerta
	for rows.Next() {
		a, err := r.scanAlerta(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan alerta: %w", err)
		}
		result = append(result, a)
	}
	return result, total, rows.Err()
}

// CountByRepuesto cuenta las alertas totales y pendientes de un repuesto.
func (r *AlertaRepo) CountByRepuesto(repuestoID string) (int, int, error) {
	var total, pendientes int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*), count(*) FILTER (WHERE estado = 'PENDIENTE')
		 FROM alertas WHERE repuesto_id = $1`, repuestoID).Scan(&total, &pendientes)
	if err != nil {
		return 0, 0, fmt.Errorf("count alertas: %w", err)
	}
	return total, pendientes, nil
}

// DeleteByRepuesto borra todas las alertas de un repuesto. Solo lo usa
// la eliminación forzada, dentro de su transacción.
func (r *AlertaRepo) DeleteByRepuesto(repuestoID string) (int, error) {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM alertas WHERE repuesto_id = $1`, repuestoID)
	if err != nil {
		return 0, fmt.Errorf("delete alertas: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
