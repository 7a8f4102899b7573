package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

var _ repository.RepuestoRepository = (*RepuestoRepo)(nil)

const repuestoColumns = `id, nombre, descripcion, marca, modelo, codigo_barras, unidad_medida,
	stock_minimo_seguridad, costo_unitario, stock_actual, activo, fecha_creacion, fecha_actualizacion`

// RepuestoRepo implementación del puerto RepuestoRepository sobre PostgreSQL (usable con pool o tx).
type RepuestoRepo struct {
	q Querier
}

// NewRepuestoRepository construye el adaptador de persistencia para repuestos. Pasar pool o tx (Querier).
func NewRepuestoRepository(q Querier) *RepuestoRepo {
	return &RepuestoRepo{q: q}
}

// Create persiste un nuevo repuesto. El stock inicial siempre es 0.
func (r *RepuestoRepo) Create(rep *entity.Repuesto) error {
	query := `
		INSERT INTO repuestos (id, nombre, descripcion, marca, modelo, codigo_barras, unidad_medida,
			stock_minimo_seguridad, costo_unitario, stock_actual, activo, fecha_creacion, fecha_actualizacion)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		rep.ID, rep.Nombre, rep.Descripcion, rep.Marca, rep.Modelo, rep.CodigoBarras,
		rep.UnidadMedida, rep.StockMinimoSeguridad, rep.CostoUnitario, rep.StockActual,
		rep.Activo, rep.FechaCreacion, rep.FechaActualizacion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert repuesto: %w", err)
	}
	return nil
}

func (r *RepuestoRepo) scanRepuesto(row pgx.Row) (*entity.Repuesto, error) {
	var rep entity.Repuesto
	var codigoBarras *string
	err := row.Scan(
		&rep.ID, &rep.Nombre, &rep.Descripcion, &rep.Marca, &rep.Modelo, &codigoBarras,
		&rep.UnidadMedida, &rep.StockMinimoSeguridad, &rep.CostoUnitario, &rep.StockActual,
		&rep.Activo, &rep.FechaCreacion, &rep.FechaActualizacion,
	)
	if err != nil {
		return nil, err
	}
	if codigoBarras != nil {
		rep.CodigoBarras = *codigoBarras
	}
	return &rep, nil
}

// GetByID obtiene un repuesto por ID.
func (r *RepuestoRepo) GetByID(id string) (*entity.Repuesto, error) {
	query := `SELECT ` + repuestoColumns + ` FROM repuestos WHERE id = $1`
	rep, err := r.scanRepuesto(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repuesto: %w", err)
	}
	return rep, nil
}

// GetByIDForUpdate obtiene un repuesto bloqueando la fila (FOR UPDATE).
// Solo tiene sentido dentro de una transacción.
func (r *RepuestoRepo) GetByIDForUpdate(id string) (*entity.Repuesto, error) {
	query := `SELECT ` + repuestoColumns + ` FROM repuestos WHERE id = $1 FOR UPDATE`
	rep, err := r.scanRepuesto(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repuesto for update: %w", err)
	}
	return rep, nil
}

// GetByCodigoBarras obtiene un repuesto por código de barras.
func (r *RepuestoRepo) GetByCodigoBarras(codigo string) (*entity.Repuesto, error) {
	query := `SELECT ` + repuestoColumns + ` FROM repuestos WHERE codigo_barras = $1`
	rep, err := r.scanRepuesto(r.q.QueryRow(context.Background(), query, codigo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repuesto by codigo: %w", err)
	}
	return rep, nil
}

// Update actualiza los datos de catálogo del repuesto. El stock no se
// toca aquí: solo lo modifica el motor de movimientos vía UpdateStock.
func (r *RepuestoRepo) Update(rep *entity.Repuesto) error {
	query := `
		UPDATE repuestos SET nombre = $2, descripcion = $3, marca = $4, modelo = $5,
			codigo_barras = NULLIF($6, ''), unidad_medida = $7, stock_minimo_seguridad = $8,
			costo_unitario = $9, activo = $10, fecha_actualizacion = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		rep.ID, rep.Nombre, rep.Descripcion, rep.Marca, rep.Modelo, rep.CodigoBarras,
		rep.UnidadMedida, rep.StockMinimoSeguridad, rep.CostoUnitario, rep.Activo,
		rep.FechaActualizacion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update repuesto: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el stock actual. Reservado al motor de movimientos.
func (r *RepuestoRepo) UpdateStock(id string, stock int) error {
	query := `UPDATE repuestos SET stock_actual = $2, fecha_actualizacion = now() WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, id, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve repuestos paginados con su total según el filtro.
// La búsqueda de texto es insensible a mayúsculas y acentos.
func (r *RepuestoRepo) List(filter repository.RepuestoFilter) ([]*entity.Repuesto, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	n := 0

	if filter.Search != "" {
		n++
		term := "%" + normalizarBusqueda(filter.Search) + "%"
		where += fmt.Sprintf(" AND (%s LIKE $%d OR %s LIKE $%d OR %s LIKE $%d OR %s LIKE $%d OR %s LIKE $%d)",
			sinAcentosSQL("nombre"), n,
			sinAcentosSQL("descripcion"), n,
			sinAcentosSQL("marca"), n,
			sinAcentosSQL("modelo"), n,
			sinAcentosSQL("coalesce(codigo_barras, '')"), n)
		args = append(args, term)
	}
	if filter.Activo != nil {
		n++
		where += fmt.Sprintf(" AND activo = $%d", n)
		args = append(args, *filter.Activo)
	}
	if filter.SoloStockBajo {
		where += " AND stock_actual < stock_minimo_seguridad"
	}

	var total int
	if err := r.q.QueryRow(context.Background(), "SELECT count(*) FROM repuestos "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count repuestos: %w", err)
	}

	query := `SELECT ` + repuestoColumns + ` FROM repuestos ` + where + ` ORDER BY nombre ASC`
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
		return nil, 0, fmt.Errorf("list repuestos: %w", err)
	}
	defer rows.Close()

	var result []*entity.Repuesto
	for rows.Next() {
		rep, err := r.scanRepuesto(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan repuesto: %w", err)
		}
		result = append(result, rep)
	}
	return result, total, rows.Err()
}

// Delete elimina el repuesto. Los movimientos y alertas deben borrarse
// antes, dentro de la misma transacción.
func (r *RepuestoRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM repuestos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete repuesto: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountRepuestos devuelve el total y cuántos están activos.
func (r *RepuestoRepo) CountRepuestos() (int, int, error) {
	var total, activos int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*), count(*) FILTER (WHERE activo) FROM repuestos`).Scan(&total, &activos)
	if err != nil {
		return 0, 0, fmt.Errorf("count repuestos: %w", err)
	}
	return total, activos, nil
}

// CountStockBajo cuenta los repuestos activos con stock bajo el mínimo.
func (r *RepuestoRepo) CountStockBajo() (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM repuestos WHERE activo AND stock_actual < stock_minimo_seguridad`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stock bajo: %w", err)
	}
	return n, nil
}

// ValorInventario suma stock_actual * costo_unitario de los repuestos activos con costo.
func (r *RepuestoRepo) ValorInventario() (decimal.Decimal, error) {
	var valor decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT coalesce(sum(stock_actual * costo_unitario), 0)
		 FROM repuestos WHERE activo AND costo_unitario IS NOT NULL`).Scan(&valor)
	if err != nil {
		return decimal.Zero, fmt.Errorf("valor inventario: %w", err)
	}
	return valor, nil
}
