package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tallerpro/repuestos-api/internal/domain"
	"github.com/tallerpro/repuestos-api/internal/domain/entity"
	"github.com/tallerpro/repuestos-api/internal/domain/repository"
)

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

const usuarioColumns = `id, username, password_hash, email, first_name, last_name, role,
	is_active, last_login, date_joined`

// UsuarioRepo implementación del puerto UsuarioRepository sobre PostgreSQL.
type UsuarioRepo struct {
	q Querier
}

// NewUsuarioRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUsuarioRepository(q Querier) *UsuarioRepo {
	return &UsuarioRepo{q: q}
}

// Create persiste un usuario nuevo.
func (r *UsuarioRepo) Create(u *entity.Usuario) error {
	query := `
		INSERT INTO usuarios (id, username, password_hash, email, first_name, last_name, role,
			is_active, last_login, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		u.ID, u.Username, u.PasswordHash, u.Email, u.FirstName, u.LastName, u.Role,
		u.IsActive, u.LastLogin, u.DateJoined,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameExists
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

func (r *UsuarioRepo) scanUsuario(row pgx.Row) (*entity.Usuario, error) {
	var u entity.Usuario
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		&u.IsActive, &u.LastLogin, &u.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsuarioRepo) getBy(field, value string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE ` + field + ` = $1`
	u, err := r.scanUsuario(r.q.QueryRow(context.Background(), query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}
	return u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UsuarioRepo) GetByID(id string) (*entity.Usuario, error) {
	return r.getBy("id", id)
}

// GetByUsername obtiene un usuario por nombre de usuario.
func (r *UsuarioRepo) GetByUsername(username string) (*entity.Usuario, error) {
	return r.getBy("username", username)
}

// GetByEmail obtiene un usuario por email.
func (r *UsuarioRepo) GetByEmail(email string) (*entity.Usuario, error) {
	return r.getBy("email", email)
}

// Update actualiza los datos del usuario, incluido su hash de contraseña.
func (r *UsuarioRepo) Update(u *entity.Usuario) error {
	query := `
		UPDATE usuarios SET username = $2, password_hash = $3, email = $4, first_name = $5,
			last_name = $6, role = $7, is_active = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		u.ID, u.Username, u.PasswordHash, u.Email, u.FirstName, u.LastName, u.Role, u.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameExists
		}
		return fmt.Errorf("update usuario: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin registra el último acceso.
func (r *UsuarioRepo) UpdateLastLogin(id string, when time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE usuarios SET last_login = $2 WHERE id = $1`, id, when)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// List devuelve usuarios paginados con su total según el filtro.
func (r *UsuarioRepo) List(filter repository.UsuarioFilter) ([]*entity.Usuario, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	n := 0

	if filter.Search != "" {
		n++
		term := "%" + normalizarBusqueda(filter.Search) + "%"
		where += fmt.Sprintf(" AND (%s LIKE $%d OR %s LIKE $%d OR %s LIKE $%d OR %s LIKE $%d)",
			sinAcentosSQL("username"), n,
			sinAcentosSQL("first_name"), n,
			sinAcentosSQL("last_name"), n,
			sinAcentosSQL("email"), n)
		args = append(args, term)
	}
	if filter.Role != "" {
		n++
		where += fmt.Sprintf(" AND role = $%d", n)
		args = append(args, filter.Role)
	}

	var total int
	if err := r.q.QueryRow(context.Background(), "SELECT count(*) FROM usuarios "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count usuarios: %w", err)
	}

	query := `SELECT ` + usuarioColumns + ` FROM usuarios ` + where + ` ORDER BY date_joined DESC`
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
		return nil, 0, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()

	var result []*entity.Usuario
	for rows.Next() {
		u, err := r.scanUsuario(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan usuario: %w", err)
		}
		result = append(result, u)
	}
	return result, total, rows.Err()
}

// Delete elimina un usuario. Las guardias de negocio viven en el caso
// de uso; las referencias del libro de movimientos las protege la base
// (registrado_por y compañía no tienen ON DELETE).
func (r *UsuarioRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUsuarioReferenciado
		}
		return fmt.Errorf("delete usuario: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CountSuperAdmins cuenta los SUPER_ADMIN registrados.
func (r *UsuarioRepo) CountSuperAdmins() (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM usuarios WHERE role = $1`, entity.RoleSuperAdmin).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count super admins: %w", err)
	}
	return n, nil
}

// CountTotal cuenta todos los usuarios.
func (r *UsuarioRepo) CountTotal() (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM usuarios`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count usuarios: %w", err)
	}
	return n, nil
}
