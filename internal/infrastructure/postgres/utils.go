package postgres

import (
	"errors"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return strings.Contains(err.Error(), "23503")
}

var quitaAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizarBusqueda baja a minúsculas y elimina diacríticos, para que
// "Dañó" y "dano" coincidan. Las columnas se normalizan del lado SQL
// con translate(); este helper cubre el término de búsqueda.
func normalizarBusqueda(s string) string {
	out, _, err := transform.String(quitaAcentos, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// sinAcentosSQL envuelve una expresión de columna para compararla sin
// acentos (equivalente SQL de normalizarBusqueda).
func sinAcentosSQL(col string) string {
	return "translate(lower(" + col + "), 'áéíóúüñ', 'aeiouun')"
}
