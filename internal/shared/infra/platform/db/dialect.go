package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect abstrae las diferencias de SQL entre Postgres y SQLite que nos afectan.
type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

// ParseDialect acepta el nombre del driver de database/sql.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// DriverName es el nombre registrado en database/sql.
func (d Dialect) DriverName() string {
	return string(d)
}

// Placeholder devuelve el marcador del argumento n (1-based).
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Rebind convierte una consulta escrita con '?' al dialecto.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NumericType es el tipo de columna para importes. SQLite guarda NUMERIC como
// REAL, así que allí los importes van como texto decimal.
func (d Dialect) NumericType() string {
	if d == Postgres {
		return "NUMERIC(20,8)"
	}
	return "TEXT"
}

// ExactArithmetic indica si el motor suma importes sin pasar por coma flotante.
func (d Dialect) ExactArithmetic() bool {
	return d == Postgres
}

// TimestampType es el tipo de columna para instantes.
func (d Dialect) TimestampType() string {
	if d == Postgres {
		return "TIMESTAMP WITH TIME ZONE"
	}
	return "TIMESTAMP"
}

// QuoteIdent escapa un identificador (tabla o columna).
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
