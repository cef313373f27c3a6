package query

// ---------- Paginación / ordenamiento de los read models ----------

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// Page convierte página (1-based) y tamaño en OffsetPagination, acotando valores fuera de rango.
func Page(page, pageSize int) OffsetPagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return OffsetPagination{Limit: pageSize, Offset: (page - 1) * pageSize}
}

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "created_at", "updated_at", "status"
	Desc  bool
}

// Allowed devuelve el Sort si el campo está en la lista blanca, o el fallback si no.
func (s Sort) Allowed(fallback Sort, fields ...string) Sort {
	for _, f := range fields {
		if s.Field == f {
			return s
		}
	}
	return fallback
}

// Direction es la dirección en SQL.
func (s Sort) Direction() string {
	if s.Desc {
		return "DESC"
	}
	return "ASC"
}
