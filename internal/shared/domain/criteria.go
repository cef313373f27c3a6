package domain

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq   Operator = "="
	OpGte  Operator = ">="
	OpLte  Operator = "<="
	OpLike Operator = "LIKE"
)

// Criterion describe una condición neutral de filtrado sobre una columna del read model.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// AllOf combina criterios con AND, el único conector que entienden los repositorios de consulta.
type AllOf []Criteria

func (c AllOf) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c {
		if crit == nil {
			continue
		}
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// And crea un AllOf
func And(criterias ...Criteria) AllOf {
	return AllOf(criterias)
}
