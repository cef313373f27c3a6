package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MutationKind enumera las operaciones que un handler puede pedir sobre un read model.
type MutationKind string

const (
	// MutationUpsertIfAbsent inserta la fila solo si la clave no existe. Un duplicado es éxito.
	MutationUpsertIfAbsent MutationKind = "upsert_if_absent"
	// MutationFieldSet actualiza campos de una fila existente. Sin fila no hace nada.
	MutationFieldSet MutationKind = "field_set"
	// MutationIncrement suma Delta a un campo numérico de una fila existente.
	MutationIncrement MutationKind = "increment"
	// MutationDeleteIfZero borra la fila cuando el campo vale exactamente cero.
	MutationDeleteIfZero MutationKind = "delete_if_zero"
)

// Field es un par columna/valor neutral respecto al almacenamiento.
type Field struct {
	Name  string
	Value interface{}
}

// F construye un Field.
func F(name string, value interface{}) Field {
	return Field{Name: name, Value: value}
}

// Ratio recalcula Field = Numerator / Denominator tras un incremento (0 si el denominador es 0).
type Ratio struct {
	Field       string
	Numerator   string
	Denominator string
}

// Mutation describe un cambio sobre una fila identificada por Entity + Key.
type Mutation struct {
	Kind   MutationKind
	Entity string
	Key    []Field
	Fields []Field
	Field  string
	Delta  decimal.Decimal
	Ratio  *Ratio
}

// UpsertIfAbsent crea la fila con los valores por defecto si no existe.
func UpsertIfAbsent(entity string, key []Field, fields ...Field) Mutation {
	return Mutation{Kind: MutationUpsertIfAbsent, Entity: entity, Key: key, Fields: fields}
}

// SetFields sobrescribe campos de una fila existente.
func SetFields(entity string, key []Field, fields ...Field) Mutation {
	return Mutation{Kind: MutationFieldSet, Entity: entity, Key: key, Fields: fields}
}

// Increment suma delta (puede ser negativo) al campo indicado.
func Increment(entity string, key []Field, field string, delta decimal.Decimal) Mutation {
	return Mutation{Kind: MutationIncrement, Entity: entity, Key: key, Field: field, Delta: delta}
}

// DeleteIfZero borra la fila si field == 0.
func DeleteIfZero(entity string, key []Field, field string) Mutation {
	return Mutation{Kind: MutationDeleteIfZero, Entity: entity, Key: key, Field: field}
}

// WithRatio añade el recálculo de un campo derivado a un incremento.
func (m Mutation) WithRatio(field, numerator, denominator string) Mutation {
	m.Ratio = &Ratio{Field: field, Numerator: numerator, Denominator: denominator}
	return m
}

// KeyString serializa la clave en un identificador estable ("a|b|c").
func (m Mutation) KeyString() string {
	return KeyString(m.Key)
}

// KeyString serializa los valores de una clave separados por '|'.
func KeyString(key []Field) string {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = fmt.Sprint(k.Value)
	}
	return strings.Join(parts, "|")
}

// Validate comprueba que la mutación está bien formada antes de aplicarla.
func (m Mutation) Validate() error {
	if m.Entity == "" {
		return fmt.Errorf("mutation %s: empty entity", m.Kind)
	}
	if len(m.Key) == 0 {
		return fmt.Errorf("mutation %s on %s: empty key", m.Kind, m.Entity)
	}
	switch m.Kind {
	case MutationUpsertIfAbsent, MutationFieldSet:
		if m.Kind == MutationFieldSet && len(m.Fields) == 0 {
			return fmt.Errorf("mutation %s on %s: no fields", m.Kind, m.Entity)
		}
	case MutationIncrement, MutationDeleteIfZero:
		if m.Field == "" {
			return fmt.Errorf("mutation %s on %s: no target field", m.Kind, m.Entity)
		}
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
	return nil
}

// ToDecimal normaliza los valores numéricos que circulan por las mutaciones.
func ToDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, nil
		}
		return *n, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case string:
		return decimal.NewFromString(n)
	case []byte:
		return decimal.NewFromString(string(n))
	default:
		return decimal.Zero, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}

// SafeRatio devuelve num/den, o cero si den es cero.
func SafeRatio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, 8)
}
