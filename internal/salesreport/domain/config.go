package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyTargets indexa los objetivos por periodo "yyyy-MM", categoría y región.
type MonthlyTargets map[string]map[string]map[string]decimal.Decimal

// ReportConfig se pasa al Materializer al construirlo.
// Categories/Regions vacías significan "todas".
type ReportConfig struct {
	Categories []string
	Regions    []string
	Targets    MonthlyTargets
}

// PeriodKey formatea un periodo como "yyyy-MM".
func PeriodKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// TargetFor devuelve el objetivo configurado, o 0 si no hay.
func (c ReportConfig) TargetFor(year int, month time.Month, category, region string) decimal.Decimal {
	target, ok := c.Targets[PeriodKey(year, month)][category][region]
	if !ok {
		return decimal.Zero
	}
	return target
}

// Reports indica si (category, region) entra en el informe.
func (c ReportConfig) Reports(category, region string) bool {
	if category == "" || region == "" {
		return false
	}
	if len(c.Categories) > 0 && !slices.Contains(c.Categories, category) {
		return false
	}
	if len(c.Regions) > 0 && !slices.Contains(c.Regions, region) {
		return false
	}
	return true
}
