package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
)

// reportFile es el formato del fichero de objetivos:
//
//	categories: [Electronics]
//	regions: [Asia]
//	targets:
//	  "2025-01":
//	    Electronics:
//	      Asia: 1000
type reportFile struct {
	Categories []string                                 `yaml:"categories"`
	Regions    []string                                 `yaml:"regions"`
	Targets    map[string]map[string]map[string]float64 `yaml:"targets"`
}

// LoadReportConfig lee categorías, regiones y objetivos mensuales del informe de ventas.
func LoadReportConfig(path string) (reportDomain.ReportConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return reportDomain.ReportConfig{}, fmt.Errorf("reading sales targets: %w", err)
	}
	return ParseReportConfig(raw)
}

func ParseReportConfig(raw []byte) (reportDomain.ReportConfig, error) {
	var f reportFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return reportDomain.ReportConfig{}, fmt.Errorf("parsing sales targets: %w", err)
	}

	targets := make(reportDomain.MonthlyTargets, len(f.Targets))
	for period, byCategory := range f.Targets {
		if !validPeriod(period) {
			return reportDomain.ReportConfig{}, fmt.Errorf("invalid target period %q, expected yyyy-MM", period)
		}
		targets[period] = make(map[string]map[string]decimal.Decimal, len(byCategory))
		for category, byRegion := range byCategory {
			targets[period][category] = make(map[string]decimal.Decimal, len(byRegion))
			for region, amount := range byRegion {
				if amount < 0 {
					return reportDomain.ReportConfig{}, fmt.Errorf("negative target for %s/%s/%s", period, category, region)
				}
				targets[period][category][region] = decimal.NewFromFloat(amount)
			}
		}
	}

	return reportDomain.ReportConfig{Categories: f.Categories, Regions: f.Regions, Targets: targets}, nil
}

func validPeriod(p string) bool {
	_, err := time.Parse("2006-01", p)
	return err == nil
}
