package domain

import (
	"context"
	"errors"
	"sort"
	"time"
)

const (
	ReadModelName = "top-products"
	SourceStream  = "$ce-cart"
)

// Entidades en Redis: un sorted set por hora y un hash de nombres por producto.
const (
	EntityRanking      = "top-10-products"
	EntityProductNames = "product-names"
)

// HourLayout es el formato de la hora de ranking (yyyyMMddHH).
const HourLayout = "2006010215"

// DefaultLimit es el tamaño del ranking publicado.
const DefaultLimit = 10

var ErrInvalidHour = errors.New("invalid hour, expected yyyyMMddHH")

// HourKey devuelve la hora del ranking en el reloj del propio evento.
func HourKey(t time.Time) string {
	return t.Format(HourLayout)
}

// ProductRanking es la cantidad neta añadida de un producto.
type ProductRanking struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int64  `json:"quantity"`
}

// RankingRepository lee los rankings horarios.
type RankingRepository interface {
	// HourRanking devuelve las cantidades de una hora, de mayor a menor.
	HourRanking(ctx context.Context, hour string) ([]ProductRanking, error)
	// ProductNames resuelve nombres por id de producto.
	ProductNames(ctx context.Context, productIDs []string) (map[string]string, error)
}

// Merge suma varios rankings horarios y devuelve los limit primeros.
// Empates por id de producto para que el orden sea estable.
func Merge(limit int, hours ...[]ProductRanking) []ProductRanking {
	totals := make(map[string]int64)
	for _, ranking := range hours {
		for _, p := range ranking {
			totals[p.ProductID] += p.Quantity
		}
	}

	merged := make([]ProductRanking, 0, len(totals))
	for id, qty := range totals {
		merged = append(merged, ProductRanking{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Quantity != merged[j].Quantity {
			return merged[i].Quantity > merged[j].Quantity
		}
		return merged[i].ProductID < merged[j].ProductID
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
