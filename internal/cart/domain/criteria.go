package domain

import (
	shared "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// --- Criterios específicos para el read model de carritos ---

// CartIDCriteria busca un carrito por su id.
type CartIDCriteria struct {
	CartID string
}

func (c CartIDCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{{Field: "cart_id", Op: shared.OpEq, Value: c.CartID}}
}

// CustomerIDCriteria busca carritos de un cliente.
type CustomerIDCriteria struct {
	CustomerID string
}

func (c CustomerIDCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{{Field: "customer_id", Op: shared.OpEq, Value: c.CustomerID}}
}

// StatusCriteria busca carritos por estado.
type StatusCriteria struct {
	Status CartStatus
}

func (c StatusCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{{Field: "status", Op: shared.OpEq, Value: string(c.Status)}}
}
