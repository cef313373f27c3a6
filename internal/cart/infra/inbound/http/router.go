package http

import "github.com/gin-gonic/gin"

// RegisterCartRoutes registra las rutas HTTP del read model de carritos.
func RegisterCartRoutes(r gin.IRouter, handler *CartHandler) {
	carts := r.Group("/carts")
	{
		carts.GET("", handler.ListCarts)   // Listar carritos con filtros
		carts.GET("/:id", handler.GetCart) // Obtener un carrito con sus líneas
	}
}
