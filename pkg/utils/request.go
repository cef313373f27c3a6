package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt lee un parámetro entero de la query string, con valor por defecto si falta.
func QueryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
