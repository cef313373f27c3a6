package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrCorruptEntry indica un valor guardado que ya no se puede decodificar en
// el tipo pedido, por ejemplo tras cambiar la forma de un read model.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Cache guarda respuestas de consulta serializadas en JSON.
type Cache interface {
	// Get rellena dest (puntero) y devuelve true en un acierto.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set guarda val durante ttlSecs segundos; <= 0 usa el TTL por defecto del adapter.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error
	Delete(ctx context.Context, key string) error
}

func corrupt(key string, err error) error {
	return fmt.Errorf("%w %q: %v", ErrCorruptEntry, key, err)
}
