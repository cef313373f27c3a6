package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const asyncTimeout = 200 * time.Millisecond

// AsyncCacheSet actualiza la caché en background sin bloquear la petición.
// Usa su propio contexto: la petición original puede haber terminado ya.
func AsyncCacheSet(cache Cache, key string, value interface{}, ttl int, log *zap.Logger) {
	if cache == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := cache.Set(ctx, key, value, ttl); err != nil {
			log.Warn("Cache update failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// GetOrLoad implementa cache-aside: devuelve el valor cacheado o llama a load
// y guarda el resultado en background. Un fallo de caché nunca falla la lectura.
func GetOrLoad[T any](ctx context.Context, cache Cache, key string, ttl int, log *zap.Logger, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if cache != nil {
		hit, err := cache.Get(ctx, key, &cached)
		switch {
		case errors.Is(err, ErrCorruptEntry):
			log.Warn("Corrupt cache entry, evicting", zap.String("key", key), zap.Error(err))
			if err := cache.Delete(ctx, key); err != nil {
				log.Warn("Cache eviction failed", zap.String("key", key), zap.Error(err))
			}
		case err != nil:
			log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		case hit:
			return cached, nil
		}
	}

	val, err := load(ctx)
	if err != nil {
		return val, err
	}
	AsyncCacheSet(cache, key, val, ttl, log)
	return val, nil
}
