package utils

import (
	"context"
	"time"
)

// Retry ejecuta una función con reintentos configurables.
// retryable decide si un error merece otro intento; nil reintenta cualquiera.
func Retry(ctx context.Context, attempts int, delay time.Duration, retryable func(error) bool, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		if !Sleep(ctx, delay) {
			return ctx.Err()
		}
	}
	return err
}

// Sleep espera d o hasta que ctx se cancele. Devuelve false si se canceló.
func Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
