package projector

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// RunAll arranca un proyector por goroutine y espera a que terminen todos.
// Un proyector detenido no para a los demás; sus errores se devuelven unidos.
func RunAll(ctx context.Context, log *zap.Logger, projectors ...*Projector) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, p := range projectors {
		wg.Add(1)
		go func(p *Projector) {
			defer wg.Done()
			if err := p.Run(ctx); err != nil {
				log.Error("Projector exited with error", zap.String("read_model", p.ReadModel()), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()
	return errors.Join(errs...)
}
