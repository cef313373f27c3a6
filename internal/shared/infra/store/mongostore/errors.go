package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// classify etiqueta un error del driver como transitorio o permanente.
// Un E11000 dentro de la transacción la aborta entera: se reintenta y en el
// siguiente intento el $setOnInsert ya encuentra el documento.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return sharedDomain.Transient(err)
	}
	return sharedDomain.Permanent(err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || mongo.IsDuplicateKeyError(err) {
		return true
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorLabel("RetryableWriteError")
	}
	return false
}
