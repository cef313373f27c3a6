package clickhouse

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/ClickHouse/clickhouse-go/v2"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// Códigos de servidor que se resuelven reintentando.
var transientCodes = map[int32]bool{
	159: true, // TIMEOUT_EXCEEDED
	202: true, // TOO_MANY_SIMULTANEOUS_QUERIES
	209: true, // SOCKET_TIMEOUT
	210: true, // NETWORK_ERROR
	241: true, // MEMORY_LIMIT_EXCEEDED
	252: true, // TOO_MANY_PARTS
	425: true, // SYSTEM_ERROR
}

// classify traduce errores del driver a la taxonomía transitorio/permanente.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return sharedDomain.Transient(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return sharedDomain.Transient(err)
	}
	var exception *clickhouse.Exception
	if errors.As(err, &exception) && transientCodes[exception.Code] {
		return sharedDomain.Transient(err)
	}
	return sharedDomain.Permanent(err)
}
