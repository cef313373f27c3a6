package events

import (
	"encoding/json"
	"time"
)

// LinkType es la etiqueta de los registros enlace de los streams de sistema ($ce-, $et-).
const LinkType = "$>"

// Envelope es un registro crudo leído del log de eventos. Inmutable.
type Envelope struct {
	Stream   string
	Position uint64
	Type     string
	Payload  []byte
}

// IsLink indica si el envelope es un enlace sin resolver.
func (e Envelope) IsLink() bool {
	return e.Type == LinkType
}

// IntegrationEvent es el sobre JSON que usan los productores que no
// pueden poner el tipo en cabeceras del broker.
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}
