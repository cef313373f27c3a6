package bus

import "context"

// Keyer lo implementan los eventos que eligen su clave de partición.
type Keyer interface {
	PartitionKey() string
}

// Typer lo implementan los eventos que exponen su etiqueta de tipo.
type Typer interface {
	EventType() string
}

// La semántica de topic/nombre y formato del payload la decides en los adapters.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}
