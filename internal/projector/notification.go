package projector

import "time"

// ReadModelUpdatedType es la etiqueta de la notificación en el bus.
const ReadModelUpdatedType = "read-model-updated"

// ReadModelUpdated se publica tras cada unidad de trabajo confirmada.
type ReadModelUpdated struct {
	ReadModel   string    `json:"readModel"`
	Position    uint64    `json:"position"`
	SourceType  string    `json:"sourceEventType"`
	Stream      string    `json:"stream"`
	ProcessedAt time.Time `json:"processedAt"`
}

// PartitionKey mantiene el orden por read model en Kafka.
func (e ReadModelUpdated) PartitionKey() string { return e.ReadModel }

func (e ReadModelUpdated) EventType() string { return ReadModelUpdatedType }
