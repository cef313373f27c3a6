package domain

import "context"

// Position es la posición (monótona) de un evento dentro del stream suscrito.
type Position = uint64

// Checkpoint registra la última posición aplicada a un read model.
type Checkpoint struct {
	ReadModel string `json:"readModel" bson:"_id"`
	Position  uint64 `json:"position" bson:"position"`
}

// CheckpointStore persiste un checkpoint por read model.
// Upsert nunca retrocede: una posición menor que la guardada se ignora.
type CheckpointStore interface {
	GetCheckpoint(ctx context.Context, readModel string) (pos Position, found bool, err error)
	UpsertCheckpoint(ctx context.Context, cp Checkpoint) error
}

// UnitOfWork aplica mutaciones y avance de checkpoint de forma atómica:
// o se persisten todas, o ninguna.
type UnitOfWork interface {
	Apply(ctx context.Context, mutations []Mutation, cp Checkpoint) error
}

// ProjectionStore es el almacenamiento completo que necesita un proyector.
type ProjectionStore interface {
	CheckpointStore
	UnitOfWork
}
