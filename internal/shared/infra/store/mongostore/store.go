package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

const checkpointsCollection = "checkpoints"

// Store aplica mutaciones de read models sobre MongoDB. Cada fila es un
// documento cuyo _id es la clave serializada; los campos de la clave se
// guardan también como campos normales para poder filtrar por ellos.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

var _ sharedDomain.ProjectionStore = (*Store)(nil)

// New comprueba la conexión antes de devolver el store.
func New(ctx context.Context, client *mongo.Client, dbName string, log *zap.Logger) (*Store, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName), log: log}, nil
}

// Collection expone una colección para los repositorios de consulta.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

type checkpointDoc struct {
	ReadModel  string `bson:"_id"`
	Checkpoint int64  `bson:"checkpoint"`
}

// ------------------ Checkpoints ------------------

func (s *Store) GetCheckpoint(ctx context.Context, readModel string) (uint64, bool, error) {
	var doc checkpointDoc
	err := s.db.Collection(checkpointsCollection).FindOne(ctx, bson.M{"_id": readModel}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, classify(err)
	}
	return uint64(doc.Checkpoint), true, nil
}

func (s *Store) UpsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	return classify(s.upsertCheckpoint(ctx, cp))
}

// upsertCheckpoint usa $max para que el checkpoint nunca retroceda.
func (s *Store) upsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	_, err := s.db.Collection(checkpointsCollection).UpdateOne(ctx,
		bson.M{"_id": cp.ReadModel},
		bson.M{"$max": bson.M{"checkpoint": int64(cp.Position)}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ------------------ Unit of work ------------------

func (s *Store) Apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	for _, m := range mutations {
		if err := m.Validate(); err != nil {
			return sharedDomain.Permanent(err)
		}
	}

	session, err := s.client.StartSession()
	if err != nil {
		return classify(err)
	}
	defer session.EndSession(ctx)

	// La transacción asegura que las mutaciones y el checkpoint sean atómicos.
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		for _, m := range mutations {
			if err := s.apply(sessCtx, m); err != nil {
				return nil, fmt.Errorf("%s %s [%s]: %w", m.Kind, m.Entity, m.KeyString(), err)
			}
		}
		if err := s.upsertCheckpoint(sessCtx, cp); err != nil {
			return nil, fmt.Errorf("failed to upsert checkpoint: %w", err)
		}
		return nil, nil
	})
	return classify(err)
}

func (s *Store) apply(ctx context.Context, m sharedDomain.Mutation) error {
	coll := s.db.Collection(m.Entity)
	filter := bson.M{"_id": m.KeyString()}

	switch m.Kind {
	case sharedDomain.MutationUpsertIfAbsent:
		doc := bson.M{}
		for _, f := range m.Key {
			doc[f.Name] = toBSON(f.Value)
		}
		for _, f := range m.Fields {
			doc[f.Name] = toBSON(f.Value)
		}
		_, err := coll.UpdateOne(ctx, filter, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
		return err

	case sharedDomain.MutationFieldSet:
		set := bson.M{}
		for _, f := range m.Fields {
			set[f.Name] = toBSON(f.Value)
		}
		_, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
		return err

	case sharedDomain.MutationIncrement:
		if _, err := coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{m.Field: toBSON(m.Delta)}}); err != nil {
			return err
		}
		if m.Ratio == nil {
			return nil
		}
		_, err := coll.UpdateOne(ctx, filter, ratioPipeline(*m.Ratio))
		return err

	case sharedDomain.MutationDeleteIfZero:
		_, err := coll.DeleteOne(ctx, bson.M{"_id": m.KeyString(), m.Field: 0})
		return err
	}
	return fmt.Errorf("unknown mutation kind %q", m.Kind)
}

// ratioPipeline recalcula field = numerator / denominator (0 si el denominador es 0).
func ratioPipeline(r sharedDomain.Ratio) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			r.Field: bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$" + r.Denominator, 0}},
				toBSON(decimal.Zero),
				bson.M{"$divide": bson.A{"$" + r.Numerator, "$" + r.Denominator}},
			}},
		}}},
	}
}

// toBSON convierte los tipos del dominio a tipos que el driver sabe codificar.
func toBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case decimal.Decimal:
		d, err := primitive.ParseDecimal128(val.String())
		if err != nil {
			return val.String()
		}
		return d
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return toBSON(*val)
	case uuid.UUID:
		return val.String()
	}
	return v
}

// FromBSON convierte un valor leído de Mongo a los tipos del dominio.
func FromBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.Decimal128:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return val.String()
		}
		return d
	case primitive.DateTime:
		return val.Time().UTC()
	}
	return v
}
