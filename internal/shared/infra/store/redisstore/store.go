package redisstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

const checkpointPrefix = "checkpoint:"

// Los scripts se envían completos con EVAL: dentro de MULTI no se puede
// reintentar un EVALSHA que falle por NOSCRIPT.
var (
	// KEYS[1]=hash, ARGV=campo,valor,...
	upsertIfAbsentScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	redis.call('HSET', KEYS[1], unpack(ARGV))
end
return 0`)

	setFieldsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	redis.call('HSET', KEYS[1], unpack(ARGV))
end
return 0`)

	// ARGV[1]=campo, ARGV[2]=delta, ARGV[3..5]=ratio, numerador, denominador (opcionales)
	incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HINCRBYFLOAT', KEYS[1], ARGV[1], ARGV[2])
if ARGV[3] then
	local num = tonumber(redis.call('HGET', KEYS[1], ARGV[4])) or 0
	local den = tonumber(redis.call('HGET', KEYS[1], ARGV[5])) or 0
	local rate = 0
	if den ~= 0 then
		rate = num / den
	end
	redis.call('HSET', KEYS[1], ARGV[3], tostring(rate))
end
return 1`)

	deleteIfZeroHashScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], ARGV[1])
if v and tonumber(v) == 0 then
	return redis.call('DEL', KEYS[1])
end
return 0`)

	deleteIfZeroMemberScript = redis.NewScript(`
local s = redis.call('ZSCORE', KEYS[1], ARGV[1])
if s and tonumber(s) == 0 then
	return redis.call('ZREM', KEYS[1], ARGV[1])
end
return 0`)

	// El checkpoint solo avanza.
	checkpointScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]))
if not cur or cur < tonumber(ARGV[1]) then
	redis.call('SET', KEYS[1], ARGV[1])
	return 1
end
return 0`)
)

// Store aplica mutaciones sobre Redis dentro de un MULTI/EXEC junto con el
// checkpoint. Las entidades declaradas como ranking se guardan como sorted
// sets (el último valor de la clave es el miembro y el campo incrementado su
// puntuación); el resto como hashes.
type Store struct {
	rdb      *redis.Client
	rankings map[string]struct{}
	log      *zap.Logger
}

var _ sharedDomain.ProjectionStore = (*Store)(nil)

func New(rdb *redis.Client, log *zap.Logger, rankings ...string) *Store {
	r := make(map[string]struct{}, len(rankings))
	for _, name := range rankings {
		r[name] = struct{}{}
	}
	return &Store{rdb: rdb, rankings: r, log: log}
}

// Client expone el cliente para los repositorios de consulta.
func (s *Store) Client() *redis.Client { return s.rdb }

// ------------------ Claves ------------------

// HashKey es la clave Redis de una fila hash: "entity:k1:k2".
func HashKey(entity string, key []sharedDomain.Field) string {
	parts := make([]string, 0, len(key)+1)
	parts = append(parts, entity)
	for _, f := range key {
		parts = append(parts, toArg(f.Value))
	}
	return strings.Join(parts, ":")
}

// RankingKey separa la clave de una entidad ranking en sorted set y miembro.
func RankingKey(entity string, key []sharedDomain.Field) (string, string) {
	last := len(key) - 1
	return HashKey(entity, key[:last]), toArg(key[last].Value)
}

func CheckpointKey(readModel string) string {
	return checkpointPrefix + readModel
}

// ------------------ Checkpoints ------------------

func (s *Store) GetCheckpoint(ctx context.Context, readModel string) (uint64, bool, error) {
	pos, err := s.rdb.Get(ctx, CheckpointKey(readModel)).Uint64()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, classify(err)
	}
	return pos, true, nil
}

func (s *Store) UpsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	err := checkpointScript.Eval(ctx, s.rdb, []string{CheckpointKey(cp.ReadModel)}, cp.Position).Err()
	return classify(err)
}

// ------------------ Unit of work ------------------

func (s *Store) Apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	for _, m := range mutations {
		if err := m.Validate(); err != nil {
			return sharedDomain.Permanent(err)
		}
		if _, ok := s.rankings[m.Entity]; ok && m.Kind == sharedDomain.MutationFieldSet {
			return sharedDomain.Permanent(fmt.Errorf("field set not supported on ranking %s", m.Entity))
		}
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range mutations {
			s.queue(ctx, pipe, m)
		}
		checkpointScript.Eval(ctx, pipe, []string{CheckpointKey(cp.ReadModel)}, cp.Position)
		return nil
	})
	if err != nil {
		s.log.Warn("Redis transaction failed", zap.String("read_model", cp.ReadModel), zap.Error(err))
	}
	return classify(err)
}

func (s *Store) queue(ctx context.Context, pipe redis.Pipeliner, m sharedDomain.Mutation) {
	if _, ok := s.rankings[m.Entity]; ok {
		set, member := RankingKey(m.Entity, m.Key)
		switch m.Kind {
		case sharedDomain.MutationUpsertIfAbsent:
			pipe.ZAddNX(ctx, set, &redis.Z{Score: 0, Member: member})
		case sharedDomain.MutationIncrement:
			delta, _ := m.Delta.Float64()
			pipe.ZIncrBy(ctx, set, delta, member)
		case sharedDomain.MutationDeleteIfZero:
			deleteIfZeroMemberScript.Eval(ctx, pipe, []string{set}, member)
		}
		return
	}

	key := HashKey(m.Entity, m.Key)
	switch m.Kind {
	case sharedDomain.MutationUpsertIfAbsent:
		upsertIfAbsentScript.Eval(ctx, pipe, []string{key}, hashArgs(append(append([]sharedDomain.Field{}, m.Key...), m.Fields...))...)
	case sharedDomain.MutationFieldSet:
		setFieldsScript.Eval(ctx, pipe, []string{key}, hashArgs(m.Fields)...)
	case sharedDomain.MutationIncrement:
		args := []interface{}{m.Field, m.Delta.String()}
		if r := m.Ratio; r != nil {
			args = append(args, r.Field, r.Numerator, r.Denominator)
		}
		incrementScript.Eval(ctx, pipe, []string{key}, args...)
	case sharedDomain.MutationDeleteIfZero:
		deleteIfZeroHashScript.Eval(ctx, pipe, []string{key}, m.Field)
	}
}

func hashArgs(fields []sharedDomain.Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Name, toArg(f.Value))
	}
	return args
}

// toArg serializa un valor del dominio como texto. decimal y uuid implementan
// BinaryMarshaler y go-redis los mandaría en binario.
func toArg(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case *decimal.Decimal:
		if val == nil {
			return ""
		}
		return val.String()
	case uuid.UUID:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	}
	return fmt.Sprint(v)
}

// classify etiqueta un error de Redis como transitorio o permanente.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return sharedDomain.Transient(err)
	case errors.Is(err, redis.ErrClosed), errors.As(err, &netErr):
		return sharedDomain.Transient(err)
	case strings.HasPrefix(err.Error(), "LOADING"), strings.HasPrefix(err.Error(), "BUSY"),
		strings.HasPrefix(err.Error(), "TRYAGAIN"), strings.HasPrefix(err.Error(), "CLUSTERDOWN"):
		return sharedDomain.Transient(err)
	}
	return sharedDomain.Permanent(err)
}
