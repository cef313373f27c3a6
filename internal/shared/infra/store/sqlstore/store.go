package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
)

// Store aplica mutaciones de read models y el checkpoint en una única
// transacción de database/sql (Postgres vía pgx o SQLite vía modernc).
type Store struct {
	db      *sql.DB
	dialect sharedDB.Dialect
	log     *zap.Logger
}

var _ sharedDomain.ProjectionStore = (*Store)(nil)

func New(db *sql.DB, dialect sharedDB.Dialect, log *zap.Logger) *Store {
	return &Store{db: db, dialect: dialect, log: log}
}

// DB expone la conexión para los repositorios de consulta.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect devuelve el dialecto configurado.
func (s *Store) Dialect() sharedDB.Dialect { return s.dialect }

// InitCheckpointSchema crea la tabla de checkpoints si no existe.
func (s *Store) InitCheckpointSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			read_model_name TEXT PRIMARY KEY,
			checkpoint      BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create checkpoints table: %w", err)
	}
	return nil
}

// ------------------ Checkpoints ------------------

func (s *Store) GetCheckpoint(ctx context.Context, readModel string) (uint64, bool, error) {
	var pos int64
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT checkpoint FROM checkpoints WHERE read_model_name = ?`), readModel,
	).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, sharedDB.Classify(err)
	}
	return uint64(pos), true, nil
}

func (s *Store) UpsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	_, err := s.db.ExecContext(ctx, s.upsertCheckpointSQL(), cp.ReadModel, int64(cp.Position))
	return sharedDB.Classify(err)
}

// upsertCheckpointSQL nunca hace retroceder un checkpoint.
func (s *Store) upsertCheckpointSQL() string {
	return s.dialect.Rebind(`
		INSERT INTO checkpoints (read_model_name, checkpoint) VALUES (?, ?)
		ON CONFLICT (read_model_name) DO UPDATE SET checkpoint = excluded.checkpoint
		WHERE checkpoints.checkpoint < excluded.checkpoint`)
}

// ------------------ Unit of work ------------------

func (s *Store) Apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	for _, m := range mutations {
		if err := m.Validate(); err != nil {
			return sharedDomain.Permanent(err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sharedDB.Classify(fmt.Errorf("failed to begin tx: %w", err))
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	for i, m := range mutations {
		if err := s.apply(ctx, tx, i, m); err != nil {
			return sharedDB.Classify(fmt.Errorf("%s %s [%s]: %w", m.Kind, m.Entity, m.KeyString(), err))
		}
	}

	if _, err := tx.ExecContext(ctx, s.upsertCheckpointSQL(), cp.ReadModel, int64(cp.Position)); err != nil {
		return sharedDB.Classify(fmt.Errorf("failed to upsert checkpoint: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return sharedDB.Classify(fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

func (s *Store) apply(ctx context.Context, tx *sql.Tx, i int, m sharedDomain.Mutation) error {
	switch m.Kind {
	case sharedDomain.MutationUpsertIfAbsent:
		return s.upsertIfAbsent(ctx, tx, i, m)
	case sharedDomain.MutationFieldSet:
		return s.setFields(ctx, tx, m)
	case sharedDomain.MutationIncrement:
		return s.increment(ctx, tx, m)
	case sharedDomain.MutationDeleteIfZero:
		return s.deleteIfZero(ctx, tx, m)
	}
	return fmt.Errorf("unknown mutation kind %q", m.Kind)
}

// upsertIfAbsent va dentro de un SAVEPOINT: si otra restricción única salta,
// se deshace solo esta sentencia y el duplicado cuenta como éxito.
func (s *Store) upsertIfAbsent(ctx context.Context, tx *sql.Tx, i int, m sharedDomain.Mutation) error {
	cols := make([]string, 0, len(m.Key)+len(m.Fields))
	args := make([]interface{}, 0, len(m.Key)+len(m.Fields))
	keyCols := make([]string, 0, len(m.Key))
	for _, f := range m.Key {
		cols = append(cols, sharedDB.QuoteIdent(f.Name))
		keyCols = append(keyCols, sharedDB.QuoteIdent(f.Name))
		args = append(args, f.Value)
	}
	for _, f := range m.Fields {
		cols = append(cols, sharedDB.QuoteIdent(f.Name))
		args = append(args, f.Value)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	query := s.dialect.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		sharedDB.QuoteIdent(m.Entity), strings.Join(cols, ", "), marks, strings.Join(keyCols, ", "),
	))

	savepoint := fmt.Sprintf("mutation_%d", i)
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if !sharedDB.IsUniqueViolation(err) {
			return err
		}
		s.log.Debug("Duplicate upsert ignored", zap.String("entity", m.Entity), zap.String("key", m.KeyString()))
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return rbErr
		}
	}
	_, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint)
	return err
}

func (s *Store) setFields(ctx context.Context, tx *sql.Tx, m sharedDomain.Mutation) error {
	sets := make([]string, 0, len(m.Fields))
	args := make([]interface{}, 0, len(m.Fields)+len(m.Key))
	for _, f := range m.Fields {
		sets = append(sets, sharedDB.QuoteIdent(f.Name)+" = ?")
		args = append(args, f.Value)
	}
	where, keyArgs := whereKey(m.Key)
	args = append(args, keyArgs...)

	query := s.dialect.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		sharedDB.QuoteIdent(m.Entity), strings.Join(sets, ", "), where))
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// increment hace el UPDATE del campo y, si procede, recalcula el ratio en una
// segunda sentencia para que vea el valor ya incrementado.
func (s *Store) increment(ctx context.Context, tx *sql.Tx, m sharedDomain.Mutation) error {
	if !s.dialect.ExactArithmetic() {
		return s.incrementDecimal(ctx, tx, m)
	}
	field := sharedDB.QuoteIdent(m.Field)
	where, keyArgs := whereKey(m.Key)

	query := s.dialect.Rebind(fmt.Sprintf("UPDATE %s SET %s = %s + CAST(? AS NUMERIC) WHERE %s",
		sharedDB.QuoteIdent(m.Entity), field, field, where))
	args := append([]interface{}{m.Delta.String()}, keyArgs...)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	if r := m.Ratio; r != nil {
		num, den := sharedDB.QuoteIdent(r.Numerator), sharedDB.QuoteIdent(r.Denominator)
		ratio := s.dialect.Rebind(fmt.Sprintf(
			"UPDATE %s SET %s = CASE WHEN %s = 0 THEN 0 ELSE %s * 1.0 / %s END WHERE %s",
			sharedDB.QuoteIdent(m.Entity), sharedDB.QuoteIdent(r.Field), den, num, den, where))
		if _, err := tx.ExecContext(ctx, ratio, keyArgs...); err != nil {
			return err
		}
	}
	return nil
}

// incrementDecimal lee la fila dentro de la tx, suma y recalcula el ratio con
// decimal y escribe el resultado en una sola sentencia.
func (s *Store) incrementDecimal(ctx context.Context, tx *sql.Tx, m sharedDomain.Mutation) error {
	entity := sharedDB.QuoteIdent(m.Entity)
	where, keyArgs := whereKey(m.Key)

	cols := []string{m.Field}
	if r := m.Ratio; r != nil {
		cols = append(cols, r.Numerator, r.Denominator)
	}
	quoted := make([]string, len(cols))
	raw := make([]sql.NullString, len(cols))
	dest := make([]interface{}, len(cols))
	for i, c := range cols {
		quoted[i] = sharedDB.QuoteIdent(c)
		dest[i] = &raw[i]
	}

	query := s.dialect.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(quoted, ", "), entity, where))
	err := tx.QueryRowContext(ctx, query, keyArgs...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // igual que un UPDATE sin filas
	}
	if err != nil {
		return err
	}

	current := make(map[string]decimal.Decimal, len(cols))
	for i, c := range cols {
		v := decimal.Zero
		if raw[i].Valid && raw[i].String != "" {
			if v, err = decimal.NewFromString(raw[i].String); err != nil {
				return sharedDomain.Permanent(fmt.Errorf("column %s: %w", c, err))
			}
		}
		current[c] = v
	}
	current[m.Field] = current[m.Field].Add(m.Delta)

	sets := []string{sharedDB.QuoteIdent(m.Field) + " = ?"}
	args := []interface{}{current[m.Field].String()}
	if r := m.Ratio; r != nil {
		sets = append(sets, sharedDB.QuoteIdent(r.Field)+" = ?")
		args = append(args, sharedDomain.SafeRatio(current[r.Numerator], current[r.Denominator]).String())
	}
	args = append(args, keyArgs...)

	update := s.dialect.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE %s", entity, strings.Join(sets, ", "), where))
	_, err = tx.ExecContext(ctx, update, args...)
	return err
}

func (s *Store) deleteIfZero(ctx context.Context, tx *sql.Tx, m sharedDomain.Mutation) error {
	where, args := whereKey(m.Key)
	query := s.dialect.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s AND CAST(%s AS NUMERIC) = 0",
		sharedDB.QuoteIdent(m.Entity), where, sharedDB.QuoteIdent(m.Field)))
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func whereKey(key []sharedDomain.Field) (string, []interface{}) {
	conds := make([]string, 0, len(key))
	args := make([]interface{}, 0, len(key))
	for _, f := range key {
		conds = append(conds, sharedDB.QuoteIdent(f.Name)+" = ?")
		args = append(args, f.Value)
	}
	return strings.Join(conds, " AND "), args
}
