package memstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// Row es una fila del read model: columna -> valor.
type Row map[string]interface{}

// Store es un almacén de read models en memoria. Apply es atómico: las
// mutaciones se aplican sobre copias y solo se publican si todas tienen éxito.
type Store struct {
	mu          sync.RWMutex
	tables      map[string]map[string]Row
	checkpoints map[string]uint64
}

var _ sharedDomain.ProjectionStore = (*Store)(nil)

func New() *Store {
	return &Store{
		tables:      make(map[string]map[string]Row),
		checkpoints: make(map[string]uint64),
	}
}

func (s *Store) GetCheckpoint(ctx context.Context, readModel string) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.checkpoints[readModel]
	return pos, ok, nil
}

func (s *Store) UpsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCheckpointLocked(cp)
	return nil
}

func (s *Store) upsertCheckpointLocked(cp sharedDomain.Checkpoint) {
	if cur, ok := s.checkpoints[cp.ReadModel]; !ok || cp.Position > cur {
		s.checkpoints[cp.ReadModel] = cp.Position
	}
}

func (s *Store) Apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return sharedDomain.Transient(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[string]map[string]Row)
	table := func(entity string) map[string]Row {
		if t, ok := work[entity]; ok {
			return t
		}
		t := maps.Clone(s.tables[entity])
		if t == nil {
			t = make(map[string]Row)
		}
		work[entity] = t
		return t
	}

	for _, m := range mutations {
		if err := m.Validate(); err != nil {
			return sharedDomain.Permanent(err)
		}
		if err := applyMutation(table(m.Entity), m); err != nil {
			return sharedDomain.Permanent(err)
		}
	}

	for entity, t := range work {
		s.tables[entity] = t
	}
	s.upsertCheckpointLocked(cp)
	return nil
}

func applyMutation(t map[string]Row, m sharedDomain.Mutation) error {
	key := m.KeyString()
	row, exists := t[key]

	switch m.Kind {
	case sharedDomain.MutationUpsertIfAbsent:
		if exists {
			return nil
		}
		row = make(Row, len(m.Key)+len(m.Fields))
		for _, f := range m.Key {
			row[f.Name] = f.Value
		}
		for _, f := range m.Fields {
			row[f.Name] = f.Value
		}
		t[key] = row

	case sharedDomain.MutationFieldSet:
		if !exists {
			return nil
		}
		row = maps.Clone(row)
		for _, f := range m.Fields {
			row[f.Name] = f.Value
		}
		t[key] = row

	case sharedDomain.MutationIncrement:
		if !exists {
			return nil
		}
		cur, err := sharedDomain.ToDecimal(row[m.Field])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", m.Entity, m.Field, err)
		}
		row = maps.Clone(row)
		row[m.Field] = cur.Add(m.Delta)
		if r := m.Ratio; r != nil {
			num, err := sharedDomain.ToDecimal(row[r.Numerator])
			if err != nil {
				return fmt.Errorf("%s.%s: %w", m.Entity, r.Numerator, err)
			}
			den, err := sharedDomain.ToDecimal(row[r.Denominator])
			if err != nil {
				return fmt.Errorf("%s.%s: %w", m.Entity, r.Denominator, err)
			}
			row[r.Field] = sharedDomain.SafeRatio(num, den)
		}
		t[key] = row

	case sharedDomain.MutationDeleteIfZero:
		if !exists {
			return nil
		}
		cur, err := sharedDomain.ToDecimal(row[m.Field])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", m.Entity, m.Field, err)
		}
		if cur.IsZero() {
			delete(t, key)
		}
	}
	return nil
}

// Get devuelve una copia de la fila identificada por la clave.
func (s *Store) Get(entity string, key ...sharedDomain.Field) (Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.tables[entity][sharedDomain.KeyString(key)]
	if !ok {
		return nil, false
	}
	return maps.Clone(row), true
}

// Rows devuelve copias de todas las filas de la entidad, ordenadas por clave.
func (s *Store) Rows(entity string) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.tables[entity]
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, maps.Clone(t[k]))
	}
	return rows
}
