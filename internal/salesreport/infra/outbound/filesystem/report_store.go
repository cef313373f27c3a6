package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// document es el contenido del fichero: checkpoint e informes por fecha de snapshot.
type document struct {
	Checkpoint *uint64                              `json:"checkpoint,omitempty"`
	Reports    map[string]*reportDomain.SalesReport `json:"salesReports"`
}

// JSONReportStore guarda el informe de ventas en un único fichero JSON.
// El checkpoint vive dentro del documento, así que cada escritura es atómica
// respecto a él: se escribe un fichero temporal y se renombra.
type JSONReportStore struct {
	filePath  string
	readModel string
	mu        sync.Mutex // Protege doc y el fichero.
	doc       *document
	log       *zap.Logger
}

var (
	_ sharedDomain.ProjectionStore      = (*JSONReportStore)(nil)
	_ reportDomain.ReportReadRepository = (*JSONReportStore)(nil)
)

func NewJSONReportStore(filePath string, log *zap.Logger) *JSONReportStore {
	return &JSONReportStore{filePath: filePath, readModel: reportDomain.ReadModelName, log: log}
}

// --- Checkpoints ---

func (s *JSONReportStore) GetCheckpoint(ctx context.Context, readModel string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return 0, false, err
	}
	if readModel != s.readModel || doc.Checkpoint == nil {
		return 0, false, nil
	}
	return *doc.Checkpoint, true, nil
}

func (s *JSONReportStore) UpsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	return s.Apply(ctx, nil, cp)
}

// --- Unidad de trabajo ---

// Apply muta una copia del documento y solo la publica si el fichero se escribió entero.
func (s *JSONReportStore) Apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	if cp.ReadModel != s.readModel {
		return sharedDomain.Permanent(fmt.Errorf("json report store serves %q, not %q", s.readModel, cp.ReadModel))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked()
	if err != nil {
		return err
	}

	next := current.clone()
	for _, m := range mutations {
		if err := m.Validate(); err != nil {
			return sharedDomain.Permanent(err)
		}
		if err := applyMutation(next, m); err != nil {
			return sharedDomain.Permanent(err)
		}
	}
	if next.Checkpoint == nil || *next.Checkpoint < cp.Position {
		pos := cp.Position
		next.Checkpoint = &pos
	}

	if err := s.writeLocked(next); err != nil {
		return sharedDomain.Transient(err)
	}
	s.doc = next
	return nil
}

// --- Lectura ---

func (s *JSONReportStore) GetReport(ctx context.Context, date string) (*reportDomain.SalesReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	report, ok := doc.Reports[date]
	if !ok {
		return nil, reportDomain.ErrReportNotFound
	}
	return cloneReport(report), nil
}

// --- Helpers internos (no concurrentes) ---

func (s *JSONReportStore) loadLocked() (*document, error) {
	if s.doc != nil {
		return s.doc, nil
	}

	doc := &document{Reports: make(map[string]*reportDomain.SalesReport)}
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		// Si el fichero no existe, empezamos con un documento vacío.
		if os.IsNotExist(err) {
			s.doc = doc
			return doc, nil
		}
		return nil, sharedDomain.Transient(err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, sharedDomain.Permanent(fmt.Errorf("corrupt report file %s: %w", s.filePath, err))
		}
		if doc.Reports == nil {
			doc.Reports = make(map[string]*reportDomain.SalesReport)
		}
	}
	s.doc = doc
	return doc, nil
}

func (s *JSONReportStore) writeLocked(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op tras el rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.filePath); err != nil {
		return err
	}
	s.log.Debug("Sales report file written", zap.String("path", s.filePath), zap.Int("bytes", len(data)))
	return nil
}

func (d *document) clone() *document {
	out := &document{Reports: make(map[string]*reportDomain.SalesReport, len(d.Reports))}
	if d.Checkpoint != nil {
		pos := *d.Checkpoint
		out.Checkpoint = &pos
	}
	for date, r := range d.Reports {
		out.Reports[date] = cloneReport(r)
	}
	return out
}

func cloneReport(r *reportDomain.SalesReport) *reportDomain.SalesReport {
	out := reportDomain.NewSalesReport(r.ReportDate)
	for category, regions := range r.Categories {
		for region, sales := range regions {
			out.Put(category, region, sales)
		}
	}
	return out
}
