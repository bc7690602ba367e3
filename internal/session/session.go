// Package session holds the state of one treemap view: the loaded records,
// the grouping, the view options, the viewport and the current zoom.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lu-zhengda/pytestmap/internal/engine"
	"github.com/lu-zhengda/pytestmap/internal/group"
	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
	"github.com/lu-zhengda/pytestmap/internal/utils"
	"github.com/lu-zhengda/pytestmap/internal/zoom"
)

// Session is not safe for concurrent use.
type Session struct {
	ID uuid.UUID

	logger  *zap.Logger
	records []report.FlatRecord
	skipped int
	input   *treemap.Input // set when data arrived pre-grouped
	dims    []group.Dimension
	opts    Options

	width, height float64 // outer size
	precision     int     // parsed from opts.Format when options change

	tree *treemap.Tree
	ctrl *zoom.Controller
}

// New returns an empty session. Call Ingest or LoadTree, then Resize.
func New(opts Options, dims []group.Dimension, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	s := &Session{
		ID:     id,
		logger: logger.With(zap.String("session", id.String())),
		dims:   append([]group.Dimension(nil), dims...),
		opts:   opts,
	}
	s.precision = s.parsePrecision()
	s.Rebuild()
	return s
}

// Ingest replaces the dataset with the records of batches.
func (s *Session) Ingest(batches []engine.Batch) {
	s.records = engine.Records(batches)
	s.skipped = engine.Skipped(batches)
	s.input = nil
	s.logger.Debug("ingested", zap.Int("batches", len(batches)), zap.Int("records", len(s.records)))
	s.Rebuild()
}

// IngestRecords replaces the dataset with records.
func (s *Session) IngestRecords(records []report.FlatRecord) {
	s.records = append([]report.FlatRecord(nil), records...)
	s.skipped = 0
	s.input = nil
	s.Rebuild()
}

// LoadTree installs a pre-grouped tree. Dimension changes do not apply to
// it.
func (s *Session) LoadTree(in treemap.Input) {
	s.records = nil
	s.skipped = 0
	s.input = &in
	s.Rebuild()
}

// Apply installs a decoded message: options are merged first, then the
// data replaces the dataset.
func (s *Session) Apply(m Message) {
	s.opts = s.opts.Apply(m.Opts)
	if m.Tree != nil {
		s.LoadTree(*m.Tree)
		return
	}
	s.IngestRecords(m.Records)
}

// SetDimensions replaces the grouping selectors and rebuilds.
func (s *Session) SetDimensions(dims []group.Dimension) {
	s.dims = append([]group.Dimension(nil), dims...)
	s.Rebuild()
}

// SetDimension sets the selector in slot (0-based) and rebuilds. A slot one
// past the end appends.
func (s *Session) SetDimension(slot int, d group.Dimension) error {
	if slot < 0 || slot >= group.MaxDimensions || slot > len(s.dims) {
		return fmt.Errorf("dimension slot %d out of range", slot+1)
	}
	if slot == len(s.dims) {
		s.dims = append(s.dims, d)
	} else {
		s.dims[slot] = d
	}
	s.Rebuild()
	return nil
}

// CycleDimension advances the selector in slot to the next dimension.
func (s *Session) CycleDimension(slot int) error {
	next := group.All[0]
	if slot >= 0 && slot < len(s.dims) {
		next = group.Next(s.dims[slot])
	}
	return s.SetDimension(slot, next)
}

// SetOptions replaces the view options and rebuilds.
func (s *Session) SetOptions(o Options) {
	s.opts = o
	s.precision = s.parsePrecision()
	s.Rebuild()
}

// Resize sets the outer size and rebuilds.
func (s *Session) Resize(width, height float64) {
	s.width, s.height = width, height
	s.Rebuild()
}

// Viewport returns the chart size: the outer size minus margins, never
// negative.
func (s *Session) Viewport() (float64, float64) {
	m := s.opts.Margin
	w := s.width - float64(max(m.Left, 0)+max(m.Right, 0))
	h := s.height - float64(max(m.Top, 0)+max(m.Bottom, 0))
	return max(w, 0), max(h, 0)
}

// Rebuild regroups and lays out from scratch, resetting the zoom to the
// root. A running transition is discarded.
func (s *Session) Rebuild() {
	var in treemap.Input
	if s.input != nil {
		in = *s.input
	} else {
		in = group.Group(s.records, s.dims, s.opts.RootName)
	}

	w, h := s.Viewport()
	s.tree = treemap.Build(in)
	treemap.LayoutRoot(s.tree, w, h)
	s.ctrl = zoom.New(s.tree, w, h)
	s.logger.Debug("rebuilt",
		zap.Int("nodes", len(s.tree.Nodes)),
		zap.Float64("width", w),
		zap.Float64("height", h),
	)
}

// Focus jumps to the node at the "/"-separated path without animating.
func (s *Session) Focus(path string) error {
	id, ok := s.tree.Find(path)
	if !ok {
		return fmt.Errorf("no node at %q", path)
	}
	if id == treemap.Root {
		return nil
	}
	if !s.ctrl.Jump(id) {
		return fmt.Errorf("%q is a leaf", path)
	}
	return nil
}

func (s *Session) Tree() *treemap.Tree { return s.tree }
func (s *Session) Controller() *zoom.Controller { return s.ctrl }
func (s *Session) Options() Options { return s.opts }
func (s *Session) Records() []report.FlatRecord { return s.records }
func (s *Session) Skipped() int { return s.skipped }
func (s *Session) Pregrouped() bool { return s.input != nil }
func (s *Session) Logger() *zap.Logger { return s.logger }

func (s *Session) Dimensions() []group.Dimension {
	return append([]group.Dimension(nil), s.dims...)
}

// Precision is the significant-digit count of the format option. An
// invalid format falls back to the default.
func (s *Session) Precision() int { return s.precision }

func (s *Session) parsePrecision() int {
	p, err := utils.ParseFormat(s.opts.Format)
	if err != nil {
		s.logger.Warn("invalid format, using default", zap.String("format", s.opts.Format), zap.Error(err))
		return utils.DefaultPrecision
	}
	return p
}

// Breadcrumb renders the header for the current zoom target.
func (s *Session) Breadcrumb() string {
	return treemap.Breadcrumb(s.tree, s.ctrl.Target(), s.Precision())
}
