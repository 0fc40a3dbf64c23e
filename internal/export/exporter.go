package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/wrexpt/internal/config"
	"github.com/roach88/wrexpt/internal/document"
	"github.com/roach88/wrexpt/internal/fragment"
	"github.com/roach88/wrexpt/internal/store"
)

// Conn is an open store connection owned by one export.
type Conn interface {
	Querier
	Close() error
}

// Opener opens and authenticates a store connection.
type Opener func(ctx context.Context, path string, opts store.Options) (Conn, error)

// OpenStore is the default Opener.
func OpenStore(ctx context.Context, path string, opts store.Options) (Conn, error) {
	s, err := store.Open(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Report summarizes one export run. It is returned on failure too, holding
// whatever was reached.
type Report struct {
	RunID     string
	Store     string
	Output    string
	Logins    int
	Notes     int
	Bookmarks int

	// Bytes is the size of the written document.
	Bytes int

	// Phase is the final phase; Closed once Run returns.
	Phase Phase

	// Trace lists every phase entered, in order.
	Trace []Phase
}

func (r *Report) enter(p Phase) {
	r.Phase = p
	r.Trace = append(r.Trace, p)
}

// Count returns the number of exported elements of the given name.
func (r *Report) Count(element string) int {
	switch element {
	case ElementLogin:
		return r.Logins
	case ElementNote:
		return r.Notes
	case ElementBookmark:
		return r.Bookmarks
	}
	return 0
}

func (r *Report) record(element string, n int) {
	switch element {
	case ElementLogin:
		r.Logins = n
	case ElementNote:
		r.Notes = n
	case ElementBookmark:
		r.Bookmarks = n
	}
}

// stage binds a record exporter to its step and the phase it completes.
type stage struct {
	step     Step
	done     Phase
	exporter RecordExporter
}

// stages run in this order; there is no cross-kind ordering beyond it.
var stages = []stage{
	{StepLogins, PhaseLoginsExported, LoginExporter{}},
	{StepNotes, PhaseNotesExported, NoteExporter{}},
	{StepBookmarks, PhaseBookmarksExported, BookmarkExporter{}},
}

// Exporter runs exports for one configuration.
type Exporter struct {
	cfg    config.Config
	logger *slog.Logger
	runIDs RunIDGenerator
	open   Opener
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// WithRunIDGenerator overrides run ID generation (for testing).
// Defaults to UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Exporter) { e.runIDs = g }
}

// WithOpener overrides how the store is opened (for testing).
func WithOpener(o Opener) Option {
	return func(e *Exporter) { e.open = o }
}

// New creates an Exporter for cfg. Unset optional fields of cfg get their
// defaults.
func New(cfg config.Config, opts ...Option) *Exporter {
	e := &Exporter{
		cfg:    cfg.WithDefaults(),
		logger: slog.Default(),
		runIDs: UUIDv7Generator{},
		open:   OpenStore,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs one export. On success the document is at cfg.OutputPath;
// on failure no output was written and the error is an *Error.
func (e *Exporter) Run(ctx context.Context) (report *Report, err error) {
	runID := e.runIDs.Generate()
	log := e.logger.With("run_id", runID)

	report = &Report{RunID: runID, Store: e.cfg.StorePath, Output: e.cfg.OutputPath}
	report.enter(PhaseIdle)

	if err := e.cfg.Validate(); err != nil {
		report.enter(PhaseClosed)
		return report, &Error{Kind: KindStoreOpen, Step: StepOpen, Phase: PhaseIdle, Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	log.Info("start exporting database", "store", e.cfg.StorePath, "driver", e.cfg.Driver)
	conn, err := e.open(ctx, e.cfg.StorePath, store.Options{Driver: e.cfg.Driver, Password: e.cfg.Password})
	if err != nil {
		report.enter(PhaseClosed)
		log.Error("open database failed", "error", err)
		return report, &Error{Kind: KindStoreOpen, Step: StepOpen, Phase: PhaseIdle, Err: err}
	}
	report.enter(PhaseConnected)
	log.Debug("export phase", "phase", PhaseConnected)

	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
		report.enter(PhaseClosed)
		if err == nil {
			log.Info("export complete",
				"logins", report.Logins, "notes", report.Notes, "bookmarks", report.Bookmarks,
				"output", report.Output, "bytes", report.Bytes)
		}
	}()

	doc := document.New()
	for _, st := range stages {
		n, err := st.exporter.Export(ctx, conn, doc)
		if err != nil {
			kind := KindQuery
			var de *fragment.DecodeError
			if errors.As(err, &de) {
				kind = KindFragmentDecode
			}
			log.Error("export phase failed", "step", st.step, "error", err)
			return report, &Error{Kind: kind, Step: st.step, Phase: report.Phase, Err: err}
		}
		report.record(st.exporter.Element(), n)
		report.enter(st.done)
		log.Info(fmt.Sprintf("%d %s exported", n, st.step), "count", n, "phase", st.done)
	}

	data, err := doc.Marshal(e.cfg.Encoding)
	if err != nil {
		return report, &Error{Kind: KindSave, Step: StepSave, Phase: report.Phase, Err: err}
	}
	if err := writeAtomic(e.cfg.OutputPath, data, OutputPerm); err != nil {
		log.Error("save failed", "output", e.cfg.OutputPath, "error", err)
		return report, &Error{Kind: KindSave, Step: StepSave, Phase: report.Phase, Err: err}
	}
	report.Bytes = len(data)
	report.enter(PhaseSaved)
	log.Debug("export phase", "phase", PhaseSaved, "output", e.cfg.OutputPath)

	return report, nil
}

// Export runs a single export of cfg with default options.
func Export(ctx context.Context, cfg config.Config) (*Report, error) {
	return New(cfg).Run(ctx)
}
