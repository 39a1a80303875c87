package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/nao1215/tcmlookup/internal/browser"
	"github.com/nao1215/tcmlookup/internal/database"
	"github.com/nao1215/tcmlookup/internal/extract"
	"github.com/nao1215/tcmlookup/internal/model"
	"github.com/nao1215/tcmlookup/internal/navigator"
	"github.com/nao1215/tcmlookup/internal/selector"
)

// ErrNotAdmitted is returned when the caller gave up while waiting for a
// free session slot or for the rate limiter.
var ErrNotAdmitted = errors.New("lookup was not admitted")

// ErrClosed is returned by Lookup after Close. It wraps ErrNotAdmitted.
var ErrClosed = fmt.Errorf("%w: service is closed", ErrNotAdmitted)

// stepExtract labels extraction failures in metrics and the journal.
const stepExtract = "extract"

// Session is an acquired browser session.
// *browser.Session implements it.
type Session interface {
	navigator.Page
	Dispose() error
}

// AcquireFunc starts a new browser session.
type AcquireFunc func(ctx context.Context) (Session, error)

// BrowserAcquirer returns an AcquireFunc that launches browser sessions
// configured by opts.
func BrowserAcquirer(opts browser.Options) AcquireFunc {
	return func(ctx context.Context) (Session, error) {
		s, err := browser.Acquire(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Journal records lookup outcomes. *database.Journal implements it.
type Journal interface {
	Digest(key model.SearchKey) string
	Append(ctx context.Context, e *database.Entry) error
}

// Service performs lookups.
type Service struct {
	acquire   AcquireFunc
	navigator *navigator.Navigator
	selector  *selector.Selector
	journal   Journal
	metrics   *Metrics
	logger    *slog.Logger

	sessions *semaphore.Weighted
	capacity int64
	limiter  *rate.Limiter
	closed   atomic.Bool
	drained  atomic.Bool

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithJournal records every finished lookup in j.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithMetrics sets the collectors to update.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxSessions bounds concurrent browser sessions. Values below 1 are
// treated as 1.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		s.capacity = int64(max(n, 1))
		s.sessions = semaphore.NewWeighted(s.capacity)
	}
}

// WithLookupsPerMinute limits lookup starts with a burst of one.
// Zero disables the limit.
func WithLookupsPerMinute(n int) Option {
	return func(s *Service) {
		if n <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithNavigator replaces the page script runner.
func WithNavigator(n *navigator.Navigator) Option {
	return func(s *Service) {
		s.navigator = n
	}
}

// WithSelector replaces the default admission-record selector.
func WithSelector(sel *selector.Selector) Option {
	return func(s *Service) {
		s.selector = sel
	}
}

// New creates a Service that starts sessions with acquire.
func New(acquire AcquireFunc, opts ...Option) *Service {
	s := &Service{
		acquire:  acquire,
		selector: selector.Default(),
		sessions: semaphore.NewWeighted(2),
		capacity: 2,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.navigator == nil {
		s.navigator = navigator.New(navigator.WithLogger(s.logger))
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Lookup runs one lookup for key.
//
// A nil error means the lookup completed; the result's Outcome says
// whether a record was found. Failures are *model.LookupError, except
// model.ErrEmptySearchKey for an empty key and ErrNotAdmitted when ctx
// ends before the lookup could start. Once started, a lookup runs to
// completion even if ctx is canceled.
func (s *Service) Lookup(ctx context.Context, key model.SearchKey) (*model.LookupResult, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := s.sessions.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAdmitted, err)
	}
	defer s.sessions.Release(1)
	if s.closed.Load() {
		return nil, ErrClosed
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAdmitted, err)
	}

	id := s.newID()
	started := s.now()
	logger := s.logger.With("lookup_id", id)
	logger.Info("lookup started")

	result, failedStep, err := s.run(ctx, logger, id, key)
	elapsed := s.now().Sub(started)

	entry := &database.Entry{ID: id, StartedAt: started, Duration: elapsed}
	if err != nil {
		kind := model.KindOf(err)
		s.metrics.lookups.WithLabelValues(kind.String()).Inc()
		s.metrics.navigationFailures.WithLabelValues(failedStep, kind.String()).Inc()
		entry.Outcome = database.OutcomeError
		entry.ErrorKind = kind.String()
		entry.FailedStep = failedStep
		logger.Warn("lookup failed", "step", failedStep, "kind", kind.String(), "duration", elapsed, "error", err)
	} else {
		result.StartedAt = started
		result.Duration = elapsed
		s.metrics.lookups.WithLabelValues(result.OutcomeLabel).Inc()
		entry.Outcome = result.OutcomeLabel
		entry.Candidates = result.Candidates
		logger.Info("lookup finished", "outcome", result.OutcomeLabel, "candidates", result.Candidates, "duration", elapsed)
	}
	s.metrics.duration.Observe(elapsed.Seconds())
	s.record(ctx, logger, key, entry)

	return result, err
}

// Close stops admitting lookups and waits until every running lookup has
// disposed of its session and been journaled, or until ctx is done.
// Lookups that already started are never interrupted.
func (s *Service) Close(ctx context.Context) error {
	s.closed.Store(true)
	if s.drained.Load() {
		return nil
	}
	if err := s.sessions.Acquire(ctx, s.capacity); err != nil {
		return fmt.Errorf("lookups still running: %w", err)
	}
	s.drained.Store(true)
	return nil
}

// run acquires a session, drives it and disposes of it. It returns the
// name of the failed step alongside any error.
func (s *Service) run(ctx context.Context, logger *slog.Logger, id string, key model.SearchKey) (*model.LookupResult, string, error) {
	session, err := s.acquire(ctx)
	if err != nil {
		return nil, "acquire", asDriverInit(err)
	}
	s.metrics.sessionsActive.Inc()
	defer func() {
		s.metrics.sessionsActive.Dec()
		if err := session.Dispose(); err != nil {
			logger.Warn("failed to dispose browser session", "error", err)
		}
	}()

	nav, err := s.navigator.Run(ctx, session, key)
	if err != nil {
		return nil, nav.FailedStep, err
	}

	if nav.Markup.IsEmpty() {
		return model.NewLookupResult(id, key, model.OutcomeNoContent), "", nil
	}

	records, err := extract.Extract(nav.Markup)
	if err != nil {
		return nil, stepExtract, err
	}
	logger.Debug("results extracted", "records", records.Len())

	var result *model.LookupResult
	switch rec, ok := s.selector.Select(records); {
	case records.IsEmpty():
		result = model.NewLookupResult(id, key, model.OutcomeNoRecords)
	case !ok:
		result = model.NewLookupResult(id, key, model.OutcomeNoMatch)
	default:
		result = model.NewLookupResult(id, key, model.OutcomeFound)
		result.Record = rec
	}
	result.Candidates = records.Len()
	return result, "", nil
}

// record appends entry to the journal. Journal failures are logged only.
func (s *Service) record(ctx context.Context, logger *slog.Logger, key model.SearchKey, entry *database.Entry) {
	if s.journal == nil {
		return
	}
	entry.KeyDigest = s.journal.Digest(key)
	if err := s.journal.Append(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("failed to journal lookup", "error", err)
	}
}

// asDriverInit classifies an acquire failure. Errors that are already
// classified pass through.
func asDriverInit(err error) error {
	var le *model.LookupError
	if errors.As(err, &le) {
		return err
	}
	return model.NewLookupError(model.KindDriverInit, "acquire", err.Error(), err)
}
