// Package lookup turns a query into exactly one credential value.
package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/systmms/kpasscli/internal/backends"
	"github.com/systmms/kpasscli/internal/logging"
	"github.com/systmms/kpasscli/internal/metrics"
	"github.com/systmms/kpasscli/internal/otp"
	"github.com/systmms/kpasscli/internal/tree"
	"github.com/systmms/kpasscli/pkg/credential"
)

// DefaultField is extracted when a request names no field.
const DefaultField = "Password"

// Mode selects what a lookup returns for the matched entry.
type Mode int

const (
	// ModeField returns the requested field.
	ModeField Mode = iota
	// ModeTOTP returns the current code derived from the otp field.
	ModeTOTP
	// ModePasswordTOTP returns the password immediately followed by the
	// current code.
	ModePasswordTOTP
	// ModeShowAll returns the entry without extracting a value.
	ModeShowAll
)

func (m Mode) String() string {
	switch m {
	case ModeTOTP:
		return "totp"
	case ModePasswordTOTP:
		return "password+totp"
	case ModeShowAll:
		return "show-all"
	default:
		return "field"
	}
}

// Request describes one lookup.
type Request struct {
	Query  string
	Field  string
	Policy credential.MatchPolicy
	Mode   Mode
}

// Result is the outcome of a successful lookup. Value is empty in
// ModeShowAll.
type Result struct {
	Entry credential.Entry
	Value string
}

// Service performs lookups against one opened backend.
type Service struct {
	backend credential.Backend
	logger  *logging.Logger
	metrics *metrics.LookupMetrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records lookup outcomes in m.
func WithMetrics(m *metrics.LookupMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now for TOTP generation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service for an already opened backend.
func New(backend credential.Backend, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the backend described by opts and returns a Service for it.
// The open duration is recorded in m, which may be nil.
func Open(ctx context.Context, opts backends.Options, m *metrics.LookupMetrics, svcOpts ...Option) (*Service, error) {
	kind := credential.SelectKind(opts.Location)

	start := time.Now()
	backend, err := backends.Open(ctx, opts)
	m.ObservePhase(kind.String(), metrics.PhaseOpen, time.Since(start))
	if err != nil {
		m.RecordLookup(kind.String(), metrics.ResultError)
		return nil, err
	}
	return New(backend, opts.Logger, append([]Option{WithMetrics(m)}, svcOpts...)...), nil
}

// Backend returns the backend the service reads from.
func (s *Service) Backend() credential.Backend {
	return s.backend
}

// Lookup finds the single entry matching req.Query and extracts the value
// selected by req.Mode.
func (s *Service) Lookup(ctx context.Context, req Request) (Result, error) {
	name := s.backend.Name()

	entry, err := s.Find(ctx, req.Query, req.Policy)
	if err != nil {
		s.metrics.RecordLookup(name, resultLabel(err))
		return Result{}, err
	}

	value, err := s.extract(entry, req)
	if err != nil {
		s.metrics.RecordLookup(name, metrics.ResultError)
		return Result{}, err
	}

	s.metrics.RecordLookup(name, metrics.ResultFound)
	return Result{Entry: entry, Value: value}, nil
}

// Find searches the backend and requires exactly one match.
func (s *Service) Find(ctx context.Context, query string, policy credential.MatchPolicy) (credential.Entry, error) {
	name := s.backend.Name()
	s.logger.Debug("searching %s for %q (%s)", name, query, policy)

	start := time.Now()
	entries, err := s.backend.Search(ctx, query, policy)
	s.metrics.ObservePhase(name, metrics.PhaseSearch, time.Since(start))
	if err != nil {
		var pathErr *tree.PathError
		if errors.As(err, &pathErr) {
			return credential.Entry{}, credential.NoItemsFoundError{Query: query, Err: err}
		}
		return credential.Entry{}, err
	}

	s.logger.Debug("found %d matching entries", len(entries))
	s.metrics.RecordMatches(name, len(entries))
	return Single(entries, query)
}

func (s *Service) extract(entry credential.Entry, req Request) (string, error) {
	switch req.Mode {
	case ModeShowAll:
		return "", nil

	case ModeTOTP:
		return s.totp(entry)

	case ModePasswordTOTP:
		password, err := s.backend.Field(entry, credential.FieldPassword)
		if err != nil {
			return "", err
		}
		code, err := s.totp(entry)
		if err != nil {
			return "", err
		}
		return password + code, nil

	default:
		field := req.Field
		if field == "" {
			field = DefaultField
		}
		s.logger.Debug("reading field %q of %s", field, entry.Path)
		return s.backend.Field(entry, field)
	}
}

func (s *Service) totp(entry credential.Entry) (string, error) {
	uri, err := s.backend.Field(entry, otp.FieldName)
	if err != nil {
		return "", err
	}
	key, err := otp.Parse(uri)
	if err != nil {
		return "", err
	}
	return key.Code(s.now())
}

// Single returns the only entry in entries. Zero entries is a
// NoItemsFoundError; more than one is an AmbiguousMatchError listing
// every candidate path.
func Single(entries []credential.Entry, query string) (credential.Entry, error) {
	switch len(entries) {
	case 0:
		return credential.Entry{}, credential.NoItemsFoundError{Query: query}
	case 1:
		return entries[0], nil
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return credential.Entry{}, credential.AmbiguousMatchError{Query: query, Paths: paths}
}

func resultLabel(err error) string {
	var (
		notFound  credential.NoItemsFoundError
		ambiguous credential.AmbiguousMatchError
	)
	switch {
	case errors.As(err, &notFound):
		return metrics.ResultNotFound
	case errors.As(err, &ambiguous):
		return metrics.ResultAmbiguous
	default:
		return metrics.ResultError
	}
}
