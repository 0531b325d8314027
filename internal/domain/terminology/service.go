package terminology

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ehr/namaste/internal/platform/fallback"
	"github.com/ehr/namaste/internal/platform/metrics"
)

// MinSearchLength is the shortest trimmed term, in runes, that is searched.
const MinSearchLength = 2

// DefaultTimeout bounds each registry call when none is configured.
const DefaultTimeout = 5 * time.Second

// Resolve refuses selections with these.
var (
	ErrIncompleteEntry = errors.New("entry lacks a NAMASTE or ICD code")
	ErrUnverifiedEntry = errors.New("entry not confirmed by the registry")
)

// Registry is the remote half of the terminology service.
type Registry interface {
	Search(ctx context.Context, term string) ([]Entry, error)
	SubmitDiagnosis(ctx context.Context, payload *DiagnosisPayload) (*SubmitResult, error)
}

// Service resolves free text to dual-coded entries, preferring the registry
// and degrading to the bundled corpus whenever the registry cannot answer.
type Service struct {
	registry Registry
	corpus   []Entry
	timeout  time.Duration
	logger   zerolog.Logger
	observe  func(name string, source fallback.Source, class fallback.Class)
}

// Option customises a Service.
type Option func(*Service)

// WithCorpus replaces the bundled fallback corpus.
func WithCorpus(corpus []Entry) Option {
	return func(s *Service) {
		s.corpus = make([]Entry, len(corpus))
		for i, e := range corpus {
			s.corpus[i] = e.normalized()
		}
	}
}

// WithObserver replaces the metrics hook called after every registry call.
func WithObserver(fn func(name string, source fallback.Source, class fallback.Class)) Option {
	return func(s *Service) { s.observe = fn }
}

// NewService creates a terminology service. A zero timeout means DefaultTimeout.
func NewService(registry Registry, timeout time.Duration, logger zerolog.Logger, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Service{
		registry: registry,
		corpus:   FallbackCorpus(),
		timeout:  timeout,
		logger:   logger.With().Str("component", "terminology").Logger(),
		observe:  metrics.ObserveRegistryCall,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) policy(name string) fallback.Policy {
	return fallback.Policy{
		Name:    name,
		Timeout: s.timeout,
		Logger:  s.logger,
		Observe: s.observe,
	}
}

// Search returns entries matching term. Terms shorter than MinSearchLength
// after trimming yield an empty result without contacting the registry.
// Registry failures never surface: the fallback corpus answers instead. The
// only error is ctx's own, when the caller abandons or supersedes the search.
func (s *Service) Search(ctx context.Context, term string) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSearchLength {
		return &SearchResult{Entries: []Entry{}, Source: SourceNone}, nil
	}

	entries, src, err := fallback.Do(ctx, s.policy("registry.search"),
		func(ctx context.Context) ([]Entry, error) {
			return s.registry.Search(ctx, term)
		},
		func(error) []Entry {
			return Match(term, s.corpus)
		},
	)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}

	result := &SearchResult{Entries: entries, Source: SourceRegistry}
	if src == fallback.SourceLocal {
		result.Source = SourceFallback
	}
	metrics.RecordSearch(result.Source)
	return result, nil
}

// Submit mirrors a diagnosis to the registry. When the registry cannot be
// reached the submission is soft-accepted with Offline set. The only error
// is ctx's own.
func (s *Service) Submit(ctx context.Context, payload *DiagnosisPayload) (*SubmitResult, error) {
	result, _, err := fallback.Do(ctx, s.policy("registry.submit"),
		func(ctx context.Context) (*SubmitResult, error) {
			res, err := s.registry.SubmitDiagnosis(ctx, payload)
			if err == nil && res == nil {
				return nil, &fallback.MalformedError{Op: "registry submit", Err: errNoVerdict}
			}
			return res, err
		},
		func(error) *SubmitResult {
			return &SubmitResult{Accepted: true, Offline: true, Message: OfflineSubmitMessage}
		},
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Fallback returns a copy of the corpus the service falls back to.
func (s *Service) Fallback() []Entry {
	out := make([]Entry, len(s.corpus))
	copy(out, s.corpus)
	return out
}

// Resolve returns the canonical form of a selected entry. A bundled entry is
// replaced by the corpus copy. Any other selection is looked up in the
// registry by its NAMASTE name and accepted only if the registry returns an
// entry with the same id and both codes; the registry's copy is returned.
// An unreachable registry confirms nothing and yields ErrUnverifiedEntry.
// The only other error is ctx's own.
func (s *Service) Resolve(ctx context.Context, selected Entry) (Entry, error) {
	for _, e := range s.corpus {
		if selected.ID != "" && e.ID == selected.ID {
			return e, nil
		}
	}

	selected = selected.normalized()
	if !selected.complete() {
		return Entry{}, ErrIncompleteEntry
	}
	term := strings.TrimSpace(selected.NamasteName)
	if utf8.RuneCountInString(term) < MinSearchLength {
		return Entry{}, fmt.Errorf("%w: no name to look up", ErrUnverifiedEntry)
	}

	entries, src, err := fallback.Do(ctx, s.policy("registry.verify"),
		func(ctx context.Context) ([]Entry, error) {
			return s.registry.Search(ctx, term)
		},
		func(error) []Entry { return nil },
	)
	if err != nil {
		return Entry{}, err
	}
	if src == fallback.SourceLocal {
		return Entry{}, fmt.Errorf("%w: registry unavailable", ErrUnverifiedEntry)
	}
	for _, e := range entries {
		e = e.normalized()
		if e.ID == selected.ID && e.NamasteCode == selected.NamasteCode && e.ICDCode == selected.ICDCode {
			return e, nil
		}
	}
	return Entry{}, ErrUnverifiedEntry
}
