package view

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/weather"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusRendered Status = "rendered"
)

var ErrClosed = errors.New("view session is closed")

// State is what the page shows. Snapshot is the last successful search and
// survives failed searches.
type State struct {
	Status     Status           `json:"status"`
	Generation uint64           `json:"generation"`
	Query      string           `json:"query"`
	Error      string           `json:"error,omitempty"`
	Snapshot   *models.Snapshot `json:"snapshot,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type searcher interface {
	Search(ctx context.Context, city string) (models.Snapshot, error)
}

type searchObserver interface {
	ObserveSearch(outcome string, d time.Duration)
}

type request struct {
	city    string
	refresh bool
}

type result struct {
	generation uint64
	query      string
	started    time.Time
	snapshot   models.Snapshot
	err        error
}

// Session owns the view state on a single goroutine (Run). Searches run on
// worker goroutines and hand their result back through a queue; a result is
// applied only if no newer search was submitted in the meantime.
type Session struct {
	searcher searcher
	observer searchObserver
	logger   zerolog.Logger
	timeout  time.Duration

	requests chan request
	results  chan result
	reads    chan chan State
	done     chan struct{}

	state  State
	cancel context.CancelFunc
}

func NewSession(s searcher, observer searchObserver, logger zerolog.Logger, timeout time.Duration) *Session {
	return &Session{
		searcher: s,
		observer: observer,
		logger:   logger,
		timeout:  timeout,
		requests: make(chan request),
		results:  make(chan result),
		reads:    make(chan chan State),
		done:     make(chan struct{}),
		state:    State{Status: StatusIdle, UpdatedAt: time.Now()},
	}
}

// Run processes submits, results and reads until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		if s.cancel != nil {
			s.cancel()
		}
	}()

	s.logger.Info().Msg("view session started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("view session stopped")
			return
		case req := <-s.requests:
			s.start(ctx, req)
		case res := <-s.results:
			s.apply(res)
		case reply := <-s.reads:
			reply <- s.snapshotState()
		}
	}
}

// Submit starts a search for city, superseding any search in flight.
func (s *Session) Submit(ctx context.Context, city string) error {
	return s.send(ctx, request{city: city})
}

// Refresh repeats the last successful search; it is a no-op before the first one.
func (s *Session) Refresh(ctx context.Context) error {
	return s.send(ctx, request{refresh: true})
}

func (s *Session) send(ctx context.Context, req request) error {
	select {
	case s.requests <- req:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) State(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	select {
	case s.reads <- reply:
	case <-s.done:
		return s.snapshotState(), nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

func (s *Session) start(ctx context.Context, req request) {
	city := strings.TrimSpace(req.city)
	if req.refresh {
		if s.state.Snapshot == nil || s.state.Status == StatusFetching {
			return
		}
		city = s.state.Snapshot.Query
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.state.Generation++
	s.state.Status = StatusFetching
	s.state.Query = city
	s.state.Error = ""
	s.state.UpdatedAt = time.Now()

	workerCtx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel

	generation := s.state.Generation
	s.logger.Info().
		Uint64("generation", generation).
		Str("city", city).
		Bool("refresh", req.refresh).
		Msg("search submitted")

	go func() {
		started := time.Now()
		snapshot, err := s.searcher.Search(workerCtx, city)
		res := result{generation: generation, query: city, started: started, snapshot: snapshot, err: err}

		select {
		case s.results <- res:
		case <-s.done:
		}
	}()
}

func (s *Session) apply(res result) {
	elapsed := time.Since(res.started)

	if res.generation != s.state.Generation {
		s.logger.Info().
			Uint64("generation", res.generation).
			Uint64("current", s.state.Generation).
			Str("city", res.query).
			Msg("discarding stale search result")
		s.observe("stale", elapsed)
		return
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state.UpdatedAt = time.Now()

	if res.err != nil {
		s.logger.Error().
			Err(res.err).
			Uint64("generation", res.generation).
			Str("city", res.query).
			Msg("search failed")
		s.state.Status = StatusIdle
		s.state.Error = ErrorMessage(res.query, res.err)
		s.observe(outcomeOf(res.err), elapsed)
		return
	}

	snapshot := res.snapshot
	s.state.Status = StatusRendered
	s.state.Error = ""
	s.state.Snapshot = &snapshot
	s.observe("success", elapsed)
}

func (s *Session) observe(outcome string, d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveSearch(outcome, d)
	}
}

func (s *Session) snapshotState() State {
	st := s.state
	if st.Snapshot != nil {
		snapshot := *st.Snapshot
		st.Snapshot = &snapshot
	}
	return st
}

// ErrorMessage is the text shown to the user when a search fails.
func ErrorMessage(city string, err error) string {
	switch {
	case errors.Is(err, weather.ErrEmptyCity):
		return "Please enter a city name."
	case errors.Is(err, weather.ErrNotFound):
		return "City \"" + city + "\" was not found."
	case errors.Is(err, context.DeadlineExceeded):
		return "The weather service took too long to answer. Please try again."
	default:
		return "The weather service is unavailable right now. Please try again later."
	}
}

func outcomeOf(err error) string {
	if errors.Is(err, weather.ErrNotFound) {
		return "not_found"
	}
	return "upstream_error"
}
