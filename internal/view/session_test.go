package view_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-viewer/internal/models"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/weather"
	"github.com/Nazarious-ucu/weather-viewer/internal/view"
)

type reply struct {
	snapshot models.Snapshot
	err      error
}

// fakeSearcher blocks each search until the test releases it through gates[city].
type fakeSearcher struct {
	mu    sync.Mutex
	gates map[string]chan reply
	calls []string
}

func newFakeSearcher(cities ...string) *fakeSearcher {
	f := &fakeSearcher{gates: make(map[string]chan reply)}
	for _, c := range cities {
		f.gates[c] = make(chan reply, 1)
	}
	return f
}

func (f *fakeSearcher) Search(ctx context.Context, city string) (models.Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, city)
	gate, ok := f.gates[city]
	f.mu.Unlock()

	if !ok {
		return models.Snapshot{}, fmt.Errorf("unexpected city %q", city)
	}

	select {
	case r := <-gate:
		return r.snapshot, r.err
	case <-ctx.Done():
		// a superseded search still reports back; the session must drop it
		r := <-gate
		return r.snapshot, r.err
	}
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveSearch(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) seen() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.outcomes...)
}

func snapshotFor(city string) models.Snapshot {
	return models.Snapshot{
		Query: city,
		Place: models.PlaceName{City: city},
		Current: models.CurrentConditions{
			Temperature: 15.2,
			Humidity:    60,
		},
	}
}

func startSession(t *testing.T, s *fakeSearcher, o *recordingObserver) *view.Session {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	session := view.NewSession(s, o, zerolog.Nop(), 5*time.Second)
	go session.Run(ctx)
	return session
}

func waitForStatus(t *testing.T, session *view.Session, status view.Status) view.State {
	t.Helper()

	var st view.State
	require.Eventually(t, func() bool {
		var err error
		st, err = session.State(context.Background())
		return err == nil && st.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestSession_InitialState(t *testing.T) {
	session := startSession(t, newFakeSearcher(), &recordingObserver{})

	st, err := session.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, view.StatusIdle, st.Status)
	assert.Zero(t, st.Generation)
	assert.Nil(t, st.Snapshot)
}

func TestSession_SubmitRendersSnapshot(t *testing.T) {
	searcher := newFakeSearcher("Paris")
	observer := &recordingObserver{}
	session := startSession(t, searcher, observer)

	require.NoError(t, session.Submit(context.Background(), "  Paris "))

	st := waitForStatus(t, session, view.StatusFetching)
	assert.Equal(t, "Paris", st.Query)
	assert.Equal(t, uint64(1), st.Generation)

	searcher.gates["Paris"] <- reply{snapshot: snapshotFor("Paris")}

	st = waitForStatus(t, session, view.StatusRendered)
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, "Paris", st.Snapshot.Place.City)
	assert.Empty(t, st.Error)
	assert.Equal(t, []string{"success"}, observer.seen())
}

func TestSession_StaleResultIsDiscarded(t *testing.T) {
	searcher := newFakeSearcher("Paris", "Lviv")
	observer := &recordingObserver{}
	session := startSession(t, searcher, observer)

	require.NoError(t, session.Submit(context.Background(), "Paris"))
	require.NoError(t, session.Submit(context.Background(), "Lviv"))

	require.Eventually(t, func() bool { return searcher.callCount() == 2 }, 2*time.Second, 5*time.Millisecond)

	searcher.gates["Lviv"] <- reply{snapshot: snapshotFor("Lviv")}
	st := waitForStatus(t, session, view.StatusRendered)
	assert.Equal(t, uint64(2), st.Generation)

	searcher.gates["Paris"] <- reply{snapshot: snapshotFor("Paris")}
	require.Eventually(t, func() bool { return len(observer.seen()) == 2 }, 2*time.Second, 5*time.Millisecond)

	st, err := session.State(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, "Lviv", st.Snapshot.Place.City)
	assert.Equal(t, []string{"success", "stale"}, observer.seen())
}

func TestSession_FailureKeepsPreviousSnapshot(t *testing.T) {
	searcher := newFakeSearcher("Paris", "Atlantis")
	observer := &recordingObserver{}
	session := startSession(t, searcher, observer)

	require.NoError(t, session.Submit(context.Background(), "Paris"))
	searcher.gates["Paris"] <- reply{snapshot: snapshotFor("Paris")}
	waitForStatus(t, session, view.StatusRendered)

	require.NoError(t, session.Submit(context.Background(), "Atlantis"))
	searcher.gates["Atlantis"] <- reply{err: fmt.Errorf("%w: no match", weather.ErrNotFound)}

	st := waitForStatus(t, session, view.StatusIdle)
	assert.Equal(t, `City "Atlantis" was not found.`, st.Error)
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, "Paris", st.Snapshot.Place.City)
	assert.Equal(t, []string{"success", "not_found"}, observer.seen())
}

func TestSession_RefreshRepeatsLastSearch(t *testing.T) {
	searcher := newFakeSearcher("Paris")
	session := startSession(t, searcher, &recordingObserver{})

	require.NoError(t, session.Refresh(context.Background()))
	st, err := session.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, view.StatusIdle, st.Status)
	assert.Zero(t, searcher.callCount())

	require.NoError(t, session.Submit(context.Background(), "Paris"))
	searcher.gates["Paris"] <- reply{snapshot: snapshotFor("Paris")}
	waitForStatus(t, session, view.StatusRendered)

	require.NoError(t, session.Refresh(context.Background()))
	st = waitForStatus(t, session, view.StatusFetching)
	assert.Equal(t, uint64(2), st.Generation)
	assert.Equal(t, "Paris", st.Query)

	searcher.gates["Paris"] <- reply{snapshot: snapshotFor("Paris")}
	waitForStatus(t, session, view.StatusRendered)
	assert.Equal(t, 2, searcher.callCount())
}

func TestSession_ClosedAfterRunReturns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := view.NewSession(newFakeSearcher(), nil, zerolog.Nop(), time.Second)

	stopped := make(chan struct{})
	go func() {
		session.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.ErrorIs(t, session.Submit(context.Background(), "Paris"), view.ErrClosed)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty city", weather.ErrEmptyCity, "Please enter a city name."},
		{"not found", fmt.Errorf("wrap: %w", weather.ErrNotFound), `City "Oz" was not found.`},
		{"timeout", context.DeadlineExceeded, "The weather service took too long to answer. Please try again."},
		{
			"rate limit past deadline",
			fmt.Errorf("rate limit wait: %w: %w", context.DeadlineExceeded, errors.New("rate: Wait(n=1) would exceed context deadline")),
			"The weather service took too long to answer. Please try again.",
		},
		{"upstream", weather.ErrUpstream, "The weather service is unavailable right now. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, view.ErrorMessage("Oz", tt.err))
		})
	}
}
