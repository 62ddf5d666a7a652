package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	ids      []string
	listErr  error
	emails   map[string]*EmailRecord
	fetchErr map[string]error
}

func (f *fakeSource) ListIDs(_ context.Context, max int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.ids) > max {
		return f.ids[:max], nil
	}
	return f.ids, nil
}

func (f *fakeSource) Fetch(_ context.Context, id string) (*EmailRecord, error) {
	if err := f.fetchErr[id]; err != nil {
		return nil, err
	}
	email, ok := f.emails[id]
	if !ok {
		return nil, errors.New("no such message")
	}
	return email, nil
}

type fakeStore struct {
	seen          map[string]bool
	lastProcessed string
	addErr        error
}

func (f *fakeStore) Contains(_ context.Context, id string) (bool, error) {
	return f.seen[id], nil
}

func (f *fakeStore) Add(_ context.Context, id string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.seen[id] = true
	return nil
}

func (f *fakeStore) SetLastProcessed(_ context.Context, id string) error {
	f.lastProcessed = id
	return nil
}

func (f *fakeStore) LastProcessed(_ context.Context) (string, error) {
	return f.lastProcessed, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeSink struct {
	published []string
}

func (f *fakeSink) Publish(email *EmailRecord, _ *ProcessedEmailResult) {
	f.published = append(f.published, email.ID)
}

func newRunnerFixture(t *testing.T, source *fakeSource, store *fakeStore, reasoner *fakeReasoner) (*Runner, *fakeSink) {
	t.Helper()
	if reasoner == nil {
		reasoner = validReasoner()
	}
	service := newTestService(t, reasoner, &fakeFinder{}, nil, false)
	sink := &fakeSink{}
	return NewRunner(source, store, service, sink, zap.NewNop(), 50), sink
}

func TestRunProcessesNewEmails(t *testing.T) {
	source := &fakeSource{
		ids: []string{"a", "b"},
		emails: map[string]*EmailRecord{
			"a": {ID: "a", Body: "first"},
			"b": {ID: "b", Body: "second"},
		},
	}
	store := &fakeStore{seen: map[string]bool{}}
	runner, sink := newRunnerFixture(t, source, store, nil)

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunStats{Listed: 2, Processed: 2}, stats)
	assert.True(t, store.seen["a"])
	assert.True(t, store.seen["b"])
	assert.Equal(t, "b", store.lastProcessed)
	assert.Equal(t, []string{"a", "b"}, sink.published)
}

func TestRunSkipsAlreadyProcessed(t *testing.T) {
	source := &fakeSource{
		ids: []string{"a", "b"},
		emails: map[string]*EmailRecord{
			"b": {ID: "b", Body: "second"},
		},
	}
	store := &fakeStore{seen: map[string]bool{"a": true}}
	runner, sink := newRunnerFixture(t, source, store, nil)

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunStats{Listed: 2, Skipped: 1, Processed: 1}, stats)
	assert.Equal(t, []string{"b"}, sink.published)
}

func TestRunContinuesAfterFetchFailure(t *testing.T) {
	source := &fakeSource{
		ids: []string{"a", "b"},
		emails: map[string]*EmailRecord{
			"b": {ID: "b", Body: "second"},
		},
		fetchErr: map[string]error{"a": errors.New("transient")},
	}
	store := &fakeStore{seen: map[string]bool{}}
	runner, _ := newRunnerFixture(t, source, store, nil)

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunStats{Listed: 2, Processed: 1, Failed: 1}, stats)
	assert.False(t, store.seen["a"], "failed email must stay unprocessed")
	assert.True(t, store.seen["b"])
}

func TestRunContinuesAfterProcessFailure(t *testing.T) {
	source := &fakeSource{
		ids: []string{"a", "b"},
		emails: map[string]*EmailRecord{
			"a": {ID: "a", Body: "first"},
			"b": {ID: "b", Body: "second"},
		},
	}
	store := &fakeStore{seen: map[string]bool{}}

	reasoner := validReasoner()
	reasoner.extractErr = errors.New("provider unreachable")
	runner, sink := newRunnerFixture(t, source, store, reasoner)

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunStats{Listed: 2, Failed: 2}, stats)
	assert.Empty(t, store.seen)
	assert.Empty(t, sink.published)
	assert.Empty(t, store.lastProcessed)
}

func TestRunAbortsWhenListingFails(t *testing.T) {
	source := &fakeSource{listErr: errors.New("mailbox down")}
	store := &fakeStore{seen: map[string]bool{}}
	runner, _ := newRunnerFixture(t, source, store, nil)

	_, err := runner.Run(context.Background())
	assert.Error(t, err)
}

func TestRunAbortsWhenPersistenceFails(t *testing.T) {
	source := &fakeSource{
		ids: []string{"a"},
		emails: map[string]*EmailRecord{
			"a": {ID: "a", Body: "first"},
		},
	}
	store := &fakeStore{seen: map[string]bool{}, addErr: errors.New("disk full")}
	runner, _ := newRunnerFixture(t, source, store, nil)

	stats, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, stats.Processed)
}

func TestRunHonorsMaxEmails(t *testing.T) {
	source := &fakeSource{
		ids: []string{"a", "b", "c"},
		emails: map[string]*EmailRecord{
			"a": {ID: "a", Body: "first"},
			"b": {ID: "b", Body: "second"},
		},
	}
	store := &fakeStore{seen: map[string]bool{}}
	service := newTestService(t, validReasoner(), &fakeFinder{}, nil, false)
	runner := NewRunner(source, store, service, nil, zap.NewNop(), 2)

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Listed)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	source := &fakeSource{
		ids: []string{"a"},
		emails: map[string]*EmailRecord{
			"a": {ID: "a", Body: "first"},
		},
	}
	store := &fakeStore{seen: map[string]bool{}}
	runner, _ := newRunnerFixture(t, source, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
