package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/source"
	"github.com/KaramelBytes/speedatlas-cli/internal/state"
	"github.com/KaramelBytes/speedatlas-cli/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gated blocks in Load until release is closed.
type gated struct {
	name    string
	started chan struct{}
	release chan struct{}
}

func (g gated) Name() string { return g.name }

func (g gated) Load(ctx context.Context, opt dataset.Options) (dataset.Result, error) {
	close(g.started)
	<-g.release
	return source.Sample{}.Load(ctx, opt)
}

type failing struct{}

func (failing) Name() string { return "broken" }

func (failing) Load(context.Context, dataset.Options) (dataset.Result, error) {
	return dataset.Result{}, &source.AcquisitionError{Source: "broken", Err: errors.New("boom")}
}

func TestLoadSample(t *testing.T) {
	store := state.New()
	out, err := Load(context.Background(), store, source.Sample{}, dataset.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, "sample", out.Source)
	assert.Equal(t, out.Records, store.Len())
	assert.Equal(t, uint64(1), out.Generation)
}

func TestLoadPrependsWorkspaceEntries(t *testing.T) {
	ws := workspace.New("ws", "", t.TempDir())
	rec := dataset.NewRecord("Nepal", "Asia", "Southern Asia", dataset.NullAsMissing)
	_, err := ws.AddEntry(rec)
	require.NoError(t, err)

	store := state.New()
	out, err := Load(context.Background(), store, source.Sample{}, dataset.DefaultOptions(), ws)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Manual)
	got, _ := store.Snapshot()
	assert.Equal(t, "Nepal", got[0].Country)
	assert.True(t, got[0].Manual)
}

func TestFailedLoadKeepsPreviousSet(t *testing.T) {
	store := state.New()
	_, err := Load(context.Background(), store, source.Sample{}, dataset.DefaultOptions(), nil)
	require.NoError(t, err)
	before := store.Len()

	_, err = Load(context.Background(), store, failing{}, dataset.DefaultOptions(), nil)
	var acq *source.AcquisitionError
	require.ErrorAs(t, err, &acq)
	assert.Equal(t, before, store.Len())
}

func TestSlowLoadIsSuperseded(t *testing.T) {
	store := state.New()
	slow := gated{name: "slow", started: make(chan struct{}), release: make(chan struct{})}
	errc := make(chan error, 1)
	go func() {
		_, err := Load(context.Background(), store, slow, dataset.DefaultOptions(), nil)
		errc <- err
	}()
	<-slow.started

	_, err := Load(context.Background(), store, source.File{Path: "/nonexistent"}, dataset.DefaultOptions(), nil)
	require.Error(t, err)
	fast, err := Load(context.Background(), store, source.Sample{}, dataset.DefaultOptions(), nil)
	require.NoError(t, err)

	close(slow.release)
	assert.ErrorIs(t, <-errc, ErrSuperseded)
	_, src := store.Snapshot()
	assert.Equal(t, "sample", src)
	assert.Equal(t, fast.Generation, store.Generation())
}
