package state

import (
	"sync"
	"testing"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recs(names ...string) []dataset.Record {
	out := make([]dataset.Record, len(names))
	for i, n := range names {
		out[i] = dataset.NewRecord(n, "Area", "Region", dataset.NullAsMissing)
	}
	return out
}

func countries(rs []dataset.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Country
	}
	return out
}

func TestStaleLoadCannotClobberNewer(t *testing.T) {
	s := New()
	slow := s.Begin()
	fast := s.Begin()

	require.True(t, s.Commit(fast, "fast.csv", recs("A", "B")))
	assert.False(t, s.Commit(slow, "slow.csv", recs("Z")))

	got, src := s.Snapshot()
	assert.Equal(t, "fast.csv", src)
	assert.Equal(t, []string{"A", "B"}, countries(got))
	assert.Equal(t, fast, s.Generation())
}

func TestCommitTwiceIsRejected(t *testing.T) {
	s := New()
	gen := s.Begin()
	require.True(t, s.Commit(gen, "a", recs("A")))
	assert.False(t, s.Commit(gen, "b", recs("B")))
	_, src := s.Snapshot()
	assert.Equal(t, "a", src)
}

func TestSupersededLoadBeforeCommit(t *testing.T) {
	s := New()
	first := s.Begin()
	_ = s.Begin() // newer load still in flight
	assert.False(t, s.Commit(first, "first", recs("A")))
	assert.Zero(t, s.Len())
}

func TestPrependKeepsDuplicates(t *testing.T) {
	s := New()
	s.Replace("sample", recs("A", "B"))
	s.Prepend(recs("A")[0])
	got, _ := s.Snapshot()
	assert.Equal(t, []string{"A", "A", "B"}, countries(got))
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.Replace("x", recs("A"))
	got, _ := s.Snapshot()
	got[0].Country = "mutated"
	again, _ := s.Snapshot()
	assert.Equal(t, "A", again[0].Country)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Replace("w", recs("A", "B", "C"))
			s.Prepend(recs("M")[0])
		}()
		go func() {
			defer wg.Done()
			got, _ := s.Snapshot()
			for _, r := range got {
				assert.NotEmpty(t, r.Country)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(8), s.Generation())
}
