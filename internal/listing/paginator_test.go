package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves keys in lexical order with an index-based continuation token.
type fakeLister struct {
	mu    sync.Mutex
	keys  []ObjectEntry
	calls []ListInput
	err   error
}

func newFakeLister(entries []ObjectEntry) *fakeLister {
	sorted := append([]ObjectEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return &fakeLister{keys: sorted}
}

func (f *fakeLister) ListObjects(_ context.Context, in ListInput) (ListOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	if f.err != nil {
		return ListOutput{}, f.err
	}
	var matching []ObjectEntry
	for _, e := range f.keys {
		if strings.HasPrefix(e.Key, in.Prefix) {
			matching = append(matching, e)
		}
	}
	start := 0
	if in.ContinuationToken != "" {
		n, err := strconv.Atoi(in.ContinuationToken)
		if err != nil {
			return ListOutput{}, fmt.Errorf("bad token %q", in.ContinuationToken)
		}
		start = n
	}
	end := start + int(in.MaxKeys)
	if end >= len(matching) {
		return ListOutput{Entries: matching[start:]}, nil
	}
	return ListOutput{Entries: matching[start:end], NextToken: strconv.Itoa(end)}, nil
}

func manyEntries(n int) []ObjectEntry {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]ObjectEntry, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("file-%03d.txt", i)
		switch i % 3 {
		case 1:
			key = fmt.Sprintf("dir-%02d/file-%03d.txt", i%7, i)
		case 2:
			key = fmt.Sprintf("photos/%d/deep/%03d.jpg", i%5, i)
		}
		out = append(out, ObjectEntry{Key: key, LastModified: at.Add(time.Duration(i) * time.Minute)})
	}
	return out
}

func TestListPage_RequestShape(t *testing.T) {
	lister := newFakeLister(sampleEntries())
	p := NewPaginator(lister)

	_, state, err := p.ListPage(context.Background(), "a", "")
	require.NoError(t, err)
	assert.True(t, state.IsLastPage)
	assert.Empty(t, state.NextToken)

	require.Len(t, lister.calls, 1)
	assert.Equal(t, ListInput{Prefix: "a", MaxKeys: PageSize}, lister.calls[0])
}

func TestListPage_TokenAndLastPage(t *testing.T) {
	lister := newFakeLister(manyEntries(PageSize + 5))
	p := NewPaginator(lister)
	ctx := context.Background()

	first, state, err := p.ListPage(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, state.IsLastPage)
	assert.Equal(t, strconv.Itoa(PageSize), state.NextToken)
	assert.NotZero(t, first.Len())

	_, state, err = p.ListPage(ctx, "", state.NextToken)
	require.NoError(t, err)
	assert.True(t, state.IsLastPage)
	assert.Equal(t, strconv.Itoa(PageSize), lister.calls[1].ContinuationToken)
}

func TestListPage_Idempotent(t *testing.T) {
	lister := newFakeLister(manyEntries(100))
	p := NewPaginator(lister)
	ctx := context.Background()

	for _, token := range []string{"", "30", "60"} {
		a, sa, err := p.ListPage(ctx, "", token)
		require.NoError(t, err)
		b, sb, err := p.ListPage(ctx, "", token)
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
		assert.Equal(t, a.Directories(), b.Directories())
		assert.Equal(t, a.Files(), b.Files())
	}
}

func TestListPage_StoreErrorSurfaces(t *testing.T) {
	boom := errors.New("connection reset")
	lister := newFakeLister(nil)
	lister.err = boom
	p := NewPaginator(lister)

	_, _, err := p.ListPage(context.Background(), "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, lister.calls, 1, "no retries")
}

func TestAll_TerminatesAndMatchesUnpaginated(t *testing.T) {
	for _, n := range []int{0, 1, PageSize - 1, PageSize, PageSize + 1, 4*PageSize + 7} {
		for _, prefix := range []string{"", "photos", "photos/", "dir-03"} {
			t.Run(fmt.Sprintf("%d/%s", n, prefix), func(t *testing.T) {
				entries := manyEntries(n)
				lister := newFakeLister(entries)
				p := NewPaginator(lister)

				merged, pages, err := p.All(context.Background(), prefix)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, pages, 1)
				assert.Len(t, lister.calls, pages)

				want := Classify(entries, prefix)
				assert.Equal(t, want.Directories(), merged.Directories())
				assert.Equal(t, want.Files(), merged.Files())
			})
		}
	}
}

type stuckLister struct{ calls int }

func (s *stuckLister) ListObjects(_ context.Context, in ListInput) (ListOutput, error) {
	s.calls++
	return ListOutput{Entries: []ObjectEntry{{Key: "x"}}, NextToken: "same"}, nil
}

func TestAll_RepeatedTokenStops(t *testing.T) {
	s := &stuckLister{}
	_, _, err := NewPaginator(s).All(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 2, s.calls)
}
