package item

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendAssignsSequentialIndices(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, s.Append(fmt.Sprintf("line %d", i)))
	}
	assert.Equal(t, 10, s.Len())
}

func TestSnapshotIsStableWhileStoreGrows(t *testing.T) {
	s := NewStore()
	s.Append("a")
	s.Append("b")

	snap := s.Snapshot()
	require.Equal(t, 2, snap.Len())

	s.Append("c")
	s.Append("d")

	// The earlier snapshot must not see the new items.
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, "a", snap.At(0).Text)
	assert.Equal(t, "b", snap.At(1).Text)

	// A later snapshot is a superset of the earlier one.
	later := s.Snapshot()
	require.Equal(t, 4, later.Len())
	for i := 0; i < snap.Len(); i++ {
		assert.Same(t, snap.At(i), later.At(i))
	}
}

func TestStoreConcurrentAppendAndSnapshot(t *testing.T) {
	s := NewStore()
	const total = 2000

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			s.Append(fmt.Sprintf("item-%d", i))
		}
	}()
	go func() {
		defer wg.Done()
		prev := 0
		for i := 0; i < 500; i++ {
			snap := s.Snapshot()
			// Snapshots never shrink.
			if snap.Len() < prev {
				t.Errorf("snapshot shrank: %d -> %d", prev, snap.Len())
				return
			}
			prev = snap.Len()
			for j := 0; j < snap.Len(); j++ {
				if snap.At(j).Index != j {
					t.Errorf("index mismatch at %d", j)
					return
				}
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, total, s.Len())
}

func TestSeal(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Sealed())
	s.Seal()
	assert.True(t, s.Sealed())
}

func TestWhitespaceFieldSplitting(t *testing.T) {
	s := NewStore(WithDelimiter(" "))
	s.Append("  foo   bar\tbaz ")
	it := s.Snapshot().At(0)

	spans := it.Spans()
	require.Len(t, spans, 3)

	f, start, ok := it.Field(1)
	require.True(t, ok)
	assert.Equal(t, "bar", string(f))
	assert.Equal(t, 8, start)

	_, _, ok = it.Field(3)
	assert.False(t, ok)
}

func TestCustomDelimiterSplitting(t *testing.T) {
	s := NewStore(WithDelimiter(":"))
	s.Append("root:x:0")
	it := s.Snapshot().At(0)

	require.Len(t, it.Spans(), 3)
	f, start, ok := it.Field(2)
	require.True(t, ok)
	assert.Equal(t, "0", string(f))
	assert.Equal(t, 7, start)
}

func TestCustomDelimiterEmptyFields(t *testing.T) {
	s := NewStore(WithDelimiter(":"))
	s.Append("a::b")
	it := s.Snapshot().At(0)

	require.Len(t, it.Spans(), 3)
	f, _, ok := it.Field(1)
	require.True(t, ok)
	assert.Equal(t, "", string(f))
}

func TestTrimLineEnding(t *testing.T) {
	assert.Equal(t, "foo", TrimLineEnding("foo\n"))
	assert.Equal(t, "foo", TrimLineEnding("foo\r\n"))
	assert.Equal(t, "foo", TrimLineEnding("foo"))
}
