package buffer

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpdateAndGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, ok := s.Get("file:///a.nuspec")
	assert.False(t, ok)

	first := s.Update("file:///a.nuspec", 1, "<package/>")
	got, ok := s.Get("file:///a.nuspec")
	require.True(t, ok)
	assert.Same(t, first, got)

	second := s.Update("file:///a.nuspec", 2, "<package></package>")
	got, ok = s.Get("file:///a.nuspec")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, int32(2), got.Version)

	// The earlier snapshot is untouched by the replacement.
	assert.Equal(t, "<package/>", first.Text)
	assert.Equal(t, int32(1), first.Version)
}

func TestStore_Close(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Update("file:///a.nuspec", 1, "a")
	s.Update("file:///b.nuspec", 1, "b")

	s.Close("file:///a.nuspec")
	s.Close("file:///unknown.nuspec")

	_, ok := s.Get("file:///a.nuspec")
	assert.False(t, ok)
	assert.Equal(t, []string{"file:///b.nuspec"}, s.URIs())
}

func TestStore_ConcurrentUpdatesNeverTear(t *testing.T) {
	t.Parallel()

	s := NewStore()
	const (
		docs    = 8
		updates = 200
	)

	var wg sync.WaitGroup
	for d := range docs {
		uri := fmt.Sprintf("file:///doc%d.nuspec", d)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range updates {
				// Text is derived from the version so a torn read is detectable.
				s.Update(uri, int32(i), strings.Repeat("x", i))
			}
		}()
		go func() {
			defer wg.Done()
			for range updates {
				if b, ok := s.Get(uri); ok {
					assert.Len(t, b.Text, int(b.Version))
					assert.Equal(t, uri, b.URI)
				}
			}
		}()
	}
	wg.Wait()

	for d := range docs {
		b, ok := s.Get(fmt.Sprintf("file:///doc%d.nuspec", d))
		require.True(t, ok)
		assert.Equal(t, int32(updates-1), b.Version)
	}
	assert.Len(t, s.URIs(), docs)
}
