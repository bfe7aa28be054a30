package worker

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(body string) *CachedResponse {
	h := http.Header{}
	h.Set("Content-Type", "text/plain")
	return &CachedResponse{StatusCode: 200, Header: h, Body: []byte(body)}
}

func TestCacheStore_MatchSearchesGenerationsInOrder(t *testing.T) {
	s := NewCacheStore()
	s.Put("static", "/a", entry("from-static"))
	s.Put("dynamic", "/a", entry("from-dynamic"))

	e, ok := s.Match("/a", "static", "dynamic")
	require.True(t, ok)
	assert.Equal(t, "from-static", string(e.Body))

	e, ok = s.Match("/a", "dynamic", "static")
	require.True(t, ok)
	assert.Equal(t, "from-dynamic", string(e.Body))

	_, ok = s.Match("/missing", "static", "dynamic")
	assert.False(t, ok)
}

func TestCacheStore_LastWriteWins(t *testing.T) {
	s := NewCacheStore()
	s.Put("dynamic", "/a", entry("one"))
	s.Put("dynamic", "/a", entry("two"))

	e, ok := s.Get("dynamic", "/a")
	require.True(t, ok)
	assert.Equal(t, "two", string(e.Body))
}

func TestCacheStore_PurgeExcept(t *testing.T) {
	s := NewCacheStore()
	s.Put("static-v1", "/a", entry("x"))
	s.Put("dynamic-v1", "/b", entry("y"))
	s.Put("static-v0", "/c", entry("z"))

	deleted := s.PurgeExcept("static-v1", "dynamic-v1")
	assert.Equal(t, []string{"static-v0"}, deleted)
	assert.ElementsMatch(t, []string{"static-v1", "dynamic-v1"}, s.Names())
}

func TestSnapshotResponse_KeepsBodyReadable(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader("payload")),
	}

	snap, err := snapshotResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(snap.Body))

	// the original response body is still consumable
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))

	// and the snapshot materializes independent responses
	req, _ := http.NewRequest(http.MethodGet, "http://x/", nil)
	r1 := snap.Response(req)
	b1, _ := io.ReadAll(r1.Body)
	assert.Equal(t, "payload", string(b1))
}
