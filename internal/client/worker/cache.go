package worker

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// CachedResponse is an immutable snapshot of an HTTP response. Entries are
// keyed by request URL; last write wins, which is safe because writes are
// whole-entry overwrites.
type CachedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// snapshotResponse drains resp.Body into a CachedResponse and replaces the
// body so the response stays usable by the caller.
func snapshotResponse(resp *http.Response) (*CachedResponse, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &CachedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// Response materializes the snapshot as a fresh *http.Response for req.
func (c *CachedResponse) Response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode:    c.StatusCode,
		Status:        http.StatusText(c.StatusCode),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        c.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(c.Body)),
		ContentLength: int64(len(c.Body)),
		Request:       req,
	}
}

// CacheStore holds named cache generations. Exactly one static and one
// dynamic generation are live at a time; Purge removes everything else on
// activation.
type CacheStore struct {
	mu   sync.RWMutex
	gens map[string]map[string]*CachedResponse
}

func NewCacheStore() *CacheStore {
	return &CacheStore{gens: make(map[string]map[string]*CachedResponse)}
}

// Put stores entry under url in the named generation, creating the
// generation on first use.
func (s *CacheStore) Put(gen, url string, entry *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gens[gen]
	if !ok {
		g = make(map[string]*CachedResponse)
		s.gens[gen] = g
	}
	g[url] = entry
}

// PutAll commits a whole batch of entries into the named generation at once.
// Used by install to make static population all-or-nothing.
func (s *CacheStore) PutAll(gen string, entries map[string]*CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gens[gen]
	if !ok {
		g = make(map[string]*CachedResponse, len(entries))
		s.gens[gen] = g
	}
	for url, e := range entries {
		g[url] = e
	}
}

// Get looks url up in one named generation.
func (s *CacheStore) Get(gen, url string) (*CachedResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.gens[gen][url]
	return e, ok
}

// Match looks url up across the given generations in order and returns the
// first hit.
func (s *CacheStore) Match(url string, gens ...string) (*CachedResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, gen := range gens {
		if e, ok := s.gens[gen][url]; ok {
			return e, true
		}
	}
	return nil, false
}

// Names returns the names of every generation currently present.
func (s *CacheStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.gens))
	for name := range s.gens {
		out = append(out, name)
	}
	return out
}

// Delete removes a whole generation. Reports whether it existed.
func (s *CacheStore) Delete(gen string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.gens[gen]
	delete(s.gens, gen)
	return ok
}

// PurgeExcept deletes every generation whose name is not in keep and returns
// the deleted names.
func (s *CacheStore) PurgeExcept(keep ...string) []string {
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []string
	for name := range s.gens {
		if _, ok := keepSet[name]; !ok {
			delete(s.gens, name)
			deleted = append(deleted, name)
		}
	}
	return deleted
}
