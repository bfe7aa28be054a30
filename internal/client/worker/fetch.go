package worker

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/notiapp/notiapp/internal/metrics"
)

const offlineBody = `{"error":"Offline","message":"No cached data available"}`

// RoundTrip applies the routing table to every intercepted request:
//
//   - non-GET or foreign origin: pass through untouched
//   - GET under the API prefix: network-first with write-through caching
//   - any other GET: cache-first with background revalidation
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || req.URL.Host != w.origin {
		return w.base.RoundTrip(req)
	}

	if strings.HasPrefix(req.URL.Path, w.apiPrefix) {
		return w.networkFirst(req)
	}
	return w.cacheFirst(req)
}

// networkFirst tries the network, writing successful responses through into
// the dynamic generation. On network failure it falls back to any cached
// copy, and on a cache miss it synthesizes an offline error response so the
// caller sees a response, not a transport error.
func (w *Worker) networkFirst(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	// The health endpoint is the connectivity probe: a cached copy would
	// report a dead network as alive, so it is never written to the cache
	// and never served from it.
	probe := req.URL.Path == w.healthPath

	resp, err := w.base.RoundTrip(req)
	if err == nil {
		if !probe && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			entry, snapErr := snapshotResponse(resp)
			if snapErr != nil {
				return nil, snapErr
			}
			w.cache.Put(w.dynamicGen, url, entry)
		}
		return resp, nil
	}

	if entry, ok := w.cache.Match(url, w.dynamicGen, w.staticGen); ok && !probe {
		metrics.CacheLookupsTotal.WithLabelValues("network-first", "hit").Inc()
		metrics.FetchFallbacksTotal.WithLabelValues("network-first", "cache").Inc()
		return entry.Response(req), nil
	}

	metrics.CacheLookupsTotal.WithLabelValues("network-first", "miss").Inc()
	metrics.FetchFallbacksTotal.WithLabelValues("network-first", "offline").Inc()
	w.log.Debug(req.Context(), "network request failed, no cached copy", "url", url, "err", err)
	return synthesize(req, http.StatusServiceUnavailable, "application/json", offlineBody), nil
}

// cacheFirst serves from cache when possible, refreshing the entry from the
// network in the background (stale-while-revalidate). Cache misses go to the
// network; if that also fails the cached app shell is the last resort.
func (w *Worker) cacheFirst(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	if entry, ok := w.cache.Match(url, w.staticGen, w.dynamicGen); ok {
		metrics.CacheLookupsTotal.WithLabelValues("cache-first", "hit").Inc()
		w.refreshInBackground(url)
		return entry.Response(req), nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("cache-first", "miss").Inc()

	resp, err := w.base.RoundTrip(req)
	if err == nil {
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			entry, snapErr := snapshotResponse(resp)
			if snapErr != nil {
				return nil, snapErr
			}
			w.cache.Put(w.dynamicGen, url, entry)
		}
		return resp, nil
	}

	if shell, ok := w.cache.Match(w.appShell, w.staticGen, w.dynamicGen); ok {
		metrics.FetchFallbacksTotal.WithLabelValues("cache-first", "shell").Inc()
		return shell.Response(req), nil
	}

	metrics.FetchFallbacksTotal.WithLabelValues("cache-first", "offline").Inc()
	return synthesize(req, http.StatusServiceUnavailable, "text/plain", "Offline"), nil
}

// refreshInBackground revalidates a cached entry without blocking the
// response. The refresh uses a fresh context: the page's request may be
// long gone by the time it completes, and the worker's own lifecycle keeps
// it alive.
func (w *Worker) refreshInBackground(url string) {
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
		if err != nil {
			return
		}
		resp, err := w.base.RoundTrip(req)
		if err != nil {
			// silently fail, the entry will be refreshed next time
			return
		}
		entry, err := snapshotResponse(resp)
		if err != nil {
			return
		}
		if entry.StatusCode >= 200 && entry.StatusCode <= 299 {
			w.cache.Put(w.staticGen, url, entry)
		}
	}()
}

// synthesize builds an offline response from whole cloth so callers can
// handle connectivity loss through the normal response path.
func synthesize(req *http.Request, status int, contentType, body string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
