package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, w *Worker, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := w.RoundTrip(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return string(b)
}

func TestRoundTrip_PassThroughNonGET(t *testing.T) {
	tr := newFakeTransport()
	tr.set("http://"+testOrigin+"/api/data/save", "saved")
	w := testWorker(t, tr)

	req, err := http.NewRequest(http.MethodPost, "http://"+testOrigin+"/api/data/save", nil)
	require.NoError(t, err)
	resp, err := w.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// nothing cached for a pass-through
	_, ok := w.Cache().Get("notiapp-dynamic-v1", "http://"+testOrigin+"/api/data/save")
	assert.False(t, ok)
}

func TestRoundTrip_PassThroughForeignOrigin(t *testing.T) {
	tr := newFakeTransport()
	tr.set("http://cdn.example/lib.js", "lib")
	w := testWorker(t, tr)

	resp := get(t, w, "http://cdn.example/lib.js")
	assert.Equal(t, "lib", readBody(t, resp))

	_, ok := w.Cache().Get("notiapp-dynamic-v1", "http://cdn.example/lib.js")
	assert.False(t, ok)
}

func TestNetworkFirst_OnlineWritesThrough(t *testing.T) {
	tr := newFakeTransport()
	url := "http://" + testOrigin + "/api/data/list"
	tr.set(url, `{"items":[]}`)
	w := testWorker(t, tr)

	resp := get(t, w, url)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"items":[]}`, readBody(t, resp))

	entry, ok := w.Cache().Get("notiapp-dynamic-v1", url)
	require.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(entry.Body))
}

func TestNetworkFirst_OfflineFallsBackToCache(t *testing.T) {
	tr := newFakeTransport()
	url := "http://" + testOrigin + "/api/data/list"
	tr.set(url, `{"items":["a"]}`)
	w := testWorker(t, tr)

	// warm the dynamic cache, then lose the network
	_ = readBody(t, get(t, w, url))
	tr.setOffline(true)

	resp := get(t, w, url)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"items":["a"]}`, readBody(t, resp))
}

func TestNetworkFirst_OfflineCacheMissSynthesizes503(t *testing.T) {
	tr := newFakeTransport()
	tr.setOffline(true)
	w := testWorker(t, tr)

	resp := get(t, w, "http://"+testOrigin+"/api/data/list")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
	assert.Equal(t, "Offline", body["error"])
}

func TestNetworkFirst_HealthProbeNeverCached(t *testing.T) {
	tr := newFakeTransport()
	url := "http://" + testOrigin + "/api/health"
	tr.set(url, `{"ok":true}`)
	w := testWorker(t, tr)

	resp := get(t, w, url)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, readBody(t, resp))

	_, ok := w.Cache().Get("notiapp-dynamic-v1", url)
	assert.False(t, ok, "health responses must not be written through")
}

func TestNetworkFirst_HealthProbeIgnoresCacheWhenOffline(t *testing.T) {
	tr := newFakeTransport()
	url := "http://" + testOrigin + "/api/health"
	tr.set(url, `{"ok":true}`)
	w := testWorker(t, tr)

	// even a cached copy from another source must not mask the outage
	entry, err := snapshotResponse(&http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
	})
	require.NoError(t, err)
	w.Cache().Put("notiapp-dynamic-v1", url, entry)

	tr.setOffline(true)

	resp := get(t, w, url)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCacheFirst_HitServesCachedAndRevalidates(t *testing.T) {
	tr := newFakeTransport()
	seedShell(tr)
	w := testWorker(t, tr)
	require.NoError(t, w.Install(context.Background()))

	url := "http://" + testOrigin + "/styles.css"
	tr.set(url, "body{color:red}") // network now has a newer copy

	resp := get(t, w, url)
	assert.Equal(t, "body{}", readBody(t, resp), "stale copy served immediately")

	w.Wait() // drain the background refresh

	entry, ok := w.Cache().Get("notiapp-static-v1", url)
	require.True(t, ok)
	assert.Equal(t, "body{color:red}", string(entry.Body), "cache revalidated in background")
}

func TestCacheFirst_MissFetchesAndCachesDynamic(t *testing.T) {
	tr := newFakeTransport()
	url := "http://" + testOrigin + "/photo.png"
	tr.set(url, "png-bytes")
	w := testWorker(t, tr)

	resp := get(t, w, url)
	assert.Equal(t, "png-bytes", readBody(t, resp))

	entry, ok := w.Cache().Get("notiapp-dynamic-v1", url)
	require.True(t, ok)
	assert.Equal(t, "png-bytes", string(entry.Body))
}

func TestCacheFirst_OfflineMissFallsBackToShell(t *testing.T) {
	tr := newFakeTransport()
	seedShell(tr)
	w := testWorker(t, tr)
	require.NoError(t, w.Install(context.Background()))

	tr.setOffline(true)

	resp := get(t, w, "http://"+testOrigin+"/some/page")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>shell</html>", readBody(t, resp))
}

func TestCacheFirst_OfflineNoShellSynthesizes503(t *testing.T) {
	tr := newFakeTransport()
	tr.setOffline(true)
	w := testWorker(t, tr) // never installed, no shell cached

	resp := get(t, w, "http://"+testOrigin+"/some/page")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Offline", readBody(t, resp))
}

func TestRouting_IsDeterministic(t *testing.T) {
	// same request set, same connectivity, same outcomes - run twice
	for run := 0; run < 2; run++ {
		tr := newFakeTransport()
		seedShell(tr)
		w := testWorker(t, tr)
		require.NoError(t, w.Install(context.Background()))
		tr.setOffline(true)

		api := get(t, w, "http://"+testOrigin+"/api/data/list")
		assert.Equal(t, http.StatusServiceUnavailable, api.StatusCode)

		static := get(t, w, "http://"+testOrigin+"/styles.css")
		assert.Equal(t, http.StatusOK, static.StatusCode)

		page := get(t, w, "http://"+testOrigin+"/unknown")
		assert.Equal(t, http.StatusOK, page.StatusCode)
		assert.Equal(t, "<html>shell</html>", readBody(t, page))
	}
}
