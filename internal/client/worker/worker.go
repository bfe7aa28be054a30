package worker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/notiapp/notiapp/internal/logging"
)

// State is the worker's lifecycle phase. Transitions only move forward:
// New -> Installing -> Installed -> Activating -> Activated, with Redundant
// as the terminal state of a replaced worker.
type State string

const (
	StateNew        State = "new"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

// Display renders a system notification. A failure to render is logged and
// swallowed: the push transport is at-most-once and cannot redeliver.
type Display interface {
	Show(ctx context.Context, title string, p PushPayload) error
}

// WindowOpener opens a new page when a notification is clicked and no page
// is attached.
type WindowOpener interface {
	OpenWindow(url string) error
}

// Options configures a Worker.
type Options struct {
	// Origin is the host[:port] the worker controls. Requests to any other
	// host pass through untouched.
	Origin string

	// APIPrefix selects the network-first route, "/api/" by default.
	APIPrefix string

	// StaticGeneration and DynamicGeneration name the two live cache
	// generations. Bumping the names is how a new app version purges the
	// old one on activation.
	StaticGeneration  string
	DynamicGeneration string

	// StaticAssets is the fixed asset list installed into the static
	// generation, as absolute URLs.
	StaticAssets []string

	// AppShell is the URL of the cached page used as the last-resort
	// offline fallback for navigation requests.
	AppShell string

	// Base performs the actual network I/O. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper

	Display Display
	Opener  WindowOpener
	Logger  logging.Logger
}

// Worker mediates all network traffic for the client. It implements
// http.RoundTripper so it can sit under any *http.Client.
type Worker struct {
	origin     string
	apiPrefix  string
	healthPath string
	staticGen  string
	dynamicGen string
	assets     []string
	appShell   string

	base    http.RoundTripper
	display Display
	opener  WindowOpener
	log     logging.Logger

	cache *CacheStore
	hub   *Hub

	mu    sync.Mutex
	state State

	// pending is the waitUntil analogue: event work registers here and
	// Wait drains it, so push handling runs to completion even when every
	// page is gone.
	pending sync.WaitGroup
}

func New(opts Options) *Worker {
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/"
	}
	if opts.Base == nil {
		opts.Base = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscard()
	}
	return &Worker{
		origin:     opts.Origin,
		apiPrefix:  opts.APIPrefix,
		healthPath: strings.TrimSuffix(opts.APIPrefix, "/") + "/health",
		staticGen:  opts.StaticGeneration,
		dynamicGen: opts.DynamicGeneration,
		assets:     opts.StaticAssets,
		appShell:   opts.AppShell,
		base:       opts.Base,
		display:    opts.Display,
		opener:     opts.Opener,
		log:        opts.Logger,
		cache:      NewCacheStore(),
		hub:        NewHub(),
		state:      StateNew,
	}
}

// State returns the current lifecycle phase.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Hub exposes the page registry so the controller can attach pages and
// broadcast its own messages (e.g. SYNC_COMPLETE).
func (w *Worker) Hub() *Hub {
	return w.hub
}

// Cache exposes the generation store, read-only use intended.
func (w *Worker) Cache() *CacheStore {
	return w.cache
}

// Install populates the static generation with the fixed asset list.
// Population is all-or-nothing: if any asset fails to fetch, nothing is
// committed and the worker stays uninstalled.
func (w *Worker) Install(ctx context.Context) error {
	w.setState(StateInstalling)

	staged := make(map[string]*CachedResponse, len(w.assets))
	for _, url := range w.assets {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			w.setState(StateNew)
			return fmt.Errorf("install: bad asset url %q: %w", url, err)
		}
		resp, err := w.base.RoundTrip(req)
		if err != nil {
			w.setState(StateNew)
			return fmt.Errorf("install: failed to fetch %q: %w", url, err)
		}
		entry, err := snapshotResponse(resp)
		if err != nil {
			w.setState(StateNew)
			return fmt.Errorf("install: failed to read %q: %w", url, err)
		}
		if entry.StatusCode < 200 || entry.StatusCode > 299 {
			w.setState(StateNew)
			return fmt.Errorf("install: asset %q returned %d", url, entry.StatusCode)
		}
		staged[url] = entry
	}

	w.cache.PutAll(w.staticGen, staged)
	w.setState(StateInstalled)
	w.log.Info(ctx, "worker installed", "assets", len(staged), "generation", w.staticGen)
	return nil
}

// Activate makes this worker the controlling one: every cache generation
// that is neither the current static nor the current dynamic one is purged.
// This is how app updates drop stale assets.
func (w *Worker) Activate(ctx context.Context) error {
	w.setState(StateActivating)

	deleted := w.cache.PurgeExcept(w.staticGen, w.dynamicGen)
	for _, name := range deleted {
		w.log.Info(ctx, "deleted old cache generation", "name", name)
	}

	w.setState(StateActivated)
	w.log.Info(ctx, "worker activated", "static", w.staticGen, "dynamic", w.dynamicGen)
	return nil
}

// Retire marks a replaced worker redundant.
func (w *Worker) Retire() {
	w.setState(StateRedundant)
}

// HandleMessage processes a page-to-worker message.
func (w *Worker) HandleMessage(ctx context.Context, msg Message) {
	switch msg.Type {
	case MsgSkipWaiting:
		// a waiting worker proceeds without waiting for pages to detach
		if w.State() == StateInstalled {
			if err := w.Activate(ctx); err != nil {
				w.log.Error(ctx, "skip-waiting activation failed", "err", err)
			}
		}

	case MsgCacheURLs:
		urls, _ := msg.Payload["urls"].([]any)
		for _, u := range urls {
			url, ok := u.(string)
			if !ok {
				continue
			}
			w.cacheURL(ctx, url)
		}

	case MsgClearCache:
		for _, name := range w.cache.Names() {
			w.cache.Delete(name)
		}
		w.log.Info(ctx, "all cache generations cleared")

	default:
		w.log.Warn(ctx, "unknown message type", "type", string(msg.Type))
	}
}

// cacheURL fetches url and stores it in the dynamic generation. Failures
// are logged and dropped; the page asked for opportunistic caching, not a
// guarantee.
func (w *Worker) cacheURL(ctx context.Context, url string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		w.log.Warn(ctx, "cache request failed", "url", url, "err", err)
		return
	}
	resp, err := w.base.RoundTrip(req)
	if err != nil {
		w.log.Warn(ctx, "cache fetch failed", "url", url, "err", err)
		return
	}
	entry, err := snapshotResponse(resp)
	if err != nil {
		w.log.Warn(ctx, "cache read failed", "url", url, "err", err)
		return
	}
	if entry.StatusCode >= 200 && entry.StatusCode <= 299 {
		w.cache.Put(w.dynamicGen, url, entry)
	}
}

// Wait blocks until all in-flight event work (push handling, background
// refreshes) has completed.
func (w *Worker) Wait() {
	w.pending.Wait()
}
