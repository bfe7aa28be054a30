// Package cli is the application controller: it wires the local store, the
// network worker, the sync engine and the push manager together and drives
// them from a small interactive shell.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/notiapp/notiapp/internal/client/config"
	"github.com/notiapp/notiapp/internal/client/push"
	"github.com/notiapp/notiapp/internal/client/remote"
	"github.com/notiapp/notiapp/internal/client/storage"
	notesync "github.com/notiapp/notiapp/internal/client/sync"
	"github.com/notiapp/notiapp/internal/client/worker"
	"github.com/notiapp/notiapp/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"

	// ModeDegraded means the local store could not be opened. The shell
	// stays up so the user sees why nothing works, but every data command
	// refuses to run.
	ModeDegraded Mode = "degraded"
)

type App struct {
	config  *config.Config
	store   *storage.Store
	engine  *notesync.Engine
	pushMgr *push.Manager
	worker  *worker.Worker
	api     remote.Client
	log     logging.Logger

	// mode is written by the connectivity watcher goroutine and read by
	// the command loop, so every access goes through modeMu.
	modeMu sync.RWMutex
	mode   Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds the full client object graph. All network traffic goes
// through the worker: the API client uses it as its transport, so cache
// strategies and offline fallbacks apply uniformly.
func NewApp(ctx context.Context, c *config.Config, platform push.Platform, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NewDiscard()
	}

	a := &App{
		config: c,
		log:    log,
		mode:   ModeOffline,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	assets := make([]string, len(c.StaticAssets))
	for i, p := range c.StaticAssets {
		assets[i] = c.ServerBaseURL + p
	}

	a.worker = worker.New(worker.Options{
		Origin:            c.Origin,
		StaticGeneration:  c.StaticGeneration,
		DynamicGeneration: c.DynamicGeneration,
		StaticAssets:      assets,
		AppShell:          c.ServerBaseURL + c.AppShell,
		Display:           &consoleDisplay{out: a.out},
		Opener:            &consoleOpener{out: a.out},
		Logger:            log,
	})

	a.api = remote.NewHTTPClient(c.ServerBaseURL, a.worker)

	store, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		// keep running so the failure is visible; commands guard on this
		log.Error(ctx, "local store unavailable, starting degraded", "err", err)
		a.mode = ModeDegraded
		return a, nil
	}
	a.store = store

	a.engine = notesync.NewEngine(store.Notes, a.api, a.isOnline, log)
	a.pushMgr = push.NewManager(platform, a.api, store.Subscriptions, log)

	// the shell itself is a page: it receives worker broadcasts and files
	// incoming notifications into local history
	a.worker.Hub().Register(&appPage{app: a})

	return a, nil
}

// currentMode is the synchronized read side of the connectivity state.
func (a *App) currentMode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) isOnline() bool {
	return a.currentMode() == ModeOnline
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	if a.mode == mode {
		a.modeMu.Unlock()
		return
	}
	wasOffline := a.mode == ModeOffline
	a.mode = mode
	a.modeMu.Unlock()

	a.log.Info(ctx, "connectivity changed", "mode", string(mode))

	if mode == ModeOnline && wasOffline {
		go a.onReconnect(ctx)
	}
}

// onReconnect runs the reconnect-path sync and tells every attached page
// about the outcome.
func (a *App) onReconnect(ctx context.Context) {
	n, err := a.engine.SyncPending(ctx)
	if err != nil {
		a.log.Warn(ctx, "reconnect sync failed", "err", err)
		return
	}
	if n > 0 {
		a.worker.Hub().Broadcast(worker.Message{
			Type:    worker.MsgSyncComplete,
			Payload: map[string]any{"synced": n},
		})
	}
}

// Run installs and activates the worker, restores push state, starts the
// connectivity watcher and enters the shell. It returns when the user exits.
func (a *App) Run(ctx context.Context) {
	if a.currentMode() != ModeDegraded {
		if err := a.worker.Install(ctx); err != nil {
			// a failed install leaves the app uncached but functional
			a.log.Warn(ctx, "worker install failed", "err", err)
		} else if err := a.worker.Activate(ctx); err != nil {
			a.log.Warn(ctx, "worker activate failed", "err", err)
		}

		if _, err := a.pushMgr.Init(ctx); err != nil {
			a.log.Warn(ctx, "push init failed", "err", err)
		}

		a.checkOnline(ctx)
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	a.Root(ctx)
	a.worker.Wait()
	if a.store != nil {
		_ = a.store.Close()
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.api.Ping(pctx)
	cancel()

	if err != nil {
		if a.currentMode() == ModeOnline {
			a.setMode(ctx, ModeOffline)
		}
	} else {
		if a.currentMode() != ModeOnline {
			a.setMode(ctx, ModeOnline)
		}
	}
}

// StartOnlineStatusWatcher probes server reachability on a fixed interval
// and flips the mode on transitions. Coming back online triggers the
// reconnect-path sync.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
