package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notiapp/notiapp/internal/client/config"
	"github.com/notiapp/notiapp/internal/client/models"
	"github.com/notiapp/notiapp/internal/client/push"
	"github.com/notiapp/notiapp/internal/client/remote"
	"github.com/notiapp/notiapp/internal/client/storage"
	notesync "github.com/notiapp/notiapp/internal/client/sync"
	"github.com/notiapp/notiapp/internal/client/worker"
	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/logging"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

type fakeRemote struct {
	saved      map[string]string
	vapidKey   string
	saveErr    error
	pingErr    error
	sendErr    error
	subscribed int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{saved: make(map[string]string), vapidKey: "BTestKey"}
}

func (f *fakeRemote) SaveNote(ctx context.Context, clientID, text string) (*remote.SaveResult, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved[clientID] = text
	return &remote.SaveResult{Success: true, ID: clientID}, nil
}

func (f *fakeRemote) SyncNotes(ctx context.Context, items []remote.SyncItem) (*remote.SyncResult, error) {
	res := &remote.SyncResult{Success: true}
	for _, it := range items {
		status := remote.StatusSynced
		if _, dup := f.saved[it.ClientId]; dup {
			status = remote.StatusAlreadyExists
		}
		f.saved[it.ClientId] = it.Text
		res.Results = append(res.Results, remote.SyncItemResult{ClientId: it.ClientId, Status: status})
		res.Synced++
	}
	return res, nil
}

func (f *fakeRemote) Subscribe(ctx context.Context, sub remote.WebSubscription, user remote.UserData) error {
	f.subscribed++
	return nil
}

func (f *fakeRemote) Unsubscribe(ctx context.Context, endpoint string) error { return nil }

func (f *fakeRemote) SendNotification(ctx context.Context, endpoint string, n remote.Notification) error {
	return f.sendErr
}

func (f *fakeRemote) VAPIDPublicKey(ctx context.Context) (string, error) { return f.vapidKey, nil }

func (f *fakeRemote) Ping(ctx context.Context) error { return f.pingErr }

type fakePlatform struct {
	current *push.PlatformSubscription
}

func (p *fakePlatform) Supported() bool    { return true }
func (p *fakePlatform) Permission() string { return push.PermissionGranted }

func (p *fakePlatform) RequestPermission(ctx context.Context) (string, error) {
	return push.PermissionGranted, nil
}

func (p *fakePlatform) Subscribe(ctx context.Context, vapidKey string) (*push.PlatformSubscription, error) {
	p.current = &push.PlatformSubscription{
		Endpoint: "https://push.example/ep-1",
		Keys:     models.SubscriptionKeys{P256dh: "pk", Auth: "ak"},
	}
	return p.current, nil
}

func (p *fakePlatform) Unsubscribe(ctx context.Context) error {
	p.current = nil
	return nil
}

func (p *fakePlatform) Current(ctx context.Context) (*push.PlatformSubscription, error) {
	return p.current, nil
}

func newTestApp(t *testing.T, api remote.Client, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	out := &bytes.Buffer{}
	a := &App{
		config: cfg,
		store:  store,
		api:    api,
		log:    logging.NewDiscard(),
		mode:   ModeOnline,
		reader: readerFromLines(lines...),
		out:    out,
	}
	a.worker = worker.New(worker.Options{
		Origin:            "127.0.0.1:8080",
		StaticGeneration:  cfg.StaticGeneration,
		DynamicGeneration: cfg.DynamicGeneration,
		Display:           &consoleDisplay{out: out},
		Opener:            &consoleOpener{out: out},
	})
	a.engine = notesync.NewEngine(store.Notes, api, a.isOnline, nil)
	a.pushMgr = push.NewManager(&fakePlatform{}, api, store.Subscriptions, nil)
	a.worker.Hub().Register(&appPage{app: a})
	return a, out
}

// ------------ tests ------------

func TestAddNote_OnlineSyncsImmediately(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "buy milk", "")
	ctx := context.Background()

	a.addNote(ctx)

	assert.Contains(t, out.String(), "(synced)")
	assert.Len(t, api.saved, 1)

	notes, err := a.store.Notes.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Synced)
}

func TestAddNote_OfflineStaysLocal(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "offline thought", "")
	a.mode = ModeOffline
	ctx := context.Background()

	a.addNote(ctx)

	assert.Contains(t, out.String(), "will sync when online")
	assert.Empty(t, api.saved)

	notes, err := a.store.Notes.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.False(t, notes[0].Synced)
}

func TestSync_PushesPendingAndBroadcasts(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "first", "", "second", "")
	a.mode = ModeOffline
	ctx := context.Background()

	a.addNote(ctx)
	a.addNote(ctx)
	require.Empty(t, api.saved)

	a.mode = ModeOnline
	a.sync(ctx)

	assert.Contains(t, out.String(), "synced 2 note(s)")
	assert.Contains(t, out.String(), "[sync] 2 note(s) synced to server")
	assert.Len(t, api.saved, 2)
}

func TestSync_NothingPending(t *testing.T) {
	a, out := newTestApp(t, newFakeRemote())

	a.sync(context.Background())

	assert.Contains(t, out.String(), "nothing to sync")
}

func TestList_ShowsSyncMarkers(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "synced note", "", "pending note", "")
	ctx := context.Background()

	a.addNote(ctx)
	a.mode = ModeOffline
	a.addNote(ctx)

	a.list(ctx)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var starred, blank int
	for _, l := range lines {
		if strings.HasPrefix(l, "* ") {
			starred++
		}
		if strings.HasPrefix(l, "  ") {
			blank++
		}
	}
	assert.Equal(t, 1, starred)
	assert.Equal(t, 1, blank)
}

func TestDeleteNote(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "to be removed", "")
	ctx := context.Background()

	a.addNote(ctx)
	notes, err := a.store.Notes.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	a.deleteNote(ctx, "not-a-number")
	assert.Contains(t, out.String(), "Usage: del <id>")

	a.deleteNote(ctx, "1")
	notes, err = a.store.Notes.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNotificationBroadcast_IsFiledIntoHistory(t *testing.T) {
	a, out := newTestApp(t, newFakeRemote())
	ctx := context.Background()

	a.worker.HandlePush(ctx, []byte(`{"title":"Offer","body":"50% off"}`))
	a.worker.Wait()

	assert.Contains(t, out.String(), "[notification] Offer: 50% off")

	history, err := a.store.Notifications.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Offer", history[0].Title)
	assert.False(t, history[0].Read)
}

func TestMarkRead_AndClearHistory(t *testing.T) {
	a, out := newTestApp(t, newFakeRemote())
	ctx := context.Background()

	a.worker.HandlePush(ctx, []byte(`{"title":"A","body":"b"}`))
	a.worker.Wait()

	history, err := a.store.Notifications.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	a.markRead(ctx, "not-a-number")
	assert.Contains(t, out.String(), "Usage: read <id>")

	a.markRead(ctx, "1")
	got, err := a.store.Notifications.GetByID(ctx, history[0].Id)
	require.NoError(t, err)
	assert.True(t, got.Read)

	a.clearHistory(ctx)
	history, err = a.store.Notifications.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubscribe_RoundTrip(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "Maria", "news, offers", "")
	ctx := context.Background()

	a.subscribe(ctx)
	assert.Contains(t, out.String(), "subscribed (https://push.example/ep-1)")
	assert.Equal(t, 1, api.subscribed)

	stored, err := a.store.Subscriptions.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Maria", stored.UserName)
	assert.Equal(t, []string{"news", "offers"}, stored.Preferences)

	a.unsubscribe(ctx)
	assert.Contains(t, out.String(), "unsubscribed")
	_, err = a.store.Subscriptions.Get(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSendTest_ExpiredSubscriptionMessage(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "Maria", "", "Hi", "There", "")
	ctx := context.Background()

	a.subscribe(ctx)
	api.sendErr = common.ErrSubscriptionExpired

	a.sendTest(ctx)
	assert.Contains(t, out.String(), "subscription expired and was removed")
}

func TestReconnect_SyncsPendingAndNotifiesPages(t *testing.T) {
	api := newFakeRemote()
	a, out := newTestApp(t, api, "queued while offline", "")
	a.mode = ModeOffline
	ctx := context.Background()

	a.addNote(ctx)
	require.Empty(t, api.saved)

	a.mode = ModeOnline
	a.onReconnect(ctx)

	assert.Len(t, api.saved, 1)
	assert.Contains(t, out.String(), "[sync] 1 note(s) synced to server")

	pending, err := a.store.Notes.GetUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMode_IsSafeForConcurrentUse(t *testing.T) {
	a, _ := newTestApp(t, newFakeRemote())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				a.setMode(ctx, ModeOffline)
				a.setMode(ctx, ModeOnline)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = a.isOnline()
				_ = a.getStatus()
			}
		}()
	}
	wg.Wait()
}

func TestDegradedMode_DataCommandsRefuse(t *testing.T) {
	out := &bytes.Buffer{}
	a := &App{mode: ModeDegraded, out: out, reader: readerFromLines()}

	a.addNote(context.Background())
	a.list(context.Background())
	a.sync(context.Background())

	assert.Equal(t, 3, strings.Count(out.String(), "data commands are disabled"))
}
