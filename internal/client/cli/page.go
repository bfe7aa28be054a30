package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/notiapp/notiapp/internal/client/models"
	"github.com/notiapp/notiapp/internal/client/worker"
)

// appPage attaches the shell to the worker's hub so it receives the same
// broadcasts a page would: it files incoming notifications into local
// history and surfaces sync completions.
type appPage struct {
	app *App
}

func (p *appPage) Send(msg worker.Message) error {
	a := p.app

	switch msg.Type {
	case worker.MsgNotificationReceived:
		n := &models.Notification{
			ReceivedAt: time.Now().UTC(),
		}
		n.Title, _ = msg.Payload["title"].(string)
		n.Body, _ = msg.Payload["body"].(string)
		if d, ok := msg.Payload["data"].(map[string]any); ok {
			n.Data = d
		}

		if a.store != nil {
			if err := a.store.Notifications.Add(context.Background(), n); err != nil {
				return err
			}
		}
		fmt.Fprintf(a.out, "\n[notification] %s: %s\n", n.Title, n.Body)

	case worker.MsgNotificationClicked:
		fmt.Fprintf(a.out, "\n[notification] opened %v\n", msg.Payload["url"])

	case worker.MsgSyncComplete:
		fmt.Fprintf(a.out, "\n[sync] %v note(s) synced to server\n", msg.Payload["synced"])
	}

	return nil
}

func (p *appPage) Focus() error { return nil }

func (p *appPage) URL() string { return p.app.config.ServerBaseURL + "/" }

// consoleDisplay renders system notifications as shell output.
type consoleDisplay struct {
	out io.Writer
}

func (d *consoleDisplay) Show(ctx context.Context, title string, p worker.PushPayload) error {
	_, err := fmt.Fprintf(d.out, "\n*** %s ***\n%s\n", title, p.Body)
	return err
}

// consoleOpener stands in for opening a browser window.
type consoleOpener struct {
	out io.Writer
}

func (o *consoleOpener) OpenWindow(url string) error {
	_, err := fmt.Fprintf(o.out, "opening %s\n", url)
	return err
}
