package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/notiapp/notiapp/internal/client/worker"
)

// storeReady guards data commands in degraded mode.
func (a *App) storeReady() bool {
	if a.store == nil {
		fmt.Fprintln(a.out, "local store unavailable, data commands are disabled")
		return false
	}
	return true
}

func (a *App) addNote(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	text, err := GetMultiline(a.reader, "- Enter note text:", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if text == "" {
		fmt.Fprintln(a.out, "nothing to save")
		return
	}

	n, err := a.engine.SaveNote(ctx, text)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if n.Synced {
		fmt.Fprintf(a.out, "saved note %d (synced)\n", n.Id)
	} else {
		fmt.Fprintf(a.out, "saved note %d (will sync when online)\n", n.Id)
	}
}

func (a *App) list(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	all, err := a.store.Notes.GetAll(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if len(all) == 0 {
		fmt.Fprintln(a.out, "no notes yet")
		return
	}

	for _, n := range all {
		mark := " "
		if n.Synced {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %4d  %s  %s\n", mark, n.Id, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Text)
	}
}

func (a *App) deleteNote(ctx context.Context, arg string) {
	if !a.storeReady() {
		return
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: del <id>")
		return
	}

	if err := a.store.Notes.DeleteByID(ctx, id); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "note %d deleted\n", id)
}

func (a *App) sync(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	n, err := a.engine.SyncPending(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "sync failed: %v\n", err)
		return
	}
	if n == 0 {
		fmt.Fprintln(a.out, "nothing to sync")
		return
	}

	fmt.Fprintf(a.out, "synced %d note(s)\n", n)
	a.worker.Hub().Broadcast(worker.Message{
		Type:    worker.MsgSyncComplete,
		Payload: map[string]any{"synced": n},
	})
}
