package cli

import (
	"context"
	"fmt"
	"strconv"
)

func (a *App) notifications(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	all, err := a.store.Notifications.GetAll(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if len(all) == 0 {
		fmt.Fprintln(a.out, "no notifications")
		return
	}

	for _, n := range all {
		mark := "unread"
		if n.Read {
			mark = "  read"
		}
		fmt.Fprintf(a.out, "%4d  [%s]  %s  %s: %s\n",
			n.Id, mark, n.ReceivedAt.Local().Format("2006-01-02 15:04"), n.Title, n.Body)
	}
}

func (a *App) markRead(ctx context.Context, arg string) {
	if !a.storeReady() {
		return
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: read <id>")
		return
	}

	if err := a.store.Notifications.MarkRead(ctx, id); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "notification %d marked read\n", id)
}

func (a *App) clearHistory(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	if err := a.store.Notifications.Clear(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "notification history cleared")
}
