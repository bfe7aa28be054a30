package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	return fmt.Sprintf("(%s)", a.currentMode())
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "NotiApp shell (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "notiapp %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Notes:         add, (l)ist, del <id>, sync")
			fmt.Fprintln(a.out, "Notifications: (n)otifications, read <id>, clearhist")
			fmt.Fprintln(a.out, "Push:          subscribe, unsubscribe, status, send")
			fmt.Fprintln(a.out, "Other:         exit")

		case "add":
			a.addNote(ctx)
		case "l", "list":
			a.list(ctx)
		case "del":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: del <id>")
				continue
			}
			a.deleteNote(ctx, args[0])
		case "sync":
			a.sync(ctx)
		case "n", "notifications":
			a.notifications(ctx)
		case "read":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: read <id>")
				continue
			}
			a.markRead(ctx, args[0])
		case "clearhist":
			a.clearHistory(ctx)
		case "subscribe":
			a.subscribe(ctx)
		case "unsubscribe":
			a.unsubscribe(ctx)
		case "status":
			a.status(ctx)
		case "send":
			a.sendTest(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
