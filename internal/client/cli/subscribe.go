package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notiapp/notiapp/internal/client/push"
	"github.com/notiapp/notiapp/internal/common"
)

func (a *App) subscribe(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	name, err := GetSimpleText(a.reader, "- Your name (optional)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	prefsLine, err := GetSimpleText(a.reader, "- Preferences, comma separated (news, offers, updates)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	var prefs []string
	for _, p := range strings.Split(prefsLine, ",") {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}

	sub, err := a.pushMgr.Subscribe(ctx, push.UserData{UserName: name, Preferences: prefs})
	switch {
	case errors.Is(err, common.ErrUnsupported):
		fmt.Fprintln(a.out, "push notifications are not supported here")
	case errors.Is(err, common.ErrPermissionDenied):
		fmt.Fprintln(a.out, "notification permission was denied")
	case err != nil:
		fmt.Fprintf(a.out, "subscribe failed: %v\n", err)
	default:
		fmt.Fprintf(a.out, "subscribed (%s)\n", sub.Endpoint)
	}
}

func (a *App) unsubscribe(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	if _, err := a.pushMgr.Unsubscribe(ctx); err != nil {
		fmt.Fprintf(a.out, "unsubscribe failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "unsubscribed")
}

func (a *App) status(ctx context.Context) {
	fmt.Fprintf(a.out, "connectivity: %s\n", a.currentMode())
	fmt.Fprintf(a.out, "worker:       %s\n", a.worker.State())

	if a.pushMgr == nil {
		return
	}
	st := a.pushMgr.Status(ctx)
	fmt.Fprintf(a.out, "push:         supported=%v subscribed=%v permission=%s\n",
		st.Supported, st.Subscribed, st.Permission)
	if st.UserName != "" {
		fmt.Fprintf(a.out, "subscriber:   %s %v\n", st.UserName, st.Preferences)
	}
}

func (a *App) sendTest(ctx context.Context) {
	if !a.storeReady() {
		return
	}

	title, err := GetSimpleText(a.reader, "- Title", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	body, err := GetSimpleText(a.reader, "- Body", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	err = a.pushMgr.SendTest(ctx, title, body, map[string]any{"url": "/"})
	switch {
	case errors.Is(err, common.ErrNotSubscribed):
		fmt.Fprintln(a.out, "not subscribed; run 'subscribe' first")
	case errors.Is(err, common.ErrSubscriptionExpired):
		fmt.Fprintln(a.out, "subscription expired and was removed; run 'subscribe' again")
	case err != nil:
		fmt.Fprintf(a.out, "send failed: %v\n", err)
	default:
		fmt.Fprintln(a.out, "notification sent")
	}
}
