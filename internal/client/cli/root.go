package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"
)

const onlineCheckInterval = 15 * time.Second

func (a *App) getStatus() string {
	var parts []string
	if s := a.authService.Session(); s != nil {
		parts = append(parts, s.UserName)
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if a.staging != nil {
		p := "product " + a.staging.ProductID()
		if n := len(a.staging.Local()); n > 0 {
			p += fmt.Sprintf(" +%d", n)
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// Root restores the previous session, starts the connectivity watcher and
// runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to MeshMart CLI (type 'help' for commands)")

	a.Restore(ctx)

	wctx, stop := context.WithCancel(ctx)
	defer stop()
	go a.StartOnlineStatusWatcher(wctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
