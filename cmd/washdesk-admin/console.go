package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukerupert/washdesk/internal/center"
	"github.com/dukerupert/washdesk/internal/client"
	"github.com/dukerupert/washdesk/internal/report"
)

var errQuit = errors.New("quit")

// dashboardSource is the part of the admin client used by export.
type dashboardSource interface {
	Dashboard(ctx context.Context) (map[string]any, error)
	ExportDashboard(ctx context.Context, rangeLabel string) (*client.Download, error)
}

type console struct {
	ctrl         *center.Controller
	dashboards   dashboardSource
	exporter     *report.Exporter
	serverExport bool
	outDir       string
	out          io.Writer

	// relogin obtains a fresh token after a 401. Nil when no password was
	// given.
	relogin func(ctx context.Context) error
}

const helpText = `commands:
  tab <name>        switch category (ALL, BOOKING, PAYMENT, ...)
  search <text>     filter loaded notifications; "search" alone clears
  read <id>         mark one notification read
  unread <id>       mark one notification unread (local only)
  readall           mark everything read
  refresh           reload the active tab
  stats             show counters
  export [range]    save the dashboard as PDF
  list              redraw
  quit`

func (c *console) run(ctx context.Context, in io.Reader) error {
	c.draw()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		if err := c.exec(ctx, sc.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

func (c *console) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "tab":
		c.ctrl.TabBar(ctx).Select(strings.ToUpper(arg))
	case "search":
		c.ctrl.SetQuery(arg)
	case "read":
		card, err := c.card(arg)
		if err != nil {
			return err
		}
		// The server call's outcome is only reported; local state stays read.
		if err := card.MarkAsRead(ctx); err != nil {
			c.unconfirmed(ctx, err)
		}
	case "unread":
		card, err := c.card(arg)
		if err != nil {
			return err
		}
		card.MarkAsUnread()
	case "readall":
		if err := c.ctrl.MarkAllAsRead(ctx); err != nil {
			c.unconfirmed(ctx, err)
		}
	case "refresh":
		c.ctrl.FetchNotifications(ctx)
	case "stats":
		renderStats(c.out, c.ctrl.Snapshot().Stats)
		return nil
	case "export":
		return c.export(ctx, arg)
	case "list", "ls":
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	c.draw()
	return nil
}

func (c *console) unconfirmed(ctx context.Context, err error) {
	fmt.Fprintf(c.out, "server did not confirm: %v\n", err)
	c.renew(ctx, err)
}

// renew logs in again when err is a 401 and a password is available.
func (c *console) renew(ctx context.Context, err error) {
	if c.relogin == nil || !client.IsUnauthorized(err) {
		return
	}
	if err := c.relogin(ctx); err != nil {
		fmt.Fprintf(c.out, "session expired and login failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "session renewed, run the command again")
}

func (c *console) draw() {
	renderSnapshot(c.out, c.ctrl.Snapshot())
}

// card resolves a full id or a unique prefix of one among the visible cards.
func (c *console) card(prefix string) (*center.Card, error) {
	if prefix == "" {
		return nil, errors.New("id required")
	}
	var match string
	for _, n := range c.ctrl.Visible() {
		if n.ID == prefix {
			match = n.ID
			break
		}
		if strings.HasPrefix(n.ID, prefix) {
			if match != "" {
				return nil, fmt.Errorf("id %q is ambiguous", prefix)
			}
			match = n.ID
		}
	}
	if match == "" {
		return nil, fmt.Errorf("no notification %q", prefix)
	}
	card := c.ctrl.Card(match)
	if card == nil {
		return nil, fmt.Errorf("no notification %q", prefix)
	}
	return card, nil
}

func (c *console) export(ctx context.Context, rangeLabel string) error {
	var filename string
	var data []byte

	if c.serverExport {
		dl, err := c.dashboards.ExportDashboard(ctx, rangeLabel)
		if err != nil {
			c.renew(ctx, err)
			return nil // already toasted
		}
		filename, data = dl.Filename, dl.Data
	} else {
		bag, err := c.dashboards.Dashboard(ctx)
		if err != nil {
			c.renew(ctx, err)
			return nil // already toasted
		}
		rep, err := c.exporter.Export(bag, rangeLabel)
		if err != nil || rep == nil {
			return nil
		}
		filename, data = rep.Filename, rep.Data
	}

	path := filepath.Join(c.outDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	fmt.Fprintf(c.out, "saved %s (%d bytes)\n", path, len(data))
	return nil
}
