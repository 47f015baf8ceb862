package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/pkg/drawclient"
)

const ctlUsage = `Usage:
  luckydraw ctl [options] <command> [args]

Options:
  -server string   Board URL (default "http://localhost:8080", env LUCKYDRAW_SERVER)
  -adminpw str     Admin password for operator commands (env LUCKYDRAW_ADMINPW)
  -timeout dur     Request timeout (default 10s)

Commands:
  status           Show the current draw state
  catalog          List the prize tiers
  start            Start a draw (add -animation=false for instant reveals)
  quick            Quick draw, no animation
  pause            Pause the draw
  resume           Resume the draw
  reset            Reset the draw
  history [query]  List stored sessions, optionally filtered
  share <id>       Print the share text of a stored session
  clear            Delete all stored sessions (operator)
  reset-settings   Restore default preferences (operator)

`

// runCtl drives a running board from the command line and returns the process exit code
func runCtl(args []string, stdout, stderr io.Writer, newClient func(baseURL string) drawclient.Client) int {
	fs := flag.NewFlagSet("luckydraw ctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, ctlUsage) }

	server := fs.String("server", envString("LUCKYDRAW_SERVER", fmt.Sprintf("http://localhost:%d", defaultPort)), "Board URL")
	adminPw := fs.String("adminpw", envString(envAdminPw, ""), "Admin password for operator commands")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	animation := fs.Bool("animation", true, "Animate a draw started with start")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	passed := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	client := newClient(*server)
	if *adminPw != "" {
		client.SetPassword(*adminPw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var snap *drawclient.Snapshot
	var err error
	switch cmd := rest[0]; cmd {
	case "status":
		snap, err = client.State(ctx)
	case "start":
		var withAnimation *bool
		if passed["animation"] {
			withAnimation = animation
		}
		snap, err = client.Start(ctx, withAnimation)
	case "quick":
		snap, err = client.QuickStart(ctx)
	case "pause":
		snap, err = client.Pause(ctx)
	case "resume":
		snap, err = client.Resume(ctx)
	case "reset":
		snap, err = client.Reset(ctx)
	case "catalog":
		var prizes []drawclient.Prize
		if prizes, err = client.Catalog(ctx); err == nil {
			for _, p := range prizes {
				marker := ""
				if p.Jackpot {
					marker = " *"
				}
				fmt.Fprintf(stdout, "%-10s %-16s %d x %d digits%s\n", p.ID, p.DisplayName, p.Results, p.Digits, marker)
			}
		}
	case "history":
		var sessions []drawclient.Session
		if sessions, err = client.Sessions(ctx, strings.Join(rest[1:], " ")); err == nil {
			printSessions(stdout, sessions)
		}
	case "share":
		if len(rest) < 2 {
			fmt.Fprintln(stderr, "share needs a session id")
			return 2
		}
		var text string
		if text, err = client.ShareText(ctx, rest[1]); err == nil {
			fmt.Fprintln(stdout, text)
		}
	case "clear":
		if err = client.ClearHistory(ctx); err == nil {
			fmt.Fprintln(stdout, "History cleared")
		}
	case "reset-settings":
		var settings *drawclient.Settings
		if settings, err = client.ResetSettings(ctx); err == nil {
			fmt.Fprintf(stdout, "Settings reset: sound=%v dark=%v vibration=%v\n",
				settings.SoundEnabled, settings.DarkModeEnabled, settings.VibrationEnabled)
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", rest[0], err)
		return 1
	}
	if snap != nil {
		printSnapshot(stdout, snap)
	}
	return 0
}

func printSnapshot(out io.Writer, snap *drawclient.Snapshot) {
	fmt.Fprintf(out, "State:    %s\n", snap.State)
	if snap.SessionID != "" {
		fmt.Fprintf(out, "Session:  %s\n", snap.SessionID)
	}
	if snap.CurrentPrize != nil && snap.State != "completed" {
		fmt.Fprintf(out, "Drawing:  %s (%.0f%%)\n", snap.CurrentPrize.DisplayName, snap.Progress*100)
	}
	for _, r := range snap.Results {
		fmt.Fprintf(out, "  %-16s %s\n", r.Prize.DisplayName, strings.Join(r.Numbers, " "))
	}
	if snap.LastError != "" {
		fmt.Fprintf(out, "Error:    %s\n", snap.LastError)
	}
}

func printSessions(out io.Writer, sessions []drawclient.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions")
		return
	}
	for _, s := range sessions {
		status := fmt.Sprintf("%ds", s.DurationSeconds)
		if !s.Completed {
			status = "unfinished"
		}
		fmt.Fprintf(out, "%s  %s  %2d numbers  %s\n", s.ID, s.StartedAt.Local().Format("02/01/2006 15:04:05"), s.NumberCount, status)
	}
}

func newHTTPDrawClient(log logger.Logger) func(string) drawclient.Client {
	return func(baseURL string) drawclient.Client {
		return drawclient.NewHTTPClient(baseURL, log)
	}
}
