package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/abrezinsky/luckydraw/internal/browser"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/services"
)

// console maps single key presses to operator actions
type console struct {
	runner        services.RunnerServicer
	log           *logger.SlogLogger
	out           io.Writer
	boardURL      func() string
	openURL       func(string) error
	quit          func()
	withAnimation bool
}

func newConsole(runner services.RunnerServicer, log *logger.SlogLogger, out io.Writer, boardURL func() string, quit func(), withAnimation bool) *console {
	return &console{
		runner:        runner,
		log:           log,
		out:           out,
		boardURL:      boardURL,
		openURL:       browser.Open,
		quit:          quit,
		withAnimation: withAnimation,
	}
}

// handleKey performs the action bound to key. It returns false once the operator has asked to quit.
func (c *console) handleKey(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "s":
		c.control("Draw started", func() error { return c.runner.Start(c.withAnimation) })
	case "f":
		c.control("Quick draw started", c.runner.QuickStart)
	case "p":
		c.control("Draw paused", c.runner.Pause)
	case "r":
		c.control("Draw resumed", c.runner.Resume)
	case "x":
		c.runner.Reset()
		fmt.Fprintf(c.out, "%sDraw reset%s\n", yellow, reset)
	case "o":
		url := c.boardURL()
		fmt.Fprintf(c.out, "%sOpening draw board in browser...%s\n", cyan, reset)
		if err := c.openURL(url); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		next := logger.NextLevel(c.log.GetLevel())
		c.log.SetLevel(next)
		fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
	case "?":
		printKeyboardHelp(c.out)
	case "q", "\x03": // Ctrl+C arrives as a byte in raw mode
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return false
	}
	return true
}

func (c *console) control(done string, action func() error) {
	if err := action(); err != nil {
		fmt.Fprintf(c.out, "%s%v%s\n", red, err, reset)
		return
	}
	snap := c.runner.Snapshot()
	fmt.Fprintf(c.out, "%s%s%s (%s)\n", green, done, reset, snap.State)
}

// readKeys feeds every byte from r to the console until it asks to stop or r fails
func (c *console) readKeys(r io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if !c.handleKey(buf[0]) {
			return
		}
	}
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(out io.Writer) {
	fmt.Fprintf(out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(out, "    %ss%s      - Start a draw session\n", cyan, reset)
	fmt.Fprintf(out, "    %sf%s      - Quick draw (no animation)\n", cyan, reset)
	fmt.Fprintf(out, "    %sp%s      - Pause the draw\n", cyan, reset)
	fmt.Fprintf(out, "    %sr%s      - Resume the draw\n", cyan, reset)
	fmt.Fprintf(out, "    %sx%s      - Reset the draw\n", cyan, reset)
	fmt.Fprintf(out, "    %so%s      - Open draw board in browser\n", cyan, reset)
	fmt.Fprintf(out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(out, "    %s?%s      - Show this help\n\n", cyan, reset)
}
