package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abrezinsky/luckydraw/internal/app"
	"github.com/abrezinsky/luckydraw/internal/auth"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/web"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	bold      = "\033[1m"
)

var (
	version = "dev"
)

// showStartupAnimation displays the LuckyDraw logo then rolls a jackpot number
func showStartupAnimation(skipRoll bool) {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"     _                _          ____                       ",
		"    | |   _   _  ___| | ___   _|  _ \\ _ __ __ ___      __   ",
		"    | |  | | | |/ __| |/ / | | | | | | '__/ _` \\ \\ /\\ / /   ",
		"    | |__| |_| | (__|   <| |_| | |_| | | | (_| |\\ V  V /    ",
		"    |_____\\__,_|\\___|_|\\_\\\\__, |____/|_|  \\__,_| \\_/\\_/     ",
		"                          |___/                             ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		if pad := width - len(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	if skipRoll {
		fmt.Print("\n")
		return
	}

	// Turn the bottom border into a divider and roll six digits underneath
	fmt.Printf(moveUp, 1)
	fmt.Printf("%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)

	const digits = 6
	const frames = 24
	settled := 0
	for frame := 0; frame < frames; frame++ {
		// Digits lock in from left to right during the second half
		if frame >= frames/2 && frame%2 == 0 && settled < digits {
			settled++
		}
		var number strings.Builder
		for i := 0; i < digits; i++ {
			color := red
			if i < settled {
				color = green
			}
			fmt.Fprintf(&number, "%s %d %s", color, rand.IntN(10), reset)
		}
		// Each digit renders as three visible characters
		pad := (width - digits*3) / 2
		line := strings.Repeat(" ", pad) + number.String() + strings.Repeat(" ", width-pad-digits*3)
		fmt.Printf("%s  %s║%s%s║%s\n", clearLine, cyan, line, cyan, reset)
		fmt.Printf("%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
		if frame < frames-1 {
			fmt.Printf(moveUp, 2)
		}
		time.Sleep(60 * time.Millisecond)
	}
	fmt.Print("\n")
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "ctl" {
		os.Exit(runCtl(os.Args[2:], os.Stdout, os.Stderr, newHTTPDrawClient(logger.NewWithLevel(logger.ParseLevel("warn")))))
	}

	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(err)
	}

	if opts.showVersion {
		fmt.Printf("luckydraw %s\n", version)
		os.Exit(0)
	}

	showStartupAnimation(opts.noAnimate)

	password := opts.adminPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithLevel(logger.ParseLevel(opts.logLevel))

	a, err := app.New(appLog, opts.config(), web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	addr := fmt.Sprintf(":%d", opts.port)
	appLog.Info("Admin password", "password", password)
	if opts.seed != 0 {
		appLog.Warn("Draws are reproducible, do not use a fixed seed for a real event", "seed", opts.seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	if !opts.noKeyboard {
		boardURL := func() string {
			if u := a.BoardURL(); u != "" {
				return u
			}
			return fmt.Sprintf("http://localhost:%d", opts.port)
		}
		c := newConsole(a.Runner(), appLog, os.Stdout, boardURL, stop, opts.animation)
		printKeyboardHelp(os.Stdout)
		go listenForKeyboard(c)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	select {
	case err := <-serverErr:
		a.Close()
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		appLog.Info("Shutting down")
		a.Close()
		if err := <-serverErr; err != nil {
			log.Fatal(err)
		}
	}
}
