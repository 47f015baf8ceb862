package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/abrezinsky/luckydraw/internal/app"
)

// options are the resolved startup settings
type options struct {
	port        int
	dbPath      string
	adminPw     string
	logLevel    string
	animation   bool
	seed        uint64
	envFile     string
	noAnimate   bool
	noKeyboard  bool
	showVersion bool
}

const defaultPort = 8080

// parseOptions reads flags from args, then fills every flag the operator did not pass from the environment
func parseOptions(args []string, stderr io.Writer) (options, error) {
	defaults := app.DefaultConfig()

	fs := flag.NewFlagSet("luckydraw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	var o options
	fs.IntVar(&o.port, "port", defaultPort, "HTTP server port")
	fs.StringVar(&o.dbPath, "db", defaults.DBPath, "SQLite database path")
	fs.StringVar(&o.adminPw, "adminpw", "", "Admin password (auto-generated if not set)")
	fs.StringVar(&o.logLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&o.animation, "animation", defaults.DrawAnimation, "Animate draws started without an explicit choice")
	fs.Uint64Var(&o.seed, "seed", 0, "Random seed for reproducible draws (0 picks a random one)")
	fs.StringVar(&o.envFile, "env", ".env", "Environment file to load")
	fs.BoolVar(&o.noAnimate, "noanimate", false, "Show logo only, skip the startup animation")
	fs.BoolVar(&o.noKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&o.showVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	passed := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	if err := loadEnvFile(o.envFile, passed["env"]); err != nil {
		return o, err
	}

	var err error
	if !passed["port"] {
		if o.port, err = envInt(envPort, o.port); err != nil {
			return o, err
		}
	}
	if !passed["db"] {
		o.dbPath = envString(envDB, o.dbPath)
	}
	if !passed["adminpw"] {
		o.adminPw = envString(envAdminPw, o.adminPw)
	}
	if !passed["loglevel"] {
		o.logLevel = envString(envLogLevel, o.logLevel)
	}
	if !passed["animation"] {
		if o.animation, err = envBool(envAnimation, o.animation); err != nil {
			return o, err
		}
	}
	if !passed["seed"] {
		if o.seed, err = envUint(envSeed, o.seed); err != nil {
			return o, err
		}
	}

	if o.port <= 0 || o.port > 65535 {
		return o, fmt.Errorf("invalid port %d", o.port)
	}
	return o, nil
}

// config turns the options into the application configuration
func (o options) config() app.Config {
	cfg := app.DefaultConfig()
	cfg.DBPath = o.dbPath
	cfg.DrawAnimation = o.animation
	cfg.Seed = o.seed
	return cfg
}

const usage = `LuckyDraw - Lottery Draw Board

Usage:
  luckydraw [options]
  luckydraw ctl [options] <command>   Control a running board (see luckydraw ctl -help)

Options:
  -port int        HTTP server port (default 8080, env LUCKYDRAW_PORT)
  -db string       SQLite database path (default "luckydraw.db", env LUCKYDRAW_DB)
  -adminpw str     Admin password, auto-generated if not set (env LUCKYDRAW_ADMINPW)
  -loglevel str    Log level: debug, info, warn, error (default "info", env LUCKYDRAW_LOGLEVEL)
  -animation       Animate draws started without an explicit choice (default true, env LUCKYDRAW_ANIMATION)
  -seed uint       Random seed for reproducible draws, 0 picks one (env LUCKYDRAW_SEED)
  -env string      Environment file to load (default ".env")
  -noanimate       Show logo only, skip the startup animation
  -nokeyboard      Disable keyboard shortcuts
  -version         Show version and exit
  -help            Show this help message

Keyboard Shortcuts (when enabled):
  s                Start a draw session
  f                Quick draw (no animation)
  p / r            Pause / resume the draw
  x                Reset the draw
  o                Open draw board in browser
  h                Toggle HTTP request logging
  l                Cycle log level (debug → info → warn → error)
  q                Quit server
  ?                Show keyboard help

Examples:
  luckydraw                            # Run on port 8080 with luckydraw.db
  luckydraw -port 9000                 # Run on port 9000
  luckydraw -db /data/draws.db         # Use custom database path
  luckydraw -animation=false           # Instant reveals by default
  luckydraw -seed 2024 -nokeyboard     # Reproducible rehearsal run

`
