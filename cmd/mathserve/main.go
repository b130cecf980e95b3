// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the LaTeX abbreviation completion server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

MathServe turns short abbreviations typed after a start key into LaTeX
expansions. Typing "^frac" offers \frac{numerator}{denominator}, and the chosen
expansion is wrapped in $...$ unless the line already looks like math.

It can operate as a MessagePack IPC server for editor plugins, as an LSP server
for any LSP client, or as a CLI application for testing and debugging.

# Usage

Start the IPC server with default settings:

	mathserve

Serve completions to an LSP client:

	mathserve -lsp

Run in CLI mode for interactive testing, with debug logs:

	mathserve -c -d -limit 5

# Configuration

Runtime configuration is read from a TOML file. The path comes from -config,
then MATHSERVE_CONFIG (also read from a .env file in the working directory),
then ~/.config/mathserve/config.toml:

	[trigger]
	start_key = "^"

	[server]
	max_limit = 64
	default_limit = 20

	[[custom_mappings]]
	abbr = "fraction"
	expansion = '\frac{numerator}{denominator}'

The config file is created with defaults if it doesn't exist. The file is
watched, and edits apply from the next keystroke without a restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package server
for the full message set.

	{"id": "t1", "action": "trigger", "line": "solve ^frac", "cursor": 11}
	{"id": "t1", "ok": true, "q": "frac", "s": 6, "e": 11}

# Command Line Flags

	-version
	    Show current version
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-lsp
	    Serve LSP over stdio instead of msgpack IPC
	-config string
	    Path to config.toml
	-limit int
	    Number of suggestions to return in CLI and LSP mode
	-no-watch
	    Do not reload the config file when it changes
	-rebuild-config
	    Overwrite the default config file with defaults and exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/mathserve/internal/cli"
	"github.com/bastiangx/mathserve/internal/logger"
	"github.com/bastiangx/mathserve/pkg/config"
	"github.com/bastiangx/mathserve/pkg/lsp"
	"github.com/bastiangx/mathserve/pkg/server"
	"github.com/bastiangx/mathserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	Version   = "0.1.0-beta"
	AppName   = "mathserve"
	gh        = "https://github.com/bastiangx/mathserve"
	configEnv = "MATHSERVE_CONFIG"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	lspMode := flag.Bool("lsp", false, "Serve LSP over stdio instead of msgpack IPC")
	configPath := flag.String("config", "", "Path to config.toml (overrides "+configEnv+")")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return in CLI and LSP mode")
	noWatch := flag.Bool("no-watch", false, "Do not reload the config file when it changes")
	rebuild := flag.Bool("rebuild-config", false, "Overwrite the default config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	level := log.WarnLevel
	if *debugMode {
		level = log.DebugLevel
	} else if *cliMode {
		level = log.InfoLevel
	}
	log.SetDefault(logger.NewWithConfig("", level, false, *debugMode, log.TextFormatter))
	log.SetLevel(level)

	if *rebuild {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Print("Config rebuilt with defaults")
		return
	}

	// a missing .env is the common case
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env loaded: %v", err)
	}
	customPath := *configPath
	if customPath == "" {
		customPath = os.Getenv(configEnv)
	}

	appConfig, resolvedPath, err := config.LoadConfigWithPriority(customPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(resolvedPath))

	store := config.NewStore(appConfig, resolvedPath)
	completer := suggest.NewCompleter(store)
	log.Debug("Completer init done", "mappings", completer.Stats()["mappings"])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if !*noWatch {
		g.Go(func() error {
			// serving goes on with the loaded config
			if err := config.Watch(ctx, store); err != nil {
				log.Warnf("Config reload disabled: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		switch {
		// CLI would be mainly used for testing and dbg purposes.
		case *cliMode:
			return cli.NewInputHandler(completer, store, *limit, os.Stdin, os.Stdout).Start()
		case *lspMode:
			return lsp.NewHandler(completer, store, Version, *limit).RunStdio(*debugMode)
		default:
			showStartupInfo(resolvedPath)
			return server.NewServer(completer, store).Start()
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("%s stopped: %v", AppName, err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ MathServe ] LaTeX from a few keystrokes")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
// Stdout belongs to the IPC stream, so this goes to stderr.
func showStartupInfo(configPath string) {
	info := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, " MathServe ")
	fmt.Fprintln(os.Stderr, "============")
	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("config: ( %s )", config.GetActiveConfigPath(configPath))
	info.Info("status: ready")
	fmt.Fprintln(os.Stderr, "============")
}
