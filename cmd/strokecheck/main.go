// Copyright 2025 The StrokeCheck Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the strokecheck report tool, its interactive prompt and its
msgpack IPC server.

strokecheck reads one or more steno dictionaries (strokes -> translation) and finds
boundary errors: entries whose strokes can also be read as a run of other entries.
A/HED "ahead" is also A "a" followed by HED "head", or by the start of HED/KWAR "header".

# Usage

Print the report for a merged set of dictionaries:

	strokecheck main.json user.json

Hide exact retilings, add translations and show progress:

	strokecheck -ht -at -p main.json

Only report errors involving one sequence:

	strokecheck -ss HED main.json

Later dictionaries override the translations of earlier ones. The report is a JSON object
of entry -> {explanation: count}, most ambiguous entry first. An explanation is a run of
space separated entries; a trailing "<open>" stands for every longer entry starting with
the strokes before it, counted.

	{
	  "A/HED": {
	    "A HED/<open>": 2,
	    "A HED": 1
	  }
	}

# Configuration

Defaults come from a TOML file, created on first run:

	[report]
	hide_trivial = false
	add_translations = false
	progress = false
	workers = 1

	[output]
	format = "json"
	indent = 2

	[log]
	level = "warn"

STROKECHECK_* environment variables override the file, and flags given on the command
line override both.

# Modes

	-c       interactive prompt, one stroke sequence per line
	-s       msgpack IPC server on stdin/stdout, see package server
	-watch   rebuild the report, or reload the server, when a dictionary changes
	-export  write the merged dictionary as msgpack and exit
*/
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/strokecheck/internal/cli"
	"github.com/bastiangx/strokecheck/internal/logger"
	"github.com/bastiangx/strokecheck/internal/utils"
	"github.com/bastiangx/strokecheck/internal/watch"
	"github.com/bastiangx/strokecheck/pkg/boundary"
	"github.com/bastiangx/strokecheck/pkg/config"
	"github.com/bastiangx/strokecheck/pkg/dictionary"
	"github.com/bastiangx/strokecheck/pkg/report"
	"github.com/bastiangx/strokecheck/pkg/server"
	"github.com/bastiangx/strokecheck/pkg/strokes"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	gh      = "https://github.com/bastiangx/strokecheck"
)

// main only manages the flow; every mode lives in its own package.
func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.version {
		showVersion()
		return
	}

	logger.Setup("warn", opts.debug)
	cfg, configPath, err := config.LoadConfigWithPriority(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.Setup(cfg.Log.Level, opts.debug)
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))

	focus := opts.focusSeq
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		log.Fatalf("Invalid output format: %v", err)
	}

	paths, err := utils.ResolveFiles(opts.dictionaries)
	if err != nil {
		log.Fatalf("Failed to resolve dictionaries: %v", err)
	}
	dict, err := loadDictionaries(paths)
	if err != nil {
		log.Fatalf("Failed to load dictionaries: %v", err)
	}

	ctx := context.Background()
	if opts.watch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	switch {
	case opts.exportPath != "":
		if err := dict.Export(opts.exportPath); err != nil {
			log.Fatalf("Failed to export dictionary: %v", err)
		}
		log.Infof("Exported %d entries to %s", dict.Len(), opts.exportPath)

	case opts.cliMode:
		handler := cli.NewInputHandler(dict, cfg.Report.HideTrivial, cfg.Report.AddTranslations, os.Stdin, os.Stdout)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}

	case opts.serverMode:
		srv := server.NewServer(dict)
		if opts.watch {
			go watchDictionaries(ctx, paths, func(d *dictionary.Dictionary) {
				srv.SetDictionary(d)
			})
		}
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}

	default:
		run := func(d *dictionary.Dictionary) {
			if err := writeReport(d, cfg, focus, format); err != nil {
				log.Errorf("Failed to write report: %v", err)
			}
		}
		run(dict)
		if opts.watch {
			watchDictionaries(ctx, paths, run)
		}
	}
}

func loadDictionaries(paths []string) (*dictionary.Dictionary, error) {
	dict, stats, err := dictionary.Load(paths...)
	if err != nil {
		return nil, err
	}
	log.Debug("Loaded dictionaries",
		"sources", stats.Sources,
		"read", stats.Read,
		"skipped", stats.Skipped,
		"entries", stats.Entries,
		"took", stats.Duration)
	return dict, nil
}

// writeReport builds the report for dict and writes it to stdout.
func writeReport(dict *dictionary.Dictionary, cfg *config.Config, focus strokes.Sequence, format report.Format) error {
	opts := boundary.Options{
		HideTrivial:     cfg.Report.HideTrivial,
		Focus:           focus,
		AddTranslations: cfg.Report.AddTranslations,
		Workers:         cfg.Report.Workers,
	}
	if cfg.Report.Progress {
		opts.Progress = func(percent int) {
			fmt.Fprintf(os.Stderr, "%d%%\n", percent)
		}
	}

	r, err := boundary.Build(dict, opts)
	if err != nil {
		return err
	}
	out := bufio.NewWriter(os.Stdout)
	if err := report.Write(out, r, format, cfg.Output.Indent); err != nil {
		return err
	}
	return out.Flush()
}

// watchDictionaries reloads every dictionary whenever one changes and passes the result
// to onReload, until ctx is done. A reload that fails keeps the previous dictionary.
func watchDictionaries(ctx context.Context, paths []string, onReload func(*dictionary.Dictionary)) {
	w, err := watch.New(paths, watch.DefaultDebounce)
	if err != nil {
		log.Errorf("Failed to watch dictionaries: %v", err)
		return
	}
	defer w.Close()

	log.Info("Watching dictionaries, press Ctrl+C to exit")
	err = w.Run(ctx, func(changed []string) {
		log.Infof("Changed: %v", changed)
		dict, err := loadDictionaries(paths)
		if err != nil {
			log.Errorf("Reload failed, keeping previous dictionary: %v", err)
			return
		}
		onReload(dict)
	})
	if err != nil {
		log.Errorf("Watcher stopped: %v", err)
	}
}

// showVersion prints the styled version banner.
func showVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
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
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ StrokeCheck ] Finds boundary errors in steno dictionaries")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}
