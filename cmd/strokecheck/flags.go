package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/bastiangx/strokecheck/pkg/config"
	"github.com/bastiangx/strokecheck/pkg/strokes"
)

// options holds the parsed command line.
type options struct {
	hideTrivial     bool
	focus           string
	addTranslations bool
	progress        bool
	workers         int
	format          string
	indent          int
	configPath      string
	exportPath      string
	cliMode         bool
	serverMode      bool
	watch           bool
	debug           bool
	version         bool

	// focusSeq is focus parsed, nil when no focus was given.
	focusSeq     strokes.Sequence
	dictionaries []string
	// set records which flags were given explicitly, by canonical name.
	set map[string]bool
}

// aliases maps the short spelling of a flag to its canonical name.
var aliases = map[string]string{
	"ht": "hide-trivial",
	"ss": "strokes-sequence",
	"at": "add-translations",
	"p":  "progress",
}

// parseFlags parses args (without the program name). Both -name and --name are accepted
// for every flag.
func parseFlags(args []string, output io.Writer) (*options, error) {
	defaults := config.DefaultConfig()
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("strokecheck", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: strokecheck [flags] dictionary.json [more.json ...]\n\n")
		fmt.Fprintf(output, "Finds dictionary entries whose strokes can also be read as other entries.\n\n")
		fs.PrintDefaults()
	}

	for _, name := range []string{"hide-trivial", "ht"} {
		fs.BoolVar(&opts.hideTrivial, name, defaults.Report.HideTrivial, "Hide explanations that only retile the entry with other entries")
	}
	for _, name := range []string{"strokes-sequence", "ss"} {
		fs.StringVar(&opts.focus, name, "", "Only report boundary errors involving this stroke sequence, e.g. A/HED")
	}
	for _, name := range []string{"add-translations", "at"} {
		fs.BoolVar(&opts.addTranslations, name, defaults.Report.AddTranslations, "Append translations to strokes in the report")
	}
	for _, name := range []string{"progress", "p"} {
		fs.BoolVar(&opts.progress, name, defaults.Report.Progress, "Print progress percentages to stderr")
	}
	fs.IntVar(&opts.workers, "workers", defaults.Report.Workers, "Number of goroutines checking entries")
	fs.StringVar(&opts.format, "format", defaults.Output.Format, "Report encoding on stdout: json or msgpack")
	fs.IntVar(&opts.indent, "indent", defaults.Output.Indent, "JSON indent width, 0 for a single line")
	fs.StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	fs.StringVar(&opts.exportPath, "export", "", "Write the merged dictionary as msgpack to this path and exit")
	fs.BoolVar(&opts.cliMode, "c", false, "Run the interactive prompt instead of printing a report")
	fs.BoolVar(&opts.serverMode, "s", false, "Run the msgpack IPC server on stdin/stdout")
	fs.BoolVar(&opts.watch, "watch", false, "Rebuild the report (or reload the server) when a dictionary changes")
	fs.BoolVar(&opts.debug, "d", false, "Toggle debug mode")
	fs.BoolVar(&opts.version, "version", false, "Show current version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		opts.set[name] = true
	})
	opts.dictionaries = fs.Args()

	if opts.version {
		return opts, nil
	}
	if len(opts.dictionaries) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("at least one dictionary file is required")
	}
	if opts.cliMode && opts.serverMode {
		return nil, fmt.Errorf("-c and -s cannot be used together")
	}
	if opts.set["strokes-sequence"] {
		seq, err := strokes.Parse(opts.focus)
		if err != nil {
			return nil, fmt.Errorf("invalid strokes sequence %q: %w", opts.focus, err)
		}
		opts.focusSeq = seq
	}
	return opts, nil
}

// apply overrides cfg with the flags that were given explicitly.
func (o *options) apply(cfg *config.Config) {
	if o.set["hide-trivial"] {
		cfg.Report.HideTrivial = o.hideTrivial
	}
	if o.set["add-translations"] {
		cfg.Report.AddTranslations = o.addTranslations
	}
	if o.set["progress"] {
		cfg.Report.Progress = o.progress
	}
	if o.set["workers"] {
		cfg.Report.Workers = o.workers
	}
	if o.set["format"] {
		cfg.Output.Format = o.format
	}
	if o.set["indent"] {
		cfg.Output.Indent = o.indent
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
}
