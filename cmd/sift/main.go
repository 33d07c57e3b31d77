// Command sift is an interactive fuzzy line selector: it reads
// candidate lines from stdin or a spawned command, lets the user narrow
// them with an incremental query, and prints the selection to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/asheshgoplani/sift/internal/config"
	"github.com/asheshgoplani/sift/internal/engine"
	"github.com/asheshgoplani/sift/internal/history"
	"github.com/asheshgoplani/sift/internal/item"
	"github.com/asheshgoplani/sift/internal/logging"
	"github.com/asheshgoplani/sift/internal/rank"
	"github.com/asheshgoplani/sift/internal/reader"
	"github.com/asheshgoplani/sift/internal/selection"
	"github.com/asheshgoplani/sift/internal/ui"
)

const Version = "0.3.1"

// Exit codes follow the fuzzy-filter convention: callers script around
// them.
const (
	exitOK      = 0 // selection confirmed
	exitNoMatch = 1 // confirmed (or filtered) with nothing matching
	exitError   = 2 // setup/usage failure
	exitAbort   = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		initialQuery = flag.String("query", "", "initial query")
		filterQuery  = flag.String("filter", "", "non-interactive: print lines matching this query, ranked, and exit")
		multi        = flag.Bool("multi", false, "enable tab multi-selection")
		command      = flag.String("command", "", "produce candidates by running this shell command instead of reading stdin")
		delimiter    = flag.String("delimiter", "", "field delimiter for --nth (default: whitespace)")
		nthSpec      = flag.String("nth", "", "comma-separated 1-based fields to match against (e.g. 1,3)")
		workers      = flag.Int("workers", 0, "scan worker count (default: one per CPU)")
		theme        = flag.String("theme", "", "color theme: dark, light, system (overrides config)")
		debug        = flag.Bool("debug", false, "write debug logs to the config dir")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("sift %s\n", Version)
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sift: %v\n", err)
		return exitError
	}

	logging.Init(logging.Config{
		LogDir:    config.Dir(),
		Level:     cfg.Log.Level,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Debug:     *debug,
	})
	defer logging.Shutdown()

	delim := cfg.Delimiter
	if *delimiter != "" {
		delim = *delimiter
	}
	nth, err := parseNth(*nthSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sift: %v\n", err)
		return exitError
	}
	poolSize := cfg.Workers
	if *workers > 0 {
		poolSize = *workers
	}

	store := item.NewStore(item.WithDelimiter(delim))
	merger := rank.NewMerger()
	eng := engine.New(store, merger,
		engine.WithWorkers(poolSize),
		engine.WithNth(nth),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stdinIsTTY := term.IsTerminal(int(os.Stdin.Fd()))
	if *command == "" && stdinIsTTY {
		fmt.Fprintln(os.Stderr, "sift: no input: pipe lines on stdin or pass --command")
		return exitError
	}

	if *filterQuery != "" {
		return runFilter(ctx, eng, *command, *filterQuery)
	}

	return runInteractive(ctx, cfg, eng, *command, stdinIsTTY, pickerOptions(cfg, *initialQuery, *multi), *theme)
}

// runFilter is the non-interactive mode: ingest everything, scan once,
// print the ranked matches.
func runFilter(ctx context.Context, eng *engine.Engine, command, query string) int {
	var err error
	if command != "" {
		err = reader.FromCommand(ctx, command, eng)
	} else {
		err = reader.FromReader(ctx, os.Stdin, eng)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sift: %v\n", err)
		return exitError
	}

	list := eng.RunOnce(query)
	for _, m := range list.Matches {
		fmt.Println(m.Item.Text)
	}
	if len(list.Matches) == 0 {
		return exitNoMatch
	}
	return exitOK
}

func pickerOptions(cfg *config.Config, initialQuery string, multi bool) ui.Options {
	order := selection.ByIndex
	if cfg.OutputOrder == "selection" {
		order = selection.BySelection
	}
	return ui.Options{
		InitialQuery: initialQuery,
		Multi:        multi,
		OutputOrder:  order,
	}
}

func runInteractive(ctx context.Context, cfg *config.Config, eng *engine.Engine, command string, stdinIsTTY bool, opts ui.Options, themeOverride string) int {
	initColorProfile()
	activeTheme := cfg.Theme
	if themeOverride != "" {
		activeTheme = themeOverride
	}
	ui.InitTheme(config.ResolveTheme(activeTheme))

	if cfg.HistoryEnabled() {
		if store := history.OpenDefault(config.Dir(), cfg.History.Limit); store != nil {
			defer store.Close()
			opts.History = store
		}
	}
	if w := config.NewWatcher(filepath.Join(config.Dir(), config.FileName)); w != nil {
		defer w.Close()
		opts.Watcher = w
	}

	go eng.Run(ctx)
	go func() {
		var err error
		if command != "" {
			err = reader.FromCommand(ctx, command, eng)
		} else {
			err = reader.FromReader(ctx, os.Stdin, eng)
		}
		if err != nil {
			logging.Logger().Warn("producer failed", "err", err)
		}
	}()

	sel := selection.New()
	model := ui.NewModel(eng, sel, opts)

	progOpts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}
	if !stdinIsTTY {
		// stdin carries the candidate stream; keys come from the tty.
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	if _, err := tea.NewProgram(model, progOpts...).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "sift: %v\n", err)
		return exitError
	}

	res := model.Result()
	if res.Accepted && res.Query != "" && opts.History != nil {
		if err := opts.History.Add(res.Query); err != nil {
			logging.Logger().Warn("history add failed", "err", err)
		}
	}
	if !res.Accepted {
		return exitAbort
	}
	if len(res.Lines) == 0 {
		return exitNoMatch
	}
	for _, line := range res.Lines {
		fmt.Println(line)
	}
	return exitOK
}

// parseNth parses a 1-based comma-separated field list into 0-based
// indices.
func parseNth(spec string) ([]int, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	nth := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid --nth field %q", p)
		}
		nth = append(nth, n-1)
	}
	return nth, nil
}

// initColorProfile configures the lipgloss color profile from the
// terminal, with a SIFT_COLOR override (truecolor, 256, 16, none).
func initColorProfile() {
	switch strings.ToLower(os.Getenv("SIFT_COLOR")) {
	case "truecolor", "true", "24bit":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "256", "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "16", "ansi", "basic":
		lipgloss.SetColorProfile(termenv.ANSI)
	case "none", "off", "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "":
		lipgloss.SetColorProfile(termenv.NewOutput(os.Stderr).ColorProfile())
	}
}
