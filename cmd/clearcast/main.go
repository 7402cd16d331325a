package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clearcast-audio/clearcast/internal/batch"
	"github.com/clearcast-audio/clearcast/internal/cli"
	"github.com/clearcast-audio/clearcast/internal/config"
	"github.com/clearcast-audio/clearcast/internal/logging"
	"github.com/clearcast-audio/clearcast/internal/ui"
)

var version = "0.1.0"

// defaultConfigFile is picked up from the working directory when --config
// is not given.
const defaultConfigFile = "clearcast.yaml"

// CLI defines the command-line interface
type CLI struct {
	Version        bool          `short:"v" help:"Show version information"`
	Config         string        `short:"c" type:"path" help:"Path to YAML config file"`
	GenerateConfig string        `type:"path" placeholder:"path" help:"Write the default config to a file and exit"`
	Preset         string        `short:"p" help:"Named preset overlay to apply (e.g. noisy_environment)"`
	Jobs           int           `short:"j" default:"4" help:"Number of files processed in parallel"`
	Timeout        time.Duration `help:"Per-file processing timeout (0 = none)"`
	Force          bool          `help:"Reprocess files whose outputs already exist"`
	NoUI           bool          `name:"no-ui" help:"Disable the interactive display and log to stderr"`
	Logs           string        `type:"path" placeholder:"path" help:"Write a detailed run log to a file"`
	Paths          []string      `arg:"" name:"paths" optional:"" type:"path" help:"Audio files or directories to process"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("clearcast"),
		kong.Description("Batch audio preprocessor for podcast production"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if cliArgs.GenerateConfig != "" {
		if err := config.WriteDefault(cliArgs.GenerateConfig); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		fmt.Printf("Wrote default configuration to %s\n", cliArgs.GenerateConfig)
		os.Exit(0)
	}

	if len(cliArgs.Paths) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	cfg, err := loadConfig(cliArgs.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	files, err := batch.Expand(cliArgs.Paths)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	runner := &batch.Runner{
		Config:  cfg,
		Preset:  cliArgs.Preset,
		Jobs:    cliArgs.Jobs,
		Timeout: cliArgs.Timeout,
		Force:   cliArgs.Force,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var results []batch.FileResult
	if cliArgs.NoUI {
		results, err = runHeadless(runCtx, runner, files)
	} else {
		results, err = runWithUI(runCtx, runner, files)
	}
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	if cliArgs.Logs != "" {
		if err := logging.WriteRunLog(cliArgs.Logs, results); err != nil {
			cli.PrintError(fmt.Sprintf("write run log: %v", err))
		}
	}

	for _, res := range results {
		if res.Err != nil {
			os.Exit(1)
		}
	}
}

// loadConfig resolves the configuration source: explicit flag, a
// clearcast.yaml in the working directory, or built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	fmt.Fprintf(os.Stderr, "No %s found, using built-in defaults\n", defaultConfigFile)
	return config.Default(), nil
}

// runHeadless runs the batch with plain structured logging to stderr and a
// summary table on stdout.
func runHeadless(ctx context.Context, runner *batch.Runner, files []string) ([]batch.FileResult, error) {
	runner.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	results, err := runner.Run(ctx, files)
	if len(results) > 0 {
		fmt.Print(logging.Summary(results))
	}
	return results, err
}

// runWithUI drives the batch behind the Bubbletea display. The outcome
// travels over a channel rather than shared variables: quitting the UI
// early cancels the run, and the receive below synchronises with the
// worker goroutine before anything reads the results.
func runWithUI(ctx context.Context, runner *batch.Runner, files []string) ([]batch.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(ui.NewModel(files), tea.WithAltScreen())
	runner.Notify = ui.NewNotifier(program)

	type outcome struct {
		results []batch.FileResult
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := runner.Run(ctx, files)
		done <- outcome{results: results, err: err}
		program.Send(ui.BatchDoneMsg{})
	}()

	_, uiErr := program.Run()
	cancel()
	out := <-done

	if uiErr != nil {
		return out.results, fmt.Errorf("ui: %w", uiErr)
	}
	if out.err != nil {
		return out.results, out.err
	}
	// The alt screen wipes the final view; repeat the summary on stdout.
	fmt.Print(logging.Summary(out.results))
	return out.results, nil
}
