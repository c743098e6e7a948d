package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"salarycalc/internal/cli"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	dataFile string
	dbPath   string
	apiURL   string
	output   string
	timeout  time.Duration
	debug    bool
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCommand := &cobra.Command{
		Use:           "salaryctl",
		Short:         "Query developer salary survey data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(opts.debug)
			if !validOutput(opts.output) {
				return fmt.Errorf("invalid --output %q: must be one of %v", opts.output, outputFormats)
			}
			return nil
		},
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&opts.dataFile, "data", envOr("DATA_FILE", "./data/calculatorData.json"), "calculator JSON file (local mode)")
	flags.StringVar(&opts.dbPath, "db", "", "read from this SQLite mirror instead of --data (local mode)")
	flags.StringVar(&opts.apiURL, "api", "", "query a running server at this base URL instead of local data")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format: table, json, yaml or csv")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout in --api mode")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newCountriesCommand(opts),
		newLanguagesCommand(opts),
		newLevelsCommand(opts),
		newEntriesCommand(opts),
		newStatsCommand(opts),
		newImportCommand(opts),
	)
	return rootCommand
}

// setupLogger configures the default logger based on debug mode. Logs go to
// stderr so they never mix with command output.
func setupLogger(debugMode bool) {
	logLevel := slog.LevelWarn
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
