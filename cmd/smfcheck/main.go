// Package main is the entry point for smfcheck CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"

	"github.com/james-see/smfcheck/pkg/api"
	"github.com/james-see/smfcheck/pkg/batch"
	"github.com/james-see/smfcheck/pkg/discover"
	"github.com/james-see/smfcheck/pkg/export"
	"github.com/james-see/smfcheck/pkg/hexview"
	"github.com/james-see/smfcheck/pkg/listing"
	"github.com/james-see/smfcheck/pkg/tui"
	"github.com/james-see/smfcheck/pkg/validator"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose    bool
	recursive  bool
	pairNotes  bool
	strict     bool
	jobs       int
	format     string
	outputFile string
	hexOffset  int
	hexRows    int
	plain      bool
	serverPort int
)

// errValidationFailed is returned when at least one file did not pass
var errValidationFailed = errors.New("validation failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "smfcheck",
	Short: "Validate the structure of Standard MIDI Files",
	Long: `smfcheck checks Standard MIDI Files (.mid/.midi) for structural problems:
bad chunk headers, malformed variable-length quantities, running status
misuse, truncated events, inconsistent track lengths and missing
End-of-Track markers.

Examples:
  smfcheck validate song.mid
  smfcheck validate -r ./library -f csv -o report.csv
  smfcheck hex broken.mid
  smfcheck events song.mid
  smfcheck tui
  smfcheck serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <paths...>",
	Short: "Validate MIDI files and folders",
	Long:  `Validates every given MIDI file and every MIDI file found in the given folders. Exits non-zero when any file fails.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var hexCmd = &cobra.Command{
	Use:   "hex <file>",
	Short: "Hex dump a MIDI file with problem bytes highlighted",
	Args:  cobra.ExactArgs(1),
	RunE:  runHex,
}

var eventsCmd = &cobra.Command{
	Use:   "events <file>",
	Short: "List the events of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// validate command
	validateCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subfolders")
	validateCmd.Flags().BoolVar(&pairNotes, "pair-notes", false, "Count notes left sounding at the end of each track")
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Warn on tempos outside 10000..2000000 us/quarter")
	validateCmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Files validated in parallel")
	validateCmd.Flags().StringVarP(&format, "format", "f", string(export.FormatTable), "Output format (table, text, json, csv)")
	validateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the report to a file instead of stdout")

	// hex command
	hexCmd.Flags().IntVar(&hexOffset, "offset", -1, "Byte offset to centre on (default: first diagnostic)")
	hexCmd.Flags().IntVar(&hexRows, "rows", 0, "Rows to show (default: whole file)")
	hexCmd.Flags().BoolVar(&plain, "plain", false, "No colors, mark bytes with [] (errors) and <> (warnings)")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(hexCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func validatorOptions() validator.Options {
	return validator.Options{PairNotes: pairNotes, Strict: strict}
}

func runValidate(cmd *cobra.Command, args []string) error {
	f := export.Format(strings.ToLower(format))
	if !slices.Contains(export.Formats(), f) {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	paths, err := discover.FindMIDIFiles(args, recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no MIDI files found")
	}
	slog.Debug("discovered files", "count", len(paths), "recursive", recursive)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := batch.Run(ctx, paths, batch.Options{
		Validator: validatorOptions(),
		Jobs:      jobs,
		Progress: func(done, total int, r batch.Result) {
			slog.Debug("progress", "done", done, "total", total, "path", r.Path)
		},
	})
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		out = file
	}

	if err := export.Write(out, f, batch.Reports(results)); err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
		}
	}

	passed, failed := batch.Summary(results)
	fmt.Fprintf(os.Stderr, "%d file(s) checked: %d OK, %d failed\n", len(results), passed, failed)
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputFile)
	}
	if failed > 0 {
		return errValidationFailed
	}
	return nil
}

func runHex(cmd *cobra.Command, args []string) error {
	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read MIDI file: %w", err)
	}

	report := validator.Validate(input, data, validatorOptions())
	opts := hexview.Options{Rows: hexRows, Plain: plain}
	if hexOffset >= 0 || hexRows > 0 {
		offset := hexOffset
		if offset < 0 {
			offset = report.FirstOffset()
		}
		opts = hexview.Window(offset, hexRows)
		opts.Plain = plain
	}

	fmt.Print(hexview.Render(data, hexview.MarksFromReport(report), opts))
	fmt.Printf("%s: %d error(s), %d warning(s)\n", input, report.ErrorCount(), report.WarningCount())
	return nil
}

func runEvents(cmd *cobra.Command, args []string) error {
	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read MIDI file: %w", err)
	}

	if report := validator.Validate(input, data, validator.Options{}); !report.OK {
		slog.Warn("file has structural errors, listing may be incomplete", "path", input, "errors", report.ErrorCount())
	}

	l, err := listing.List(data)
	if err != nil {
		return err
	}
	return l.Write(os.Stdout)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
