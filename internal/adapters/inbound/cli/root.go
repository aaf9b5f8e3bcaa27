package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/config"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/detector"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/discovery"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/executor"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/gitinfo"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/history"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/probe"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/report"
	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/tui"
	"github.com/ch1kim0n1/HackSentinel/internal/application"
	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	timeoutSeconds  int
	perEntrySeconds int
	outputPath      string
	format          string
	exclude         []string
	ports           []int
	safeMode        bool
	quiet           bool
	verbose         bool
	assumeYes       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sentinel [path]",
		Short: "Find runtime bugs by actually running your project",
		Long: "Sentinel detects what kind of project lives in a directory, discovers its runnable\n" +
			"entry points, executes each one in an isolated subprocess under strict time budgets,\n" +
			"and turns crashes, error output and hangs into a severity-ranked bug report.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runAnalysis(cmd, path, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.timeoutSeconds, "timeout", "t", 0, "Global deadline for the whole run, in seconds (default 120)")
	cmd.Flags().IntVar(&opts.perEntrySeconds, "per-entry-timeout", 0, "Timeout per entry point, in seconds (default 10)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "markdown", "Report format: markdown or json")
	cmd.Flags().StringSliceVarP(&opts.exclude, "exclude", "e", nil, "Glob patterns for entry points to skip (repeatable)")
	cmd.Flags().IntSliceVar(&opts.ports, "ports", nil, "Ports to probe when an entry point looks like a server")
	cmd.Flags().BoolVar(&opts.safeMode, "safe-mode", false, "Discover and report entry points without executing anything")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Stream the full diagnostic log to stderr")
	cmd.Flags().BoolVarP(&opts.assumeYes, "yes", "y", false, "Skip the execution confirmation prompt")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDemoCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

func runAnalysis(cmd *cobra.Command, path string, opts *rootOptions) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := buildConfig(cmd, absPath, opts)
	if err != nil {
		return err
	}

	if !cfg.SafeMode && !opts.assumeYes && !opts.quiet {
		ok, err := confirmExecution(cmd, absPath)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	runner := executor.New()
	runner.Prober = probe.New()
	runner.Ports = cfg.Ports

	svc := application.NewAnalyzeService(
		detector.New(),
		discovery.New(),
		runner,
		gitinfo.New(),
		history.New(),
		progressFunc(cmd, opts),
	)

	result, err := svc.Analyze(cmd.Context(), absPath, cfg)
	if err != nil {
		return err
	}

	return renderResult(cmd, result, opts)
}

// buildConfig layers CLI flags over .sentinel.yaml over defaults.
// A flag only overrides the file when it was actually set.
func buildConfig(cmd *cobra.Command, absPath string, opts *rootOptions) (domain.AnalysisConfig, error) {
	cfg, err := config.New().Load(absPath)
	if err != nil {
		return domain.AnalysisConfig{}, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.GlobalDeadline = time.Duration(opts.timeoutSeconds) * time.Second
	}
	if flags.Changed("per-entry-timeout") {
		cfg.PerEntryTimeout = time.Duration(opts.perEntrySeconds) * time.Second
	}
	if flags.Changed("exclude") {
		cfg.ExcludePatterns = opts.exclude
	}
	if flags.Changed("ports") {
		cfg.Ports = opts.ports
	}
	if opts.safeMode {
		cfg.SafeMode = true
	}

	if err := cfg.Validate(); err != nil {
		return domain.AnalysisConfig{}, err
	}
	return cfg, nil
}

// confirmExecution warns that sentinel runs project code for real and
// asks for a go-ahead. EOF on stdin (piped input) counts as consent so
// scripted runs don't hang.
func confirmExecution(cmd *cobra.Command, absPath string) (bool, error) {
	yellow := color.New(color.FgYellow).FprintfFunc()
	yellow(cmd.ErrOrStderr(), "sentinel will execute code found in %s.\n", absPath)
	yellow(cmd.ErrOrStderr(), "Only run it against projects you trust. Continue? [Y/n] ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes", nil
}

func progressFunc(cmd *cobra.Command, opts *rootOptions) application.ProgressFunc {
	if opts.quiet {
		return nil
	}
	gray := color.New(color.FgHiBlack).FprintfFunc()
	return func(entry domain.DiagnosticEntry) {
		if !opts.verbose && strings.HasPrefix(entry.Message, "warning:") {
			return
		}
		gray(cmd.ErrOrStderr(), "  %s\n", entry.Message)
	}
}

func renderResult(cmd *cobra.Command, result *domain.AnalysisResult, opts *rootOptions) error {
	var rendered string
	switch opts.format {
	case "markdown":
		rendered = report.Markdown(result)
	case "json":
		out, err := report.JSON(result)
		if err != nil {
			return fmt.Errorf("rendering json report: %w", err)
		}
		rendered = out
	default:
		return fmt.Errorf("unknown format %q (want markdown or json)", opts.format)
	}
	rendered = report.Redact(rendered)

	if opts.outputPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	}

	if err := os.WriteFile(opts.outputPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(result))
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", opts.outputPath)
	return nil
}
