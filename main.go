package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/listingwatch/config"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/pkg/errors"
)

// Exit codes
const (
	exitOK         = 0
	exitUsage      = 1
	exitExpression = 2
	exitFailure    = 3
)

// exitError ends the process with a specific code. A nil err exits quietly.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// app carries the state shared by all commands
type app struct {
	cfg     *config.Config
	cfgFile string
	out     io.Writer
	errOut  io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	var runTests, testExitOnFailure bool

	cmd := &cobra.Command{
		Use:   "listingwatch",
		Short: "Watch paginated listings and report the entries matching a filter",
		Long: `listingwatch scrapes eMAG clearance listings and Launchpad translation
statistics, filters the entries with a condition expression and reports the
matches as text, RSS or email.

` + expressionHelp,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
		Args:              cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runTests {
				return a.runSelfChecks(testExitOnFailure)
			}
			cmd.SetOut(a.errOut)
			_ = cmd.Help()
			return &exitError{code: exitUsage}
		},
	}

	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", os.Getenv("LISTINGWATCH_CONFIG"), "YAML config file overlaid on the environment")
	cmd.Flags().BoolVarP(&runTests, "run-tests", "t", false, "Run the built-in self-check suite")
	cmd.Flags().BoolVar(&testExitOnFailure, "test-exit-on-failure", false, "Stop the self-check suite at the first failure")

	cmd.AddCommand(a.emagCmd())
	cmd.AddCommand(a.reviewsCmd())
	cmd.AddCommand(a.watchCmd())

	return cmd
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if logger.Default == nil {
		logger.Init()
	}

	cfg := config.LoadConfig()
	if a.cfgFile != "" {
		if err := config.LoadFile(cfg, a.cfgFile); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if stderrors.As(err, &exitErr) {
		return exitErr.code
	}
	if errors.IsExpression(err) || errors.IsEvaluation(err) {
		return exitExpression
	}
	var scrapeErr *errors.ScrapeError
	if stderrors.As(err, &scrapeErr) && scrapeErr.Type != errors.ErrorTypeConfiguration {
		return exitFailure
	}
	return exitUsage
}

// execute runs the command line and returns the exit status
func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		var exitErr *exitError
		if !stderrors.As(err, &exitErr) || exitErr.err != nil {
			fmt.Fprintln(a.errOut, err)
			if exitCode(err) == exitExpression || !isRuntimeError(err) {
				fmt.Fprintln(a.errOut, "See --help for usage")
			}
		}
	}
	return exitCode(err)
}

// isRuntimeError reports whether err came from running a command rather
// than from the command line itself
func isRuntimeError(err error) bool {
	var scrapeErr *errors.ScrapeError
	return stderrors.As(err, &scrapeErr)
}

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Default.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	code := execute(ctx, &app{out: os.Stdout, errOut: os.Stderr}, os.Args[1:])
	cancel()
	os.Exit(code)
}
