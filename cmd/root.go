package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pty-terminal/pkg/config"
)

const version = "1.0.0"

// rootOptions holds the persistent flags and what they configure
type rootOptions struct {
	verbose   bool
	logFile   string
	configDir string

	logger    *logrus.Logger
	logOutput io.Closer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: logrus.New()}

	rootCmd := &cobra.Command{
		Use:   "pty-terminal",
		Short: "Run a command on a pseudoterminal and show its screen",
		Long: `pty-terminal runs a program on a pseudoterminal, interprets its output
into a fixed-size screen and forwards your keys to it.

On a terminal the screen is shown full-screen; otherwise the program runs
headless and its final screen is printed when it exits.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Persistent flags (available to all subcommands)
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.StringVar(&opts.configDir, "config-dir", "", "directory holding saved profiles (default: user config directory)")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

// Execute builds the command tree and runs it
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures the shared logger from the persistent flags
func (o *rootOptions) setupLogging(stderr io.Writer) error {
	o.logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	o.logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		o.logger.SetLevel(logrus.DebugLevel)
	}

	if o.logFile == "" {
		o.logger.SetOutput(stderr)
		return nil
	}

	file, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	o.logger.SetOutput(file)
	o.logOutput = file
	return nil
}

func (o *rootOptions) closeLog() {
	if o.logOutput != nil {
		o.logOutput.Close()
		o.logOutput = nil
	}
}

// profiles returns the profile store selected by --config-dir
func (o *rootOptions) profiles() (*config.FileProfileManager, error) {
	dir := o.configDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultConfigDir(); err != nil {
			return nil, err
		}
	}
	return config.NewFileProfileManager(dir), nil
}
