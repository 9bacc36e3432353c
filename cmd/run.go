package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pty-terminal/pkg/app"
	"pty-terminal/pkg/history"
)

// runOptions holds the flags of the run command
type runOptions struct {
	session        sessionFlags
	profile        string
	transcript     string
	format         string
	transcriptSize int
	headless       bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run [flags] [--] command [args...]",
		Short: "Run a command on a pseudoterminal",
		Long: `Run a command on a pseudoterminal and show its screen.

Keys are forwarded to the command. Ctrl+Q stops it (SIGTERM, then SIGKILL
after the grace period) and F1 shows the key help.

Flags must come before the command. Settings from --profile are used as the
base and any flag given explicitly overrides them.`,
		Example: `  pty-terminal run bash
  pty-terminal run --rows 40 --cols 120 -- git log
  pty-terminal run --profile dev
  echo ls | pty-terminal run --headless sh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig(root, cmd.Flags(), args)
			if err != nil {
				return err
			}

			root.logger.Debugf("running %v (%dx%d)", cfg.Command, cfg.Session.Cols, cfg.Session.Rows)
			runner, err := app.NewRunner(cfg, root.logger)
			if err != nil {
				return err
			}
			return runner.Run()
		},
	}

	// everything after the command name belongs to the command
	runCmd.Flags().SetInterspersed(false)
	opts.register(runCmd.Flags())
	return runCmd
}

func (o *runOptions) register(fs *pflag.FlagSet) {
	o.session.register(fs)
	fs.StringVarP(&o.profile, "profile", "p", "", "start from a saved profile")
	fs.StringVarP(&o.transcript, "transcript", "t", "", "save the session transcript to this file")
	fs.StringVar(&o.format, "format", history.FormatTimestamped.String(), "transcript format: plain, timestamped or json")
	fs.IntVar(&o.transcriptSize, "transcript-size", history.DefaultMaxSize, "maximum bytes kept in the transcript")
	fs.BoolVar(&o.headless, "headless", false, "run without the full-screen view even on a terminal")
}

// appConfig merges the profile, the flags and the command line
func (o *runOptions) appConfig(root *rootOptions, fs *pflag.FlagSet, args []string) (app.AppConfig, error) {
	cfg := app.DefaultAppConfig()

	if o.profile != "" {
		manager, err := root.profiles()
		if err != nil {
			return cfg, err
		}
		sessionConfig, err := manager.LoadProfile(o.profile)
		if err != nil {
			return cfg, fmt.Errorf("failed to load profile '%s': %w", o.profile, err)
		}
		cfg.Session = sessionConfig
	}
	o.session.apply(fs, &cfg.Session)

	cfg.Command = args
	if len(cfg.Command) == 0 {
		cfg.Command = cfg.Session.Command
	}
	if len(cfg.Command) == 0 {
		return cfg, errors.New("no command given and the profile does not name one")
	}

	format, err := history.ParseFileFormat(o.format)
	if err != nil {
		return cfg, err
	}
	cfg.TranscriptFile = o.transcript
	cfg.TranscriptFormat = format
	cfg.TranscriptSize = o.transcriptSize
	cfg.Headless = o.headless

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
