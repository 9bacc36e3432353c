package cmd

import (
	"time"

	"github.com/spf13/pflag"

	"pty-terminal/pkg/session"
)

// sessionFlags are the session settings shared by run and config save
type sessionFlags struct {
	rows  int
	cols  int
	dir   string
	term  string
	env   map[string]string
	grace time.Duration
	poll  time.Duration
}

func (f *sessionFlags) register(fs *pflag.FlagSet) {
	def := session.DefaultConfig()
	fs.IntVar(&f.rows, "rows", def.Rows, "screen rows")
	fs.IntVar(&f.cols, "cols", def.Cols, "screen columns")
	fs.StringVar(&f.dir, "dir", "", "working directory of the command")
	fs.StringVar(&f.term, "term", def.Term, "TERM exported to the command")
	fs.StringToStringVarP(&f.env, "env", "e", nil, "extra environment for the command (KEY=VALUE)")
	fs.DurationVar(&f.grace, "grace", def.GracePeriod, "time between SIGTERM and SIGKILL on stop")
	fs.DurationVar(&f.poll, "poll", def.PollInterval, "readiness poll interval")
}

// apply copies the flags the user set onto cfg, leaving the rest alone so
// that profile values survive
func (f *sessionFlags) apply(fs *pflag.FlagSet, cfg *session.Config) {
	if fs.Changed("rows") {
		cfg.Rows = f.rows
	}
	if fs.Changed("cols") {
		cfg.Cols = f.cols
	}
	if fs.Changed("dir") {
		cfg.Dir = f.dir
	}
	if fs.Changed("term") {
		cfg.Term = f.term
	}
	if fs.Changed("env") {
		if cfg.Env == nil {
			cfg.Env = make(map[string]string, len(f.env))
		}
		for k, v := range f.env {
			cfg.Env[k] = v
		}
	}
	if fs.Changed("grace") {
		cfg.GracePeriod = f.grace
	}
	if fs.Changed("poll") {
		cfg.PollInterval = f.poll
	}
}
