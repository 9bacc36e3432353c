// Package session runs a child process on a pseudoterminal and keeps a screen model of its output
package session

import (
	"fmt"
	"strings"
	"time"

	"pty-terminal/pkg/terminal"
)

const (
	// DefaultTerm is the TERM value exported to the child
	DefaultTerm = "xterm-256color"
	// DefaultPager is the PAGER value exported to the child
	DefaultPager = "less"
	// DefaultLess is the LESS value exported to the child so that less passes colors through
	DefaultLess = "-R"

	DefaultPollInterval = 20 * time.Millisecond
	DefaultGracePeriod  = 2 * time.Second
	DefaultChunkSize    = 4096
)

// Config defines the fixed parameters of a session
type Config struct {
	Rows         int               `json:"rows"`
	Cols         int               `json:"cols"`
	Command      []string          `json:"command,omitempty"`
	Dir          string            `json:"dir,omitempty"`
	Term         string            `json:"term"`
	Pager        string            `json:"pager"`
	Less         string            `json:"less"`
	Env          map[string]string `json:"env,omitempty"`
	PollInterval time.Duration     `json:"poll_interval"`
	GracePeriod  time.Duration     `json:"grace_period"`
	ChunkSize    int               `json:"chunk_size"`
}

// DefaultConfig returns the configuration used when nothing is specified
func DefaultConfig() Config {
	return Config{
		Rows:         terminal.DefaultRows,
		Cols:         terminal.DefaultCols,
		Term:         DefaultTerm,
		Pager:        DefaultPager,
		Less:         DefaultLess,
		PollInterval: DefaultPollInterval,
		GracePeriod:  DefaultGracePeriod,
		ChunkSize:    DefaultChunkSize,
	}
}

// Validate checks if the configuration is usable
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Rows > 1000 {
		return fmt.Errorf("rows must be between 1 and 1000, got: %d", c.Rows)
	}
	if c.Cols <= 0 || c.Cols > 1000 {
		return fmt.Errorf("cols must be between 1 and 1000, got: %d", c.Cols)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %v", c.PollInterval)
	}
	if c.GracePeriod < 0 {
		return fmt.Errorf("grace period cannot be negative")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got: %d", c.ChunkSize)
	}
	for key := range c.Env {
		if key == "" || strings.ContainsAny(key, "=\x00") {
			return fmt.Errorf("invalid environment variable name: %q", key)
		}
	}
	return nil
}

// withDefaults fills zero values from DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Rows == 0 {
		c.Rows = def.Rows
	}
	if c.Cols == 0 {
		c.Cols = def.Cols
	}
	if c.Term == "" {
		c.Term = def.Term
	}
	if c.Pager == "" {
		c.Pager = def.Pager
	}
	if c.Less == "" {
		c.Less = def.Less
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = def.ChunkSize
	}
	return c
}

// environment builds the child's environment: the parent's variables with
// the terminal variables and configured extras overriding them
func (c Config) environment(parent []string) []string {
	overrides := map[string]string{
		"TERM":  c.Term,
		"PAGER": c.Pager,
		"LESS":  c.Less,
	}
	for k, v := range c.Env {
		overrides[k] = v
	}

	env := make([]string, 0, len(parent)+len(overrides))
	for _, kv := range parent {
		name, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[name]; ok {
			continue
		}
		env = append(env, kv)
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}
