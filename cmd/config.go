package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pty-terminal/pkg/session"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage saved session profiles",
		Long: `Manage saved session profiles.

A profile stores a command together with its screen size, environment and
stop settings so that it can be started with 'pty-terminal run --profile'.`,
	}

	configCmd.AddCommand(newSaveCmd(root))
	configCmd.AddCommand(newListCmd(root))
	configCmd.AddCommand(newShowCmd(root))
	configCmd.AddCommand(newDeleteCmd(root))
	return configCmd
}

func newSaveCmd(root *rootOptions) *cobra.Command {
	var (
		flags       sessionFlags
		description string
	)

	saveCmd := &cobra.Command{
		Use:   "save <name> [flags] [-- command [args...]]",
		Short: "Save a session profile",
		Long: `Save a session profile with a given name. Saving over an existing
profile keeps its creation time.`,
		Example: `  pty-terminal config save logs --rows 50 -- tail -f /var/log/syslog`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg := session.DefaultConfig()
			flags.apply(cmd.Flags(), &cfg)
			if len(args) > 1 {
				cfg.Command = args[1:]
			}

			manager, err := root.profiles()
			if err != nil {
				return err
			}
			if err := manager.SaveProfile(name, cfg); err != nil {
				return fmt.Errorf("error saving profile '%s': %w", name, err)
			}
			if description != "" {
				if err := manager.SetDescription(name, description); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile '%s' saved successfully.\n", name)
			printSessionConfig(out, cfg)
			return nil
		},
	}

	flags.register(saveCmd.Flags())
	saveCmd.Flags().StringVarP(&description, "description", "d", "", "description shown by config list")
	return saveCmd
}

func newListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := root.profiles()
			if err != nil {
				return err
			}
			profiles, err := manager.ListProfiles()
			if err != nil {
				return fmt.Errorf("error listing profiles: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No saved profiles found.")
				fmt.Fprintln(out, "\nUse 'pty-terminal config save <name>' to save a profile.")
				return nil
			}

			fmt.Fprintf(out, "Found %d saved profile(s):\n\n", len(profiles))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOMMAND\tSIZE\tLAST USED\tDESCRIPTION")
			fmt.Fprintln(w, "----\t-------\t----\t---------\t-----------")
			for _, p := range profiles {
				fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%s\n",
					p.Name,
					commandString(p.Config.Command),
					p.Config.Cols, p.Config.Rows,
					formatTime(p.LastUsedAt, "2006-01-02 15:04"),
					p.Description)
			}
			w.Flush()

			fmt.Fprintln(out, "\nUse 'pty-terminal run --profile <name>' to start a profile.")
			return nil
		},
	}
}

func newShowCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show details of a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := root.profiles()
			if err != nil {
				return err
			}
			profile, err := manager.GetProfile(args[0])
			if err != nil {
				return fmt.Errorf("error loading profile '%s': %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(profile)
			}

			fmt.Fprintf(out, "Profile: %s\n", profile.Name)
			fmt.Fprintln(out, strings.Repeat("=", len(profile.Name)+9))
			if profile.Description != "" {
				fmt.Fprintf(out, "Description:  %s\n", profile.Description)
			}
			printSessionConfig(out, profile.Config)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Created:      %s\n", formatTime(profile.CreatedAt, time.RFC3339))
			fmt.Fprintf(out, "Last Used:    %s\n", formatTime(profile.LastUsedAt, time.RFC3339))
			return nil
		},
	}

	showCmd.Flags().BoolVar(&asJSON, "json", false, "print the stored profile as JSON")
	return showCmd
}

func newDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Short:   "Delete a saved profile",
		Aliases: []string{"rm", "remove"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := root.profiles()
			if err != nil {
				return err
			}
			if err := manager.DeleteProfile(args[0]); err != nil {
				return fmt.Errorf("error deleting profile '%s': %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted successfully.\n", args[0])
			return nil
		},
	}
}

func printSessionConfig(w io.Writer, cfg session.Config) {
	fmt.Fprintf(w, "  Command:      %s\n", commandString(cfg.Command))
	fmt.Fprintf(w, "  Size:         %dx%d\n", cfg.Cols, cfg.Rows)
	if cfg.Dir != "" {
		fmt.Fprintf(w, "  Directory:    %s\n", cfg.Dir)
	}
	fmt.Fprintf(w, "  TERM:         %s\n", cfg.Term)
	fmt.Fprintf(w, "  Grace Period: %v\n", cfg.GracePeriod)
	fmt.Fprintf(w, "  Poll:         %v\n", cfg.PollInterval)

	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  Env:          %s=%s\n", k, cfg.Env[k])
	}
}

func commandString(command []string) string {
	if len(command) == 0 {
		return "-"
	}
	return strings.Join(command, " ")
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Format(layout)
}
