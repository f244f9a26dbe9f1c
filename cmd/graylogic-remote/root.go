package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
)

// defaultConfigPath is used when neither --config nor GRAYLOGIC_REMOTE_CONFIG
// is set.
const defaultConfigPath = "configs/remote.yaml"

// newRootCmd creates the root command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "graylogic-remote",
		Short:         "Gray Logic zone control surface",
		Long:          "graylogic-remote connects to a zone's remote feedback source,\nmirrors its feedback and sends device commands.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("graylogic-remote {{.Version}}\n")
	cmd.PersistentFlags().StringP("config", "c", "", "configuration file (default $GRAYLOGIC_REMOTE_CONFIG or "+defaultConfigPath+")")

	cmd.AddCommand(
		newRunCmd(),
		newSendCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)
	return cmd
}

// configPath resolves the configuration file: flag, then environment, then
// the default.
func configPath(cmd *cobra.Command) string {
	if path, err := cmd.Flags().GetString("config"); err == nil && path != "" {
		return path
	}
	if path := os.Getenv("GRAYLOGIC_REMOTE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// newVersionCmd creates the "version" subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "graylogic-remote %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
			return nil
		},
	}
}
