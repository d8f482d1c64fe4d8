// Package commands implements the gbxctl command tree.
package commands

import (
	"github.com/marmos91/gbxremote/cmd/gbxctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gbxctl",
	Short: "gbxctl - Trackmania dedicated server remote control client",
	Long: `gbxctl drives a Trackmania/ManiaPlanet dedicated server's XML-RPC
remote control interface: it dials the server, authenticates, and issues
calls or watches callbacks over a single persistent connection.

Use "gbxctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmdutil.Flags.ConfigPath, _ = cmd.Flags().GetString("config")
		cmdutil.Flags.LogLevel, _ = cmd.Flags().GetString("log-level")
		cmdutil.Flags.Username, _ = cmd.Flags().GetString("username")
		cmdutil.Flags.Password, _ = cmd.Flags().GetString("password")
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/gbxremote/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().String("username", "", "Override the configured auth username")
	rootCmd.PersistentFlags().String("password", "", "Override the configured auth password")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
