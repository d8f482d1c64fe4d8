package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/gbxremote/cmd/gbxctl/cmdutil"
	"github.com/marmos91/gbxremote/internal/cli/prompt"
	"github.com/marmos91/gbxremote/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a configuration file",
	Long: `Walk through server address and credentials and write a
configuration file, defaulting to $XDG_CONFIG_HOME/gbxremote/config.yaml.

Use --config to target a custom path, and --force to overwrite an existing
file.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cmdutil.Flags.ConfigPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if _, statErr := os.Stat(path); !initForce && statErr == nil {
		overwrite, err := prompt.Confirm(fmt.Sprintf("%s already exists, overwrite", path), false)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Aborted.")
			return nil
		}
	}

	host, err := prompt.Input("Dedicated server host", "127.0.0.1")
	if err != nil {
		return err
	}
	port, err := prompt.InputPort("XML-RPC port", 5000)
	if err != nil {
		return err
	}
	username, err := prompt.Input("Username", "SuperAdmin")
	if err != nil {
		return err
	}
	password, err := prompt.Password("Password")
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Server.Host = host
	cfg.Server.Port = port
	cfg.Auth.Username = username
	cfg.Auth.Password = password

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("generated configuration is invalid: %w", err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	fmt.Printf("Configuration written to %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  gbxctl status    # verify the connection")
	fmt.Println("  gbxctl connect   # open an interactive session")
	return nil
}
