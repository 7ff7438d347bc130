// Package configcmder provides the config command for managing persistent
// plume configuration stored in the .plume/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent plume configuration.

Configuration is stored as config.toml in the .plume/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  gateway.provider, gateway.upstream, gateway.listen, gateway.api_key,
  client.target, client.model

Use subcommands to get, set, or list configuration values:
  plume config set <key> <value>    Set a configuration value
  plume config get <key>            Get a configuration value
  plume config list                 List all configuration values

Examples:
  plume config set gateway.provider openai
  plume config set gateway.upstream https://api.openai.com
  plume config get gateway.provider
  plume config list`

const configShortDesc string = "Manage persistent plume configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
