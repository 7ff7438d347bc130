// Package plumecmder
package plumecmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/plumechat/plume/cmd/plume/chat"
	configcmder "github.com/plumechat/plume/cmd/plume/config"
	initcmder "github.com/plumechat/plume/cmd/plume/init"
	servecmder "github.com/plumechat/plume/cmd/plume/serve"
	versioncmder "github.com/plumechat/plume/cmd/version"
)

const plumeLongDesc string = `Plume is a streaming chat gateway for LLM backends.

It normalizes the streaming responses of local and cloud providers into
plain text deltas that a browser chat UI can render directly.

Run the gateway using:
  plume serve          Run the gateway server
  plume chat           Interactive chat through the gateway`

const plumeShortDesc string = "Plume - Streaming Chat Gateway"

func NewPlumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plume",
		Short: plumeShortDesc,
		Long:  plumeLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .plume/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
