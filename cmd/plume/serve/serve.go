// Package servecmder provides the serve command for running the gateway server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/plumechat/plume/gateway"
	"github.com/plumechat/plume/pkg/config"
	"github.com/plumechat/plume/pkg/logger"
)

type ServeCommander struct {
	listen       string
	upstream     string
	providerType string
	apiKey       string
	debug        bool

	v      *viper.Viper
	logger *zap.Logger
}

// serveFlags is the flag registry for the serve command. Defaults come from
// NewDefaultConfig via the viper key, so flags, env vars, and config.toml
// cannot drift apart.
var serveFlags = config.FlagSet{
	config.FlagListen:   {Name: "listen", Shorthand: "l", ViperKey: "gateway.listen", Description: "Address for the gateway to listen on"},
	config.FlagUpstream: {Name: "upstream", Shorthand: "u", ViperKey: "gateway.upstream", Description: "Upstream LLM provider URL"},
	config.FlagProvider: {Name: "provider", Shorthand: "p", ViperKey: "gateway.provider", Description: "LLM provider type (ollama, openai)"},
	config.FlagAPIKey:   {Name: "api-key", ViperKey: "gateway.api_key", Description: "API key for the upstream provider"},
}

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagUpstream,
	config.FlagProvider,
	config.FlagAPIKey,
}

const serveLongDesc string = `Run the Plume gateway server.

The gateway accepts chat requests from the browser UI, forwards them to the
configured LLM backend, and streams normalized plain-text content back.

Configuration precedence: flags > PLUME_* env vars > config.toml > defaults.

Examples:
  plume serve
  plume serve --provider openai --upstream https://api.openai.com --api-key $OPENAI_API_KEY
  plume serve --listen :9090`

const serveShortDesc string = "Run the Plume gateway server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, serveFlags, config.FlagProvider, &cmder.providerType)
	config.AddStringFlag(cmd, serveFlags, config.FlagAPIKey, &cmder.apiKey)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	gwConfig := gateway.Config{
		ListenAddr:  c.v.GetString("gateway.listen"),
		Provider:    c.v.GetString("gateway.provider"),
		UpstreamURL: c.v.GetString("gateway.upstream"),
		APIKey:      c.v.GetString("gateway.api_key"),
	}

	server, err := gateway.New(gwConfig, c.logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
