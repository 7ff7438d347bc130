// Package initcmder provides the init command for initializing a local .plume
// directory in the current working directory.
package initcmder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/plumechat/plume/pkg/cliui"
	"github.com/plumechat/plume/pkg/config"
)

const (
	dirName    = ".plume"
	configFile = "config.toml"
)

const initLongDesc string = `Initialize a new .plume/ directory in the current working directory.

Creates a local .plume/ directory that takes precedence over the default
~/.plume/ directory for configuration.

This is useful for maintaining separate plume configuration per project
or directory.

The --preset flag seeds the config.toml from a named provider preset
(ollama, openai) or from a remote URL serving a TOML config.

Examples:
  plume init
  plume init --preset openai
  plume init --preset https://example.com/plume-config.toml`

const initShortDesc string = "Initialize a local .plume/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Seed config from a provider preset (ollama, openai) or a remote TOML URL")

	return cmd
}

func runInit(preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	alreadyInitialized := err == nil && info.IsDir()

	if !alreadyInitialized {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .plume directory: %w", err)
		}
	}

	configPath := filepath.Join(dir, configFile)

	switch {
	case preset != "":
		cfg, err := resolvePreset(preset)
		if err != nil {
			return err
		}
		if err := writeConfig(configPath, cfg); err != nil {
			return err
		}

	default:
		// Without a preset, seed defaults only when no config exists yet.
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			if err := writeConfig(configPath, config.NewDefaultConfig()); err != nil {
				return err
			}
		}
	}

	if alreadyInitialized {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	fmt.Printf("Initialized .plume directory: %s\n", dir)
	return nil
}

// resolvePreset maps a preset argument to a Config. URLs are fetched and
// parsed as TOML; anything else is treated as a named preset.
func resolvePreset(preset string) (*config.Config, error) {
	if strings.HasPrefix(preset, "http://") || strings.HasPrefix(preset, "https://") {
		return fetchRemoteConfig(preset)
	}
	return config.PresetConfig(preset)
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	var cfg *config.Config

	err := cliui.Step(os.Stdout, "Fetching remote config", func() error {
		client := &http.Client{Timeout: 30 * time.Second}

		resp, err := client.Get(url)
		if err != nil {
			return fmt.Errorf("fetching remote config: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading remote config: %w", err)
		}

		cfg, err = config.ParseConfigTOML(data)
		return err
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeConfig(path string, cfg *config.Config) error {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
