// Command webdriverd serves automation sessions over the JSON wire protocol.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/webdriverd/pkg/config"
)

// Version information - set via ldflags during build
var (
	version   = "1.0.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "webdriverd",
		Short: "webdriverd - WebDriver session server",
		Long: `webdriverd runs automation sessions against an in-process browser and serves them
over the JSON wire protocol.

Quick start:
  webdriverd serve                       # Listen on 127.0.0.1:4444
  webdriverd serve --bind 127.0.0.1:9515 # Pick another port
  webdriverd config                      # Print the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a config file (default: ~/.webdriverd/config.yaml then ./.webdriverd/config.yaml)")

	root.AddCommand(newServeCommand(opts), newConfigCommand(opts), newVersionCommand())
	return root
}

// loadConfig reads the config file named by --config, or the default hierarchy.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromPath(o.configPath)
	}
	return config.Load()
}
