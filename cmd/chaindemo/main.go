// Command chaindemo opens a resizable window and keeps a presentation chain
// alive for it, clearing every frame to a rotating colour.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/vkngwrapper/presentkit/config"
	"github.com/vkngwrapper/presentkit/fault"
	"golang.org/x/exp/slog"
)

func newRootCmd() *cobra.Command {
	var configPath string
	var validation bool

	cmd := &cobra.Command{
		Use:   "chaindemo",
		Short: "Provision a presentation chain for an SDL window",
		Long: `chaindemo negotiates a device, surface format, depth format and present mode
against the preference lists in the config file, then rebuilds the chain on
every resize. Settings can be overridden with PRESENTKIT_* variables, for
example PRESENTKIT_PRESENT_MODE=unsynced.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("validation") {
				cfg.Validation.Enabled = validation
			}

			level, err := cfg.LogLevel()
			if err != nil {
				return err
			}

			app := &ChainDemo{
				cfg:    cfg,
				logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
				reporter: fault.ReporterFunc(func(message string) {
					log.Println(message)
				}),
			}
			return app.Run()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "presentkit.toml", "path to a TOML config file; a missing file means defaults")
	cmd.Flags().BoolVar(&validation, "validation", false, "enable validation layers and the debug messenger")
	return cmd
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
