// Command spvkit builds the sample shader programs and inspects SPIR-V.
//
// Usage:
//
//	spvkit build [-o dir] [sample...]   # write <sample>.<stage>.spv files
//	spvkit dis [--watch] file.spv...    # disassemble
//	spvkit formats                      # list the texel format table
//
// All commands accept --config with a TOML settings file.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gogpu/spvkit/config"
	"github.com/gogpu/spvkit/internal/logger"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func (a *app) load(*cobra.Command, []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	cfg.Apply()
	a.cfg = cfg
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "spvkit",
		Short:             "Build and inspect SPIR-V shader modules",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML settings file")
	root.AddCommand(newBuildCmd(a), newDisCmd(a), newFormatsCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("spvkit", "err", err)
		stop()
		os.Exit(1)
	}
}
