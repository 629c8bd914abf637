package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/spvkit/internal/logger"
	"github.com/gogpu/spvkit/pipeline"
	"github.com/gogpu/spvkit/programs"
)

func newBuildCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build [sample...]",
		Short: "Translate sample programs and write one .spv per stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := selectSamples(args)
			if err != nil {
				return err
			}
			cfgs := make([]pipeline.Configuration, len(samples))
			for i, s := range samples {
				cfgs[i] = s.New(s.Name, nil)
			}
			progs, err := pipeline.TranslateAll(cmd.Context(), cfgs, a.cfg.ShaderOptions(nil), a.cfg.Parallelism())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			for i, p := range progs {
				for _, m := range p.Modules {
					path := filepath.Join(out, moduleFile(samples[i].Name, m.Stage.String()))
					if err := os.WriteFile(path, m.Binary(), 0o644); err != nil {
						return err
					}
					logger.Info("wrote module", "path", path, "words", len(m.Words))
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	return cmd
}

func moduleFile(sample, stage string) string {
	return sample + "." + strings.ToLower(stage) + ".spv"
}

// selectSamples resolves names against the catalog; no names means all.
func selectSamples(names []string) ([]programs.Sample, error) {
	if len(names) == 0 {
		return programs.All(), nil
	}
	out := make([]programs.Sample, 0, len(names))
	for _, n := range names {
		s, ok := programs.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown sample %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}
