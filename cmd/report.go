package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/planbench/internal/config"
	"github.com/signalnine/planbench/internal/plot"
	"github.com/signalnine/planbench/internal/report"
)

var (
	flagFormat        string
	flagReportSavefig string
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir]",
		Short: "Generate summary from stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			runDir := filepath.Join(cfg.Results.Dir, "latest")
			if len(args) > 0 {
				runDir = args[0]
			}
			resolved, err := filepath.EvalSymlinks(runDir)
			if err != nil {
				return fmt.Errorf("resolving run dir: %w", err)
			}
			if err := report.Generate(resolved, flagFormat, os.Stdout); err != nil {
				return err
			}
			if flagReportSavefig == "" {
				return nil
			}
			suiteStats, err := report.CollectStats(resolved)
			if err != nil {
				return err
			}
			for _, st := range suiteStats {
				figPath := figurePath(flagReportSavefig, st.Suite, len(suiteStats) > 1)
				if err := plot.Render(st, figPath); err != nil {
					return err
				}
				fmt.Printf("Figure written to %s\n", figPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	cmd.Flags().StringVar(&flagReportSavefig, "savefig", "", "re-render figures to this path")
	return cmd
}
