package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/planbench/internal/config"
	"github.com/signalnine/planbench/internal/suite"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered suites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			reg, err := suite.Load(cfg)
			if err != nil {
				return err
			}
			fmt.Println("Suites:")
			for _, name := range reg.Names() {
				s, err := reg.Resolve(name)
				if err != nil {
					return err
				}
				fmt.Printf("  - %s (%d instances, domain %s)\n", s.Name, len(s.Instances), s.Domain)
			}
			return nil
		},
	}
}
