package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(cfg.String())
			if err := cfg.Validate(); err != nil {
				logger.WithError(err).Warn("configuration is not servable")
			}
			return nil
		},
	}
}
