package commands

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"secretchannel/internal/app"
)

var (
	configPath string
	cfg        app.Config
	logger     *logrus.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:           "secretchannel",
		Short:         "Authenticated Diffie-Hellman secret channel lab service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = app.Read(configPath); err != nil {
				return err
			}
			logger, err = app.NewLogger(cfg.Log, os.Stderr)
			return err
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", app.DefaultConfigPath, "path to the YAML configuration")

	root.AddCommand(serveCmd(), handshakeCmd(), fingerprintCmd(), configCmd())
	err := root.Execute()
	if err != nil {
		root.PrintErrln("Error:", err)
	}
	return err
}
