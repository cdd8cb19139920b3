package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"secretchannel/internal/app"
)

func fingerprintCmd() *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the persisted identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				passphrase = cfg.IdentityPassphrase
			}
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p or IDENTITY_PASSPHRASE)")
			}
			fp, err := app.NewIdentityService(cfg, logger).FingerprintIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "identity store passphrase")
	return cmd
}
