package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"secretchannel/internal/client"
	"secretchannel/internal/crypto"
	"secretchannel/internal/services/peer"
)

func handshakeCmd() *cobra.Command {
	var (
		serverURL string
		keyBits   int
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "handshake",
		Short: "Run the peer side of the handshake and print the decrypted challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				serverURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Lab.SecretChannel.Server.Port)
			}
			key, err := crypto.GenerateRSA(keyBits)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := peer.New(client.NewHTTP(serverURL), key, logger).Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Service fingerprint: %s\n", res.ServiceFingerprint)
			fmt.Printf("Challenge: %s\n", res.Plaintext)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "service base URL (default http://127.0.0.1:<configured port>)")
	cmd.Flags().IntVar(&keyBits, "key-bits", 2048, "size of the peer RSA identity key")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall handshake timeout")
	return cmd
}
