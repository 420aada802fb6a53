package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"chesslink/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", crypto.IdentityFingerprint(id))
			return nil
		},
	}
}
