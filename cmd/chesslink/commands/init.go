package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"chesslink/internal/crypto"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			id, err := crypto.GenerateIdentity()
			if err != nil {
				return err
			}
			if err := wire.Identity.SaveIdentity(passphrase, id); err != nil {
				return err
			}
			fmt.Printf("Identity created.\nFingerprint: %s\n", crypto.IdentityFingerprint(id))
			return nil
		},
	}
}
