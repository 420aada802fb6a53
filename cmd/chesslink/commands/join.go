package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chesslink/internal/domain"
	"chesslink/internal/transport"
)

func joinCmd() *cobra.Command {
	var peerFP string
	cmd := &cobra.Command{
		Use:   "join <host-address>",
		Short: "Connect to a host and play as black",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Core()
			if err != nil {
				return err
			}
			defer c.Close()

			addr := transport.WithDefaultPort(args[0])
			if err := c.Connect(addr, domain.Fingerprint(peerFP)); err != nil {
				return err
			}
			pterm.Info.Printfln("Connecting to %s ...", addr)
			return runPlay(c)
		},
	}
	cmd.Flags().StringVar(&peerFP, "peer-fingerprint", "", "pin the host's identity fingerprint")
	return cmd
}
