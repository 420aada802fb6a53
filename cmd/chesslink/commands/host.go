package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func hostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Listen for a peer and play as white",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Core()
			if err != nil {
				return err
			}
			defer c.Close()

			addr := wire.ListenAddr()
			if err := c.Host(addr); err != nil {
				return err
			}
			pterm.Info.Printfln("Waiting for an opponent on %s ...", addr)
			return runPlay(c)
		},
	}
}
