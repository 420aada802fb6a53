package commands

import (
	"errors"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chesslink/internal/domain"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved game without connecting",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := wire.Games.LoadGame(passphrase)
			if errors.Is(err, domain.ErrNotFound) {
				pterm.Info.Println("No saved game.")
				return nil
			}
			if err != nil {
				return err
			}
			pterm.DefaultBox.Println(renderBoard(st.Game.Position))
			pterm.Info.Printfln("Game %s, %d moves, %s to move",
				st.Game.GameID, len(st.Game.Moves), st.Game.SideToMove())
			pterm.Info.Printfln("You played as %s, peer %s, saved %s",
				st.Role, st.PeerFingerprint,
				time.Unix(st.SavedUTC, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}
}
