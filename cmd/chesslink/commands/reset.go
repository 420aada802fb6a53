package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// resetCmd clears saved session remnants. The board reset is opt-in and
// separate from the connection: forgetting the game requires --new-game.
func resetCmd() *cobra.Command {
	var newGame bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard session state, optionally the saved game too",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !newGame {
				pterm.Info.Println("Nothing to do: sessions end when the process exits. Use --new-game to discard the saved game.")
				return nil
			}
			if err := wire.Games.DeleteGame(); err != nil {
				return err
			}
			pterm.Success.Println("Saved game discarded. The next host/join starts fresh.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&newGame, "new-game", false, "delete the saved game")
	return cmd
}
