package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chesslink/internal/app"
)

var (
	home       string
	passphrase string
	port       int
	playerName string
	verbose    bool

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "chesslink",
		Short: "Peer-to-peer encrypted chess over TCP",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".chesslink")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			logger := pterm.DefaultLogger
			if verbose {
				logger.Level = pterm.LogLevelDebug
			} else {
				logger.Level = pterm.LogLevelWarn
			}
			log := slog.New(pterm.NewSlogHandler(&logger))
			slog.SetDefault(log)

			var err error
			wire, err = app.NewWire(app.Config{
				Home:       home,
				Passphrase: passphrase,
				Port:       port,
				PlayerName: playerName,
				Logger:     log,
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.chesslink)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting keys and saved games")
	root.PersistentFlags().IntVar(&port, "port", 0, "TCP port override (default from settings)")
	root.PersistentFlags().StringVar(&playerName, "name", "", "display name override")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(initCmd(), fingerprintCmd(), hostCmd(), joinCmd(), playCmd(), showCmd(), resetCmd())
	return root.Execute()
}
