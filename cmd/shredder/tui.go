package shredder

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/unformat/shredder/internal/tui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tui [file]",
		Short: "Inspect and shred a file interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			err = tui.Run(newEngine(), path, tui.WithOutDir(s.OutDir))
			if errors.Is(err, tui.ErrNotTerminal) {
				return errors.New("tui needs an interactive terminal; use inspect or clean instead")
			}
			return err
		},
	}
	cmd.Flags().String("out", "", "save cleaned files under this directory")
	rootCmd.AddCommand(cmd)
}
