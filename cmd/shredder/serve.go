package shredder

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unformat/shredder/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspect/shred API on a loopback address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(newEngine(),
				server.WithLogger(slog.Default()),
				server.WithMaxBytes(s.MaxBytes),
			)
			return srv.ListenAndServe(ctx, s.ServeAddr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (loopback only, default 127.0.0.1:8787)")
	cmd.Flags().Int64("max-bytes", 0, "upload size limit")
	rootCmd.AddCommand(cmd)
}
