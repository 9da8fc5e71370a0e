package shredder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON    bool
	flagNoColor bool
	flagQuiet   bool
	flagEnvFile string

	version = "0.1.0"
)

// errGate is returned when findings reach the --fail-on threshold.
var errGate = errors.New("findings at or above the fail-on threshold")

// rootCmd is the base Cobra command for the shredder CLI.
var rootCmd = &cobra.Command{
	Use:   "shredder",
	Short: "Strip metadata and secrets from files before you share them",
	Long: "Shredder inspects images, PDFs and text files for identifying metadata and " +
		"leaked secrets, and writes cleaned CLEAN_<name> copies. Everything runs locally.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the shredder CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errGate) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress narration and info logs")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file with SHREDDER_* settings")
}

// setupLogging installs the slog default handler on stderr.
func setupLogging(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if s.Quiet {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}
