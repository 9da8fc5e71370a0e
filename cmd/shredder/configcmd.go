package shredder

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unformat/shredder/internal/config"
	"github.com/unformat/shredder/internal/types"
)

var (
	cfgOutput    string
	cfgThreads   int
	cfgMaxBytes  int64
	cfgFailOn    string
	cfgNoColor   bool
	cfgOutDir    string
	cfgInclude   string
	cfgExclude   string
	cfgServeAddr string
	cfgForce     bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .shredder.yml with the selected options",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".shredder.yml", "output file path")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().Int64Var(&cfgMaxBytes, "max-bytes", config.DefaultMaxBytes, "skip files larger than this")
	initCmd.Flags().StringVar(&cfgFailOn, "fail-on", "", "default inspect gate: none|low|medium|high")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().StringVar(&cfgOutDir, "out", "", "default output directory for clean")
	initCmd.Flags().StringVar(&cfgInclude, "include", "", "comma-separated globs to include")
	initCmd.Flags().StringVar(&cfgExclude, "exclude", "", "comma-separated globs to exclude")
	initCmd.Flags().StringVar(&cfgServeAddr, "serve-addr", config.DefaultServeAddr, "serve listen address")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if cfgFailOn != "" {
		if _, err := types.ParseRisk(cfgFailOn); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}
	if !cfgForce {
		if _, err := os.Stat(cfgOutput); err == nil {
			return fmt.Errorf("%s exists (use --force to overwrite)", cfgOutput)
		}
	}

	fc := config.FileConfig{
		Threads:   intPtr(cfgThreads),
		NoColor:   boolPtr(cfgNoColor),
		OutDir:    optStrPtr(cfgOutDir),
		Include:   optStrPtr(cfgInclude),
		Exclude:   optStrPtr(cfgExclude),
		MaxBytes:  int64Ptr(cfgMaxBytes),
		FailOn:    optStrPtr(cfgFailOn),
		ServeAddr: optStrPtr(cfgServeAddr),
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }
