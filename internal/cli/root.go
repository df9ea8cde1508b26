package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/simaogato/pemetrics-backend/internal/config"
	"github.com/simaogato/pemetrics-backend/internal/logger"
)

// app carries the state shared by every command
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the pemetrics command tree
func NewRootCommand() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "pemetrics",
		Short: "Private equity portfolio metrics",
		Long: `Normalize investment schedules and compute MOIC, ROI, DPI, TVPI and IRR
for a filtered selection of investments.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg

			a.log = logger.New(logger.Config{Level: logLevel, Pretty: true, Output: cmd.ErrOrStderr()})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Logging level (debug, info, warn, error)")
	rootCmd.AddCommand(newComputeCommand(a))

	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
