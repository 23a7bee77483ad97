// Package cli is the mission-clinic command line: the API server plus offline
// backup, report and seeding tools that work on the same snapshot file.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mission-clinic-server/internal/config"
	"mission-clinic-server/internal/logger"
)

var (
	envFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "mission-clinic",
	Short:         "Coordinate volunteer staffing and patient flow for a mission clinic",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables; a missing file is normal outside the server dir.
		envErr := godotenv.Load(envFile)

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		log = logger.NewLogger(logger.Config{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			File:    cfg.Log.File,
			Service: "mission-clinic",
		})

		if envErr != nil {
			if errors.Is(envErr, fs.ErrNotExist) {
				log.Debug("no env file found", zap.String("path", envFile))
			} else {
				log.Warn("failed to load env file", zap.String("path", envFile), zap.Error(envErr))
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(hashPasscodeCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
