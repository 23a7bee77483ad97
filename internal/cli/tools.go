package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mission-clinic-server/internal/catalog"
	"mission-clinic-server/internal/handlers"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/report"
	"mission-clinic-server/internal/utils"
)

var (
	exportOut  string
	importFile string
	reportDay  string
	reportOut  string
	seedOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup of the current state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := bootstrap(cmd.Context(), cfg, log)
		defer a.close()

		out := exportOut
		if out == "" {
			out = handlers.BackupFilename(time.Now())
		}
		if err := writeSnapshot(out, a.store.Snapshot(nil)); err != nil {
			return err
		}
		log.Info("backup written", zap.String("path", out))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the whole state from a backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open backup: %w", err)
		}
		defer f.Close()

		snap, err := models.DecodeSnapshot(f)
		if err != nil {
			return fmt.Errorf("%s: %w", importFile, err)
		}

		a := bootstrap(cmd.Context(), cfg, log)
		defer a.close()
		a.store.ReplaceState(snap)

		st := a.store.State()
		log.Info("backup imported",
			zap.String("path", importFile),
			zap.Int("participants", len(st.Participants)),
			zap.Int("clinic_days", len(st.ClinicDays)),
			zap.Int("assignments", len(st.Assignments)))
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the staffing workbook of a clinic day",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := bootstrap(cmd.Context(), cfg, log)
		defer a.close()

		st := a.store.State()
		data, err := report.StaffingWorkbook(&st, reportDay)
		if err != nil {
			return err
		}
		out := reportOut
		if out == "" {
			out = fmt.Sprintf("staffing-%s.xlsx", reportDay)
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info("report written", zap.String("path", out))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the sample data set as a snapshot file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := seedOut
		if out == "" {
			out = cfg.SnapshotPath
		}
		st := catalog.SampleState()
		if err := writeSnapshot(out, st.ToSnapshot(nil)); err != nil {
			return err
		}
		log.Info("sample snapshot written", zap.String("path", out))
		return nil
	},
}

var hashPasscodeCmd = &cobra.Command{
	Use:   "hash-passcode [passcode]",
	Short: "Print the bcrypt hash to use as ADMIN_PASSCODE_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := utils.HashPasscode(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default mission-clinic-backup-<date>.json)")

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Backup file to import")
	_ = importCmd.MarkFlagRequired("file")

	reportCmd.Flags().StringVar(&reportDay, "day", "", "Clinic day id")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output file (default staffing-<day>.xlsx)")
	_ = reportCmd.MarkFlagRequired("day")

	seedCmd.Flags().StringVarP(&seedOut, "out", "o", "", "Output file (default SNAPSHOT_PATH)")
}

func writeSnapshot(path string, snap models.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := models.EncodeSnapshot(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
