package moodmate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/app"
	"github.com/keshangamage/Moodmate/internal/config"
	"github.com/keshangamage/Moodmate/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore mood history",
	Long: "With the sqlite driver a backup is a snapshot of the whole database. " +
		"With redis or postgres the database only holds settings and reminders, so " +
		"create also writes a history export for the current user.",
}

var (
	backupOut    string
	backupDir    string
	backupJSON   bool
	restoreFile  string
	restoreForce bool
)

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s session) error {
			dbFile, err := resolveDBPath()
			if err != nil {
				return err
			}
			dir := backupDir
			if dir == "" {
				dir = app.BackupDir(dbFile)
			}
			stamp := now.Now()
			out := backupOut
			if out == "" {
				out = filepath.Join(dir, service.BackupFileName(stamp))
			}

			created := make([]service.BackupInfo, 0, 2)
			info, err := service.CreateBackup(s.db, out)
			if err != nil {
				return err
			}
			created = append(created, info)
			if !historyInSQLite() {
				historyOut := filepath.Join(filepath.Dir(out), service.HistoryBackupFileName(stamp, s.userID))
				hist, err := service.CreateHistoryBackup(ctx, s.repo, s.userID, historyOut, stamp)
				if err != nil {
					return fmt.Errorf("back up %s history: %w", storageDriver(), err)
				}
				created = append(created, hist)
			}

			if backupJSON {
				return printJSON(cmd, "backup", created)
			}
			for _, b := range created {
				printBackup(cmd, b)
			}
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbFile, err := resolveDBPath()
		if err != nil {
			return err
		}
		dir := backupDir
		if dir == "" {
			dir = app.BackupDir(dbFile)
		}
		items, err := service.ListBackups(dir)
		if err != nil {
			return err
		}
		if backupJSON {
			return printJSON(cmd, "backups", items)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FILE\tKIND\tSIZE\tCREATED\tCHECKSUM")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\n", it.Path, it.Kind, it.SizeBytes, it.CreatedAt.Format(time.RFC3339), shortChecksum(it.Checksum))
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a database snapshot or a history backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		if service.IsHistoryBackup(restoreFile) {
			return withSession(cmd, func(ctx context.Context, s session) error {
				report, err := service.RestoreHistoryBackup(ctx, s.repo, s.userID, restoreFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d entries for %s into %s (skipped %d already present)\n",
					report.Inserted, s.userID, storageDriver(), report.Skipped)
				return nil
			})
		}

		dbFile, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(restoreFile, dbFile, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored database from %s\n", restoreFile)
		if !historyInSQLite() {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: history lives in %s; restore a .history.json backup to recover it\n", storageDriver())
		}
		return nil
	},
}

func printBackup(cmd *cobra.Command, b service.BackupInfo) {
	out := cmd.OutOrStdout()
	switch b.Kind {
	case service.BackupKindHistory:
		fmt.Fprintf(out, "Created history backup: %s (%d entries for %s from %s)\n", b.Path, b.Entries, b.UserID, storageDriver())
	default:
		label := "database backup"
		if !historyInSQLite() {
			label = "settings backup"
		}
		fmt.Fprintf(out, "Created %s: %s (%d entries)\n", label, b.Path, b.Entries)
	}
	fmt.Fprintf(out, "Checksum: %s\n", b.Checksum)
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	if sum == "" {
		return "-"
	}
	return sum
}

func storageDriver() string {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		return config.DriverSQLite
	}
	return driver
}

// historyInSQLite reports whether entries are stored in the local database.
func historyInSQLite() bool {
	return storageDriver() == config.DriverSQLite
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Database backup path (history backups are written next to it)")
	backupCreateCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (used when --out is empty)")
	backupCreateCmd.Flags().BoolVar(&backupJSON, "json", false, "Print created backups as JSON")
	backupListCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: alongside DB under backups/)")
	backupListCmd.Flags().BoolVar(&backupJSON, "json", false, "Print backups as JSON")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup file: a .db snapshot or a .history.json export")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite existing DB if present")
}
