package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/db"
)

// BackupKind tells a SQLite snapshot apart from a history export taken from
// a non-SQLite history store.
type BackupKind string

const (
	BackupKindDatabase BackupKind = "database"
	BackupKindHistory  BackupKind = "history"

	sqliteHeader        = "SQLite format 3\x00"
	historyBackupSuffix = ".history.json"
	checksumSuffix      = ".sha256"
)

type BackupInfo struct {
	Path      string     `json:"path"`
	Kind      BackupKind `json:"kind"`
	Checksum  string     `json:"checksum"`
	CreatedAt time.Time  `json:"created_at"`
	SizeBytes int64      `json:"size_bytes"`
	Entries   int        `json:"entries"`
	UserID    string     `json:"user_id,omitempty"`
}

// BackupFileName names a database snapshot after its creation time.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("moodmate-%s.db", now.Format("20060102-150405"))
}

// HistoryBackupFileName names a history export for one user.
func HistoryBackupFileName(now time.Time, userID string) string {
	user := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(userID))
	return fmt.Sprintf("moodmate-%s-%s%s", now.Format("20060102-150405"), user, historyBackupSuffix)
}

func IsHistoryBackup(path string) bool {
	return strings.HasSuffix(path, historyBackupSuffix)
}

// CreateBackup snapshots the open database with VACUUM INTO, which reads a
// consistent view even while the WAL holds uncheckpointed pages.
func CreateBackup(sqldb *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := sqldb.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	info := BackupInfo{Path: outPath, Kind: BackupKindDatabase}
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM mood_entries`).Scan(&info.Entries); err != nil {
		return BackupInfo{}, fmt.Errorf("count backed up entries: %w", err)
	}
	if err := sealBackup(&info); err != nil {
		return BackupInfo{}, err
	}
	slog.Debug("created database backup", "path", outPath, "entries", info.Entries)
	return info, nil
}

// CreateHistoryBackup writes userID's history from repo as an export file.
// It covers stores the SQLite snapshot cannot see, such as redis or postgres.
func CreateHistoryBackup(ctx context.Context, repo HistoryRepository, userID, outPath string, now time.Time) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	data, err := ExportHistory(ctx, repo, userID, now)
	if err != nil {
		return BackupInfo{}, err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return BackupInfo{}, fmt.Errorf("marshal history backup: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("create history backup: %w", err)
	}
	if _, err := f.Write(append(raw, '\n')); err != nil {
		_ = f.Close()
		return BackupInfo{}, fmt.Errorf("write history backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return BackupInfo{}, fmt.Errorf("close history backup: %w", err)
	}
	info := BackupInfo{Path: outPath, Kind: BackupKindHistory, Entries: len(data.Entries), UserID: data.UserID}
	if err := sealBackup(&info); err != nil {
		return BackupInfo{}, err
	}
	slog.Debug("created history backup", "path", outPath, "user", data.UserID, "entries", info.Entries)
	return info, nil
}

// RestoreBackup replaces the database at dbPath with a verified snapshot.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if IsHistoryBackup(backupPath) {
		return fmt.Errorf("%w: %s is a history backup; restore it into the history store instead", apperrors.ErrInvalidInput, backupPath)
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if err := verifyChecksum(backupPath); err != nil {
		return err
	}
	if err := checkSQLiteHeader(backupPath); err != nil {
		return err
	}
	if err := checkSnapshot(backupPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	// Stale journal files would be replayed over the restored pages.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", dbPath+suffix, err)
		}
	}
	return copyFile(backupPath, dbPath)
}

// RestoreHistoryBackup appends a history export to userID's history.
// Entries already present are skipped, so a restore can be repeated.
func RestoreHistoryBackup(ctx context.Context, repo HistoryRepository, userID, backupPath string) (ImportReport, error) {
	if !IsHistoryBackup(backupPath) {
		return ImportReport{}, fmt.Errorf("%w: %s is not a history backup", apperrors.ErrInvalidInput, backupPath)
	}
	if err := verifyChecksum(backupPath); err != nil {
		return ImportReport{}, err
	}
	raw, err := os.ReadFile(backupPath)
	if err != nil {
		return ImportReport{}, fmt.Errorf("read history backup: %w", err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ImportReport{}, fmt.Errorf("%w: decode history backup: %v", apperrors.ErrInvalidInput, err)
	}
	return ImportHistory(ctx, repo, userID, &data, ImportOptions{Mode: ImportModeSkip})
}

// ListBackups returns database snapshots and history exports in dir, newest
// first.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		kind := BackupKindDatabase
		switch {
		case IsHistoryBackup(f.Name()):
			kind = BackupKindHistory
		case strings.HasSuffix(f.Name(), ".db"):
		default:
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + checksumSuffix); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Kind: kind, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// sealBackup writes the .sha256 sidecar and fills in checksum and size.
func sealBackup(info *BackupInfo) error {
	checksum, err := fileSHA256(info.Path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(info.Path+checksumSuffix, []byte(checksum+"\n"), 0o644); err != nil {
		return fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(info.Path)
	if err != nil {
		return fmt.Errorf("stat backup: %w", err)
	}
	info.Checksum = checksum
	info.CreatedAt = st.ModTime()
	info.SizeBytes = st.Size()
	return nil
}

// verifyChecksum compares against the sidecar when one exists.
func verifyChecksum(path string) error {
	expected, err := os.ReadFile(path + checksumSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read checksum file: %w", err)
	}
	actual, err := fileSHA256(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(expected)) != actual {
		return fmt.Errorf("backup checksum mismatch")
	}
	return nil
}

func checkSQLiteHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()
	buf := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, buf); err != nil || string(buf) != sqliteHeader {
		return fmt.Errorf("%s is not a SQLite database", path)
	}
	return nil
}

// checkSnapshot runs integrity_check on the backup and requires the moodmate
// schema.
func checkSnapshot(path string) error {
	snap, err := db.Open(path)
	if err != nil {
		return err
	}
	defer snap.Close()
	var result string
	if err := snap.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup failed integrity check: %s", result)
	}
	var tables int
	if err := snap.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name IN ('schema_migrations', 'mood_entries')`).Scan(&tables); err != nil {
		return fmt.Errorf("inspect backup schema: %w", err)
	}
	if tables != 2 {
		return fmt.Errorf("%s is not a moodmate database", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
