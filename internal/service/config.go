package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/keshangamage/Moodmate/internal/apperrors"
)

const (
	ConfigDefaultUser = "default_user"
	ConfigHemisphere  = "hemisphere"
	ConfigTipSeed     = "tip_seed"
)

// ValidateConfigValue checks a value before it is written to app_config.
func ValidateConfigValue(key, value string) error {
	value = strings.TrimSpace(value)
	switch normalizeName(key) {
	case ConfigDefaultUser:
		if value == "" {
			return fmt.Errorf("%w: default user cannot be empty", apperrors.ErrInvalidInput)
		}
	case ConfigHemisphere:
		if _, err := ParseHemisphere(value); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
	case ConfigTipSeed:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("%w: tip seed must be an integer", apperrors.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown config key %q", apperrors.ErrInvalidInput, key)
	}
	return nil
}

func SetConfig(db *sql.DB, key, value string) error {
	key = normalizeName(key)
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	if err := ValidateConfigValue(key, value); err != nil {
		return err
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = normalizeName(key)
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}
