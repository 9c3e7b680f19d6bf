package moodmate

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local moodmate database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			version, err := db.SchemaVersion(sqldb)
			if err != nil {
				return err
			}
			path, err := resolveDBPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized moodmate database at %s (schema v%d)\n", path, version)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
