package moodmate

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings stored in the moodmate database",
}

var (
	cfgDefaultUser string
	cfgHemisphere  string
	cfgTipSeed     string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			updates := 0
			if cmd.Flags().Changed("default-user") {
				if err := service.SetConfig(sqldb, service.ConfigDefaultUser, cfgDefaultUser); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("hemisphere") {
				if err := service.SetConfig(sqldb, service.ConfigHemisphere, cfgHemisphere); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("tip-seed") {
				if err := service.SetConfig(sqldb, service.ConfigTipSeed, cfgTipSeed); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show stored and effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			stored, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stored))
			for k := range stored {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(out, "%s\t%s\n", k, stored[k])
			}

			user, err := resolveUser(sqldb)
			if err != nil {
				return err
			}
			hemisphere, err := resolveHemisphere(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "effective user\t%s\n", user)
			fmt.Fprintf(out, "effective hemisphere\t%s\n", hemisphere)
			fmt.Fprintf(out, "storage driver\t%s\n", cfg.Storage.Driver)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)

	configSetCmd.Flags().StringVar(&cfgDefaultUser, "default-user", "", "User to use when --user is not given")
	configSetCmd.Flags().StringVar(&cfgHemisphere, "hemisphere", "", "Hemisphere for seasonal insights: north|south")
	configSetCmd.Flags().StringVar(&cfgTipSeed, "tip-seed", "", "Seed for reproducible tips")
}
