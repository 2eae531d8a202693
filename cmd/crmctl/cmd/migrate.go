package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/crm-portal-api/internal/infrastructure/postgres"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migraciones del esquema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Aplica las migraciones pendientes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(mg *postgres.Migrator) error { return mg.Up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revierte migraciones (por defecto una)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(mg *postgres.Migrator) error { return mg.Down(migrateSteps) })
	},
}

func withMigrator(fn func(*postgres.Migrator) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Component("migrate"))
	if err != nil {
		return err
	}
	defer func() { _ = mg.Close() }()
	return fn(mg)
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "número de migraciones a revertir")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
