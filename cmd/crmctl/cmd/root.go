// Package cmd contiene los comandos de crmctl.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/crm-portal-api/internal/bootstrap"
	"github.com/jhoicas/crm-portal-api/pkg/config"
	"github.com/jhoicas/crm-portal-api/pkg/logger"
)

var (
	output   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "crmctl",
	Short: "Operación del portal CRM",
	Long: `crmctl ejecuta tareas de operación contra la base de datos del portal.
Lee la misma configuración que la API (variables de entorno o .env).

Ejemplos:
  # Aplicar migraciones pendientes
  crmctl migrate up

  # Reintentar el registro externo de una empresa en un proyecto
  crmctl reregister --company <uuid> --project <uuid>

  # Listar el catálogo de planes
  crmctl plans list -o json`,
	SilenceUsage: true,
}

// Execute ejecuta el comando raíz.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "formato de salida (table, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "nivel de log (debug, info, warn, error)")
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: logLevel, Service: "crmctl"})
	return cfg, log, nil
}

func openContainer(ctx context.Context) (*bootstrap.Container, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, log)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
