package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

var (
	reregisterCompany string
	reregisterProject string
)

var reregisterCmd = &cobra.Command{
	Use:   "reregister",
	Short: "Reintenta el registro externo de los usuarios pendientes",
	Long: `Registra en el sistema externo del proyecto a los usuarios de la empresa con
membresía activa y sin id externo. El acceso debe estar activo.

Ejemplo:
  crmctl reregister --company 3f6c... --project 9a1b...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		operator := entity.Actor{UserID: "crmctl", Role: entity.RoleSuperAdmin}
		res, err := c.AccessUC.Reregister(ctx, operator, reregisterCompany, reregisterProject)
		if err != nil {
			return fmt.Errorf("reregister: %w", err)
		}
		if output == "json" {
			return printJSON(res)
		}
		printRegistration(res)
		return nil
	},
}

func printRegistration(res *dto.RegistrationResult) {
	fmt.Printf("%s (%d usuarios)\n\n", res.Message, res.Total)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RESULTADO\tUSUARIO\tEMAIL\tDETALLE")
	for _, u := range res.Results.Success {
		ext := ""
		if u.ExternalUserID != nil {
			ext = "id externo " + *u.ExternalUserID
		}
		fmt.Fprintf(w, "ok\t%s\t%s\t%s\n", u.Name, u.Email, ext)
	}
	for _, u := range res.Results.Failed {
		fmt.Fprintf(w, "fallo\t%s\t%s\t%s\n", u.Name, u.Email, u.Error)
	}
	_ = w.Flush()
}

func init() {
	reregisterCmd.Flags().StringVar(&reregisterCompany, "company", "", "ID de la empresa")
	reregisterCmd.Flags().StringVar(&reregisterProject, "project", "", "ID del proyecto")
	_ = reregisterCmd.MarkFlagRequired("company")
	_ = reregisterCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(reregisterCmd)
}
