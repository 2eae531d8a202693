package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var plansActiveOnly bool

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Catálogo de planes de suscripción",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista los planes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		plans, err := c.SubscriptionUC.ListPlans(ctx, plansActiveOnly)
		if err != nil {
			return fmt.Errorf("listar planes: %w", err)
		}
		if output == "json" {
			return printJSON(plans)
		}
		if len(plans) == 0 {
			fmt.Println("No hay planes.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOMBRE\tIMPORTE\tINTERVALO\tACTIVO")
		for _, p := range plans {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%t\n",
				p.ID, p.Name, p.Amount.StringFixed(2), strings.ToUpper(p.Currency), p.Interval, p.IsActive)
		}
		return w.Flush()
	},
}

func init() {
	plansListCmd.Flags().BoolVar(&plansActiveOnly, "active", false, "solo planes activos")
	plansCmd.AddCommand(plansListCmd)
	rootCmd.AddCommand(plansCmd)
}
