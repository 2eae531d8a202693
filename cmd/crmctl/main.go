// Package main es el punto de entrada de crmctl, la CLI de operación del portal.
package main

import (
	"os"

	"github.com/jhoicas/crm-portal-api/cmd/crmctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
