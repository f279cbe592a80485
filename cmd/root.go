package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nyota-payments",
	Short: "Nyota loan payments microservice",
	Long:  "A payments microservice for M-Pesa STK-push collection, gateway callbacks, and loan application intake.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
