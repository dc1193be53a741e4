package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orderdesk/refundflow/internal/config"
	"github.com/orderdesk/refundflow/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Print the refund decision ledger",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		entries, err := ledger.New(cfg.LedgerFile).Entries(cmd.Context())
		if err != nil {
			fmt.Printf("Error reading ledger: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			fmt.Println("No refund decisions recorded.")
			return
		}

		for _, e := range entries {
			email := e.Email
			if email == "" {
				email = "-"
			}
			fmt.Printf("%-14s %-10s %-28s session=%s\n", e.OrderID, e.Status, email, e.SessionID)
		}
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
}
