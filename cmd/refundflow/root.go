package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "refundflow",
	Short: "RefundFlow is a conversational refund adjudication service",
	Long: `RefundFlow runs a staged refund-claim workflow over persisted
conversation sessions: intent review, claim collection, photographic
evidence analysis, adjudication and receipt delivery.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
}
