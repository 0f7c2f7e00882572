package cli

import (
	"github.com/spf13/cobra"

	"reddit-status-alerts/internal/app"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch and print the trailing-24h report series",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Report(cmd.Context(), app.ReportOptions{JSON: reportJSON})
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the series as JSON")
}
