package cli

import (
	"github.com/spf13/cobra"

	"reddit-status-alerts/internal/app"
)

var (
	exportPNG string
	exportCSV string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the current report series to PNG and/or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Export(cmd.Context(), app.ExportOptions{
			PNGPath: exportPNG,
			CSVPath: exportCSV,
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPNG, "png", "", "Output path for the PNG chart")
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "Output path for the CSV file")
}
