package cli

import (
	"github.com/spf13/cobra"
)

var simulateDescription string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a status transition and dispatch the alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SimulateAlert(cmd.Context(), simulateDescription)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateDescription, "description", "", "Degraded status description to simulate")
}
