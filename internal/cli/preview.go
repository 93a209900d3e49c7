package cli

import (
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the report for the last stored day without scraping or sending",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Preview(cmd.Context())
	},
}
