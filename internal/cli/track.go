package cli

import (
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run one tracking cycle and deliver the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Track(cmd.Context())
	},
}
