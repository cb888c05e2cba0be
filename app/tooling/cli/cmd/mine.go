package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var background bool

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine the pending transactions into a new block.",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().BoolVarP(&background, "background", "b", false, "Signal the node to mine in the background.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	if background {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/mining/signal", nil)
	}

	return call(cmd.OutOrStdout(), http.MethodGet, "/v1/mine", nil)
}
