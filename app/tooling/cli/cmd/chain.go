package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain and pending transactions.",
	RunE:  chainRun,
}

var blockCmd = &cobra.Command{
	Use:   "block <index>",
	Short: "Print the block at the index.",
	Args:  cobra.ExactArgs(1),
	RunE:  blockRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(blockCmd)
}

func chainRun(cmd *cobra.Command, args []string) error {
	return call(cmd.OutOrStdout(), http.MethodGet, "/v1/blockchain", nil)
}

func blockRun(cmd *cobra.Command, args []string) error {
	return call(cmd.OutOrStdout(), http.MethodGet, fmt.Sprintf("/v1/block/%s", args[0]), nil)
}
