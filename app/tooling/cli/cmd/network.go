package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <node>",
	Short: "Register a node with the network.",
	Args:  cobra.ExactArgs(1),
	RunE:  registerRun,
}

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Run a consensus round with the known peers.",
	RunE:  consensusRun,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(consensusCmd)
}

func registerRun(cmd *cobra.Command, args []string) error {
	node := struct {
		Node string `json:"node"`
	}{
		Node: args[0],
	}

	return call(cmd.OutOrStdout(), http.MethodPost, "/v1/nodes/broadcast", node)
}

func consensusRun(cmd *cobra.Command, args []string) error {
	return call(cmd.OutOrStdout(), http.MethodGet, "/v1/consensus", nil)
}
