package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	amount float64
	from   string
	to     string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a transaction.",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Address sending the amount.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address receiving the amount.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	tx := struct {
		Amount float64 `json:"amount"`
		From   string  `json:"from"`
		To     string  `json:"to"`
	}{
		Amount: amount,
		From:   from,
		To:     to,
	}

	return call(cmd.OutOrStdout(), http.MethodPost, "/v1/transaction", tx)
}
