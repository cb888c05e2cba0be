// Package cmd contains the ledger cli commands.
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var url string

var rootCmd = &cobra.Command{
	Use:           "cli",
	Short:         "Command line client for a ledger node",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node public api.")
}

// Execute runs the command line with the process arguments.
func Execute() {
	if err := Run(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}

// Run runs the command line with the specified arguments and writes the
// results to out.
func Run(args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	return rootCmd.Execute()
}
