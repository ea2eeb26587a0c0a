// Package cmd wires the command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "a68go",
	Short: "An interpreter",
	Long:  `a68go interprets programs from files, arguments or an interactive session.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
