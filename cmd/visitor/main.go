// Command visitor runs the HttpExample function.
//
// Usage:
//
//	visitor serve                     Serve the function over HTTP
//	visitor migrate                   Create the postgres visitor table
//	visitor invoke --body '{...}'     Run one invocation and print the result
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "visitor",
		Short: "Greet visitors and record their visits",
		Long: `visitor answers POST requests carrying {"name": "..."} with "Hello {name}"
and stores every visit in the configured document store.

Configuration is read from VISITOR_* environment variables and an optional .env file.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newInvokeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
