// Command memoryd runs the knowledge-graph retrieval engine as a stdio
// line-protocol server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags; it stays "dev" otherwise.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "memoryd",
	Short: "memoryd - knowledge-graph memory backend for an agent assistant",
	Long: `memoryd persists a labeled graph of entities and relations to a single
JSONL file and serves context search, entity/relation mutations, and
neighborhood lookups over a line-delimited stdio protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the memoryd version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
