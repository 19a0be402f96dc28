package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dacite-io/dacite/cmd/dacite/commands"
	"github.com/dacite-io/dacite/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dacite",
	Short: "Dacite - content-addressed data substrate",
	Long: `Dacite - distributed, immutable, content-addressed data structures.

Every value carries a 256-bit identity derived from its type and
contents. Identical subtrees share identity; differing roots are
reconciled by transferring only the nodes whose addresses differ.

Available commands:
  hash    - Compute the content address of a JSON document
  serve   - Start the blob and sync server
  sync    - Reconcile with remote peers
  db      - Manage the local blob store
  version - Show version information

Examples:
  dacite hash document.json        # Print the document's address
  dacite hash -s document.json     # Also publish its nodes locally
  dacite serve                     # Serve blobs on the configured addr
  dacite sync ws://peer:8420/sync  # Reconcile with a peer`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (-v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.HashCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.SyncCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
