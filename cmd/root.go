package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/loris-tools/loriscrawler/internal/crawlcmd"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loriscrawler",
		Short: "Incremental LORIS to DataLad imaging ingest tool",
		Long: `Loriscrawler mirrors imaging records from a LORIS API into a DataLad dataset.

Records are laid out as a BIDS hierarchy, registered by URL with git-annex so
content can be fetched later on demand, and tracked in an append-only CSV
manifest that makes repeated runs incremental.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(crawlcmd.NewCrawlCmd())
	cmd.AddCommand(newManifestCmd())

	return cmd
}
