package cmd

import (
	"github.com/loris-tools/loriscrawler/internal/crawlcmd"
	"github.com/spf13/cobra"
)

func newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect and convert crawl manifests",
		Long: `Tools for working with the images_manifest.csv file a crawl leaves behind.

Supports summarizing the manifest as YAML and exporting it to Parquet for
analysis in external tooling.`,
	}

	// Add manifest subcommands
	cmd.AddCommand(crawlcmd.NewReportCmd())
	cmd.AddCommand(crawlcmd.NewExportCmd())

	return cmd
}
