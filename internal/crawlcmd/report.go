package crawlcmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loris-tools/loriscrawler/internal/manifest"
)

// ManifestSummary is the YAML report over one manifest file
type ManifestSummary struct {
	ManifestPath string         `yaml:"manifestpath"`
	GeneratedAt  string         `yaml:"generatedat"`
	TotalRecords int            `yaml:"totalrecords"`
	Projects     map[string]int `yaml:"projects"`
	Modalities   map[string]int `yaml:"modalities"`
	Candidates   int            `yaml:"candidates"`
}

// NewReportCmd creates the report command summarizing a crawl manifest
func NewReportCmd() *cobra.Command {
	var manifestPath string
	var output string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a crawl manifest as YAML",
		Long: `Summarize an images_manifest.csv: total rows plus per-project and
per-modality counts. Writes YAML to stdout or to a file.`,
		Example: `  # Print a summary of a dataset's manifest
  loriscrawler manifest report --manifest ./dataset/images_manifest.csv

  # Write the summary to a file
  loriscrawler manifest report --manifest ./dataset/images_manifest.csv --output summary.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(verbose)
			return executeReport(manifestPath, output)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to images_manifest.csv (required)")
	cmd.Flags().StringVar(&output, "output", "", "Output YAML file (default: stdout)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func executeReport(manifestPath, output string) error {
	records, err := manifest.ReadAll(manifestPath)
	if err != nil {
		return err
	}

	summary := buildSummary(manifestPath, records)
	summary.GeneratedAt = time.Now().Format("2006-01-02_15-04-05")

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if output == "" {
		fmt.Print(string(data))
		return nil
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	fmt.Printf("Summary written to: %s\n", output)
	return nil
}

func buildSummary(manifestPath string, records []manifest.Record) ManifestSummary {
	summary := ManifestSummary{
		ManifestPath: manifestPath,
		TotalRecords: len(records),
		Projects:     make(map[string]int),
		Modalities:   make(map[string]int),
	}

	candidates := make(map[string]struct{})
	for _, rec := range records {
		summary.Projects[rec.Project]++
		summary.Modalities[rec.Modality]++
		candidates[rec.Project+"/"+rec.Candidate] = struct{}{}
	}
	summary.Candidates = len(candidates)

	return summary
}
