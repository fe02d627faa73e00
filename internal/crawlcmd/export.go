package crawlcmd

import (
	"fmt"
	"log/slog"

	"github.com/google/renameio"
	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"

	"github.com/loris-tools/loriscrawler/internal/manifest"
)

type parquetRecord struct {
	Project    string `parquet:"project"`
	Candidate  string `parquet:"candidate"`
	Visit      string `parquet:"visit"`
	Filename   string `parquet:"filename"`
	Modality   string `parquet:"modality"`
	TargetPath string `parquet:"target_path"`
	URL        string `parquet:"url"`
}

// NewExportCmd creates the export command converting a manifest to Parquet
func NewExportCmd() *cobra.Command {
	var manifestPath string
	var output string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a crawl manifest to Parquet",
		Long: `Convert an images_manifest.csv to a Parquet file for analysis in external
tooling. The output file is written atomically: readers never observe a
half-written export.`,
		Example: `  # Export a dataset's manifest
  loriscrawler manifest export --manifest ./dataset/images_manifest.csv --output manifest.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(verbose)
			return executeExport(manifestPath, output)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to images_manifest.csv (required)")
	cmd.Flags().StringVar(&output, "output", "manifest.parquet", "Output Parquet file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func executeExport(manifestPath, output string) error {
	records, err := manifest.ReadAll(manifestPath)
	if err != nil {
		return err
	}

	slog.Info("Exporting manifest", "manifest", manifestPath, "records", len(records), "output", output)

	rows := make([]parquetRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, parquetRecord{
			Project:    rec.Project,
			Candidate:  rec.Candidate,
			Visit:      rec.Visit,
			Filename:   rec.Filename,
			Modality:   rec.Modality,
			TargetPath: rec.TargetPath,
			URL:        rec.URL,
		})
	}

	t, err := renameio.TempFile("", output)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer t.Cleanup()

	writer := parquet.NewGenericWriter[parquetRecord](t)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	if err := t.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace output file: %w", err)
	}

	fmt.Printf("Exported %d records to: %s\n", len(rows), output)
	return nil
}
