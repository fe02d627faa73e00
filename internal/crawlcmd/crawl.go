package crawlcmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loris-tools/loriscrawler/internal/datalad"
	"github.com/loris-tools/loriscrawler/internal/ingest"
	"github.com/loris-tools/loriscrawler/internal/loris"
	"github.com/loris-tools/loriscrawler/internal/manifest"
)

// ManifestName is the manifest file kept inside the dataset directory.
const ManifestName = "images_manifest.csv"

// NewCrawlCmd creates the crawl command, the incremental ingest pipeline
func NewCrawlCmd() *cobra.Command {
	var datasetDir string
	var apiBase string
	var get bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Incrementally mirror LORIS images into a DataLad dataset",
		Long: `Crawl a LORIS API and register every imaging record in a DataLad dataset.

Records are renamed into a BIDS hierarchy and registered by URL with
git-annex, so no content is downloaded unless --get is passed. Every
registration is recorded in images_manifest.csv inside the dataset; re-running
the crawl skips everything already in the manifest, so runs are incremental
and safe to repeat after a partial failure.

Credentials are read from LORIS_USERNAME and LORIS_PASSWORD, with an
interactive prompt as fallback.`,
		Example: `  # Register all images without downloading content
  loriscrawler crawl --dataset ./dataset --api-base https://phantom.loris.ca/api/v0.0.3

  # Register and download content immediately
  loriscrawler crawl --dataset ./dataset --api-base https://phantom.loris.ca/api/v0.0.3 --get`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(verbose)
			return executeCrawl(datasetDir, apiBase, get)
		},
	}

	cmd.Flags().StringVar(&datasetDir, "dataset", "", "Path to DataLad dataset (required)")
	cmd.Flags().StringVar(&apiBase, "api-base", "", "LORIS API base URL, e.g. https://phantom.loris.ca/api/v0.0.3 (required)")
	cmd.Flags().BoolVar(&get, "get", false, "Download file content after registering URLs")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("api-base")
	return cmd
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

func executeCrawl(datasetDir, apiBase string, get bool) error {
	datasetDir, err := filepath.Abs(datasetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve dataset path: %w", err)
	}

	username, password, err := credentials()
	if err != nil {
		return err
	}

	client := loris.NewClient(apiBase)
	slog.Info("Logging in to LORIS API", "base", client.BaseURL)
	if err := client.Login(username, password); err != nil {
		return err
	}
	slog.Info("Login successful")

	backend := datalad.NewDataset(datasetDir)
	if err := backend.Init(); err != nil {
		return err
	}
	if err := backend.ConfigureAuth(client.Token()); err != nil {
		return err
	}

	manifestPath := filepath.Join(datasetDir, ManifestName)
	seen, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	slog.Info("Loaded manifest", "path", manifestPath, "registered", len(seen))

	appender := manifest.Open(manifestPath)
	defer func() {
		if err := appender.Close(); err != nil {
			slog.Error("Failed to close manifest", "error", err)
		}
	}()

	runner := &ingest.Runner{
		Client:   client,
		Backend:  backend,
		Manifest: appender,
		Seen:     seen,
	}

	if get {
		fetchLog, err := manifest.OpenFetchLog(manifest.FetchLogPath(manifestPath))
		if err != nil {
			return err
		}
		defer func() {
			if err := fetchLog.Close(); err != nil {
				slog.Error("Failed to close fetch log", "error", err)
			}
		}()
		runner.FetchLog = fetchLog
	}

	if err := runner.Run(); err != nil {
		return err
	}

	fmt.Printf("\nDataset saved at: %s\n", datasetDir)
	fmt.Println("Files have been registered in git-annex")
	if !get {
		fmt.Println("To download files, run:")
		fmt.Printf("  cd %s\n", datasetDir)
		fmt.Println("  datalad get <file-path>")
	}
	return nil
}
