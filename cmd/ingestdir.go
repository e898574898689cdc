package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/yasminekh/trendgate/internal/blobstore"
	"github.com/yasminekh/trendgate/internal/config"
	"github.com/yasminekh/trendgate/internal/ingest"
	"github.com/yasminekh/trendgate/internal/llm"
	"github.com/yasminekh/trendgate/internal/retrieval"
)

var ingestDirPattern string

var ingestDirCmd = &cobra.Command{
	Use:   "ingest-dir <directory>",
	Short: "Bulk-ingest a directory of PDF reports into the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		root := args[0]
		matches, err := doublestar.Glob(os.DirFS(root), ingestDirPattern)
		if err != nil {
			return fmt.Errorf("matching %q: %w", ingestDirPattern, err)
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "No files matching %q under %s\n", ingestDirPattern, root)
			return nil
		}

		blobs, err := blobstore.NewS3Store(cmd.Context(), blobstore.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return fmt.Errorf("creating blob store: %w", err)
		}

		index := retrieval.NewOpenAIIndex(cfg.OpenAIKey, cfg.Model)
		provider, err := llm.NewProvider(cfg.Provider, cfg.OpenAIKey, cfg.Model)
		if err != nil {
			return fmt.Errorf("creating completion provider: %w", err)
		}
		meta := ingest.NewMetaStore(blobs)
		pipeline := ingest.NewPipeline(blobs, meta, index, tagRefiner(provider, cfg.Model), cfg.BaseVectorStoreID)

		bar := progressbar.NewOptions(len(matches),
			progressbar.OptionSetDescription("Ingesting reports"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		var ingested, duplicates, failed int
		start := time.Now()
		for _, rel := range matches {
			bar.Add(1)

			data, err := os.ReadFile(filepath.Join(root, rel))
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "\n%s: %v\n", rel, err)
				continue
			}

			filename := filepath.Base(rel)
			key := blobstore.ReportKey(filename)
			if err := blobs.Put(cmd.Context(), key, data, "application/pdf"); err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "\n%s: %v\n", rel, err)
				continue
			}

			result, err := pipeline.Ingest(cmd.Context(), ingest.Request{
				BlobKey:  key,
				Filename: filename,
				Pathname: rel,
			})
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "\n%s: %v\n", rel, err)
				continue
			}
			if result.Duplicate {
				duplicates++
				// The blob we just wrote duplicates an earlier one.
				blobs.Delete(cmd.Context(), key)
				continue
			}
			ingested++
		}

		fmt.Fprintf(os.Stderr, "Done in %s: %d ingested, %d duplicates, %d failed\n",
			time.Since(start).Round(time.Second), ingested, duplicates, failed)
		return nil
	},
}

func init() {
	ingestDirCmd.Flags().StringVar(&ingestDirPattern, "pattern", "**/*.pdf", "glob pattern for files to ingest")
	rootCmd.AddCommand(ingestDirCmd)
}
