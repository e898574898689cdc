package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yasminekh/trendgate/internal/blobstore"
	"github.com/yasminekh/trendgate/internal/config"
	"github.com/yasminekh/trendgate/internal/ingest"
	"github.com/yasminekh/trendgate/internal/llm"
	"github.com/yasminekh/trendgate/internal/qa"
	"github.com/yasminekh/trendgate/internal/retrieval"
	"github.com/yasminekh/trendgate/internal/server"
	"github.com/yasminekh/trendgate/internal/session"
	"github.com/yasminekh/trendgate/internal/upload"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trend-report gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if servePort > 0 {
			cfg.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		codec, err := session.NewCodec(cfg.SigningSecret(), time.Duration(cfg.SessionTTLMS)*time.Millisecond)
		if err != nil {
			return err
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
		refiner := tagRefiner(provider, cfg.Model)
		pipeline := ingest.NewPipeline(blobs, meta, index, refiner, cfg.BaseVectorStoreID)
		engine := qa.NewEngine(index, cfg.BaseVectorStoreID)

		srv := server.New(server.Config{
			Port:           cfg.Port,
			AllowedOrigins: cfg.AllowedOrigins,
			DemoToken:      cfg.DemoToken,
		})

		r := srv.Router()
		session.RegisterRoutes(r, codec, index)
		qa.RegisterRoutes(r, engine, codec, index)
		ingest.RegisterRoutes(r, pipeline)
		upload.RegisterRoutes(r, codec, index, blobs)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "trendgate v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Library index: %s\n", cfg.BaseVectorStoreID)
		fmt.Fprintf(os.Stderr, "  Blob bucket: %s\n", cfg.S3.Bucket)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
