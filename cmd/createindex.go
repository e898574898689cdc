package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yasminekh/trendgate/internal/config"
	"github.com/yasminekh/trendgate/internal/retrieval"
)

var createIndexName string

var createIndexCmd = &cobra.Command{
	Use:   "create-index",
	Short: "Create the shared library retrieval index",
	Long: `Creates the retrieval index all ingested reports are attached to and prints
its id. Put the id in trendgate.yml (base_vector_store_id) or the
BASE_VECTOR_STORE_ID environment variable before starting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.OpenAIKey == "" {
			return fmt.Errorf("missing OPENAI_API_KEY")
		}

		index := retrieval.NewOpenAIIndex(cfg.OpenAIKey, cfg.Model)
		id, err := index.CreateIndex(cmd.Context(), createIndexName)
		if err != nil {
			return fmt.Errorf("creating index: %w", err)
		}

		fmt.Printf("BASE_VECTOR_STORE_ID = %s\n", id)
		return nil
	},
}

func init() {
	createIndexCmd.Flags().StringVar(&createIndexName, "name", "TREND_LIBRARY", "name for the new index")
	rootCmd.AddCommand(createIndexCmd)
}
