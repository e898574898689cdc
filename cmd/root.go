package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trendgate",
	Short: "Backend gateway for a trend-report research library",
	Long: `Trendgate is a thin backend gateway that lets a browser frontend upload
PDF trend reports, ingest them into a managed retrieval index, and ask
natural-language questions answered against the uploaded documents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// Local development convenience; absent .env is fine.
		godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "trendgate.yml", "config file path")
}
