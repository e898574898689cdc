package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/yasminekh/trendgate/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a trendgate.yml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := runWizard()
		if err != nil {
			return err
		}
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfgFile)
		if cfg.BaseVectorStoreID == "" {
			fmt.Println("Next: run 'trendgate create-index' and add the printed id to the config.")
		}
		return nil
	},
}

func runWizard() (*config.Config, error) {
	fmt.Println("Welcome to trendgate! Let's configure your gateway.")
	fmt.Println()

	cfg := config.DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select tag-refinement provider (ollama uses OLLAMA_HOST/OLLAMA_MODEL)",
		Items: []string{"openai", "ollama"},
	}
	if _, provider, err := providerPrompt.Run(); err == nil {
		cfg.Provider = provider
	} else {
		return nil, fmt.Errorf("provider selection: %w", err)
	}

	modelPrompt := promptui.Select{
		Label: "Select answering model",
		Items: []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
	}
	if _, model, err := modelPrompt.Run(); err == nil {
		cfg.Model = model
	} else {
		return nil, fmt.Errorf("model selection: %w", err)
	}

	ask := func(label, def string) (string, error) {
		p := promptui.Prompt{Label: label, Default: def}
		return p.Run()
	}

	port, err := ask("Port", strconv.Itoa(cfg.Port))
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(strings.TrimSpace(port)); err == nil && n > 0 {
		cfg.Port = n
	}

	if cfg.BaseVectorStoreID, err = ask("Base vector store id (blank to create later)", ""); err != nil {
		return nil, err
	}

	origins, err := ask("Allowed origins (comma-separated, blank = permissive)", "")
	if err != nil {
		return nil, err
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if cfg.DemoToken, err = ask("Demo bearer token (blank = open)", ""); err != nil {
		return nil, err
	}

	if cfg.S3.Endpoint, err = ask("S3 endpoint (blank = AWS)", ""); err != nil {
		return nil, err
	}
	if cfg.S3.Region, err = ask("S3 region", cfg.S3.Region); err != nil {
		return nil, err
	}
	if cfg.S3.Bucket, err = ask("S3 bucket", cfg.S3.Bucket); err != nil {
		return nil, err
	}
	if cfg.S3.AccessKey, err = ask("S3 access key", ""); err != nil {
		return nil, err
	}
	secretPrompt := promptui.Prompt{Label: "S3 secret key", Mask: '*'}
	if cfg.S3.SecretKey, err = secretPrompt.Run(); err != nil {
		return nil, err
	}

	if os.Getenv("OPENAI_API_KEY") == "" && os.Getenv("SESSION_SIGNING_SECRET") == "" {
		fmt.Println()
		fmt.Println("Remember to export OPENAI_API_KEY (and optionally SESSION_SIGNING_SECRET).")
	}

	return cfg, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
