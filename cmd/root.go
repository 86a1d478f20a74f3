package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"orgrepos/internal/api"
	"orgrepos/internal/config"
)

// cfgFile holds the path to the configuration file specified via command-line flag.
// If empty, the application will look for config.yaml in the current directory.
var cfgFile string

// appConfig stores the configuration resolved from file, environment and flags.
var appConfig config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "orgrepos",
	Short: "Query GitHub organizations and their public repositories",
	Long: `orgrepos reads GitHub's organization and repository endpoints:
  - org    prints an organization document, or a single field of it
  - repos  lists public repositories, optionally filtered by license key
  - watch  periodically reports repositories appearing or disappearing`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.String("token", "", "GitHub token (env ORGREPOS_GITHUB_TOKEN)")
	flags.String("api-url", "", "GitHub API base URL (default https://api.github.com)")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("github.token", flags.Lookup("token"))
	_ = viper.BindPFlag("github.api_url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(orgCmd, reposCmd, watchCmd)
}

// initConfig loads configuration into appConfig and configures the global logger.
// Flags override environment variables, which override the config file.
func initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg
	setupLogging(appConfig.Log)

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug().Str("file", used).Msg("Loaded configuration")
	}
	return nil
}

func setupLogging(cfg config.LogConfig) {
	zerolog.SetGlobalLevel(cfg.GetLevel())
	if !cfg.IsJSON() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// newOrgClient builds a client for org using the configured API URL and token.
func newOrgClient(org string) api.OrgClient {
	client := api.NewGitHubOrgClient(org, api.NewHTTPFetcher(appConfig.GitHub.Token))
	client.BaseURL = appConfig.GitHub.GetAPIURL()
	return client
}

// resolveOrg picks the organization from the first argument, falling back to github.org.
func resolveOrg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if appConfig.GitHub.Org != "" {
		return appConfig.GitHub.Org, nil
	}
	return "", fmt.Errorf("no organization given: pass it as an argument or set github.org")
}

func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, appConfig.GitHub.GetTimeout())
}
