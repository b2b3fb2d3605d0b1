package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"student-scores/client"
)

var (
	serverURL string
	token     string
	subject   string
)

var rootCmd = &cobra.Command{
	Use:   "scorectl",
	Short: "Command-line client for the student score service",
	Long: `scorectl reads the reconciled score view, applies patches and imports,
manages the threshold configuration and keeps an offline replica that can be
edited without a connection and flushed later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Errors are already printed by the printer.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("SCORES_SERVER", "http://localhost:8000"), "service base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SCORES_TOKEN"), "bearer token for mutating calls")
	rootCmd.PersistentFlags().StringVar(&subject, "subject", "math", "subject used for thresholds")
}

func newClient() *client.Client {
	return client.New(serverURL, token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
