package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"student-scores/printer"
	"student-scores/utils"
)

var (
	tokenSecret string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a service token with the server secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := utils.GenerateToken("scorectl", tokenSecret, tokenTTL)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot sign token", err.Error(), "Pass --secret or set SECRET.")
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", os.Getenv("SECRET"), "signing secret")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
