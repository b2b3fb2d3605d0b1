package commands

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"student-scores/models"
	"student-scores/printer"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or replace the threshold configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := newClient().GetConfig(cmd.Context())
		if err != nil {
			return failed(cmd, "Could not read configuration", err)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <file.yaml>",
	Short: "Replace the configuration with a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot read configuration file", err.Error(), "")
		}
		var cfg models.Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Invalid YAML", err.Error(), "")
		}

		warnings, err := newClient().PutConfig(cmd.Context(), &cfg)
		if err != nil {
			return failed(cmd, "Configuration rejected", err)
		}
		out := cmd.OutOrStdout()
		printer.Success(out, "configuration saved")
		for _, w := range warnings {
			printer.Warning(out, "%s", w)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
