package cli

import (
	"github.com/spf13/cobra"
)

type options struct {
	configPath   string
	outputFormat string
}

// NewRootCmd builds the metastor command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "metastor",
		Short: "MetaStor operator CLI",
		Long: `MetaStor CLI manages the database schema of a MetaStor deployment,
prints the plan catalog and produces signed wallet login payloads for
exercising the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "directory holding settings.yml (default ./configs)")
	rootCmd.PersistentFlags().StringVarP(&opts.outputFormat, "output", "o", "table", "output format: table, json")

	rootCmd.AddCommand(newLoginPayloadCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newPlansCmd(opts))

	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
