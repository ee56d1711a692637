package cmd

import (
	"github.com/spf13/cobra"
)

func showHelp(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "loglens",
		Short: "Summarize Apache/Nginx access logs: traffic over time, top clients, browsers",
		Args:  cobra.NoArgs,
		RunE:  showHelp,
	}
	rootCmd.AddCommand(
		analyzeCmd(),
		runCmd(),
		serveCmd(),
		grepCmd(),
		listCmd(),
	)
	return rootCmd
}
