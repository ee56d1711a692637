package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaede/loglens/pkg/grep"
)

func grepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grep <filename...>",
		Short: "Print log lines matching filters",
		Args:  cobra.MinimumNArgs(1),
	}
	config := grep.DefaultConfig()
	config.InstallFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fmt.Fprintln(cmd.ErrOrStderr(), "Using log files:", args)

		g, err := grep.New(config, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		for _, filename := range args {
			if err := g.GrepFile(filename); err != nil {
				return err
			}
		}
		return nil
	}
	return cmd
}
