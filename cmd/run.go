package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaede/loglens/pkg/analyze"
	"github.com/kaede/loglens/pkg/tui"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <filename>",
		Short: "Follow a log file and refresh summaries as it grows",
		Args:  cobra.ExactArgs(1),
	}
	config := analyze.DefaultCollectorConfig()
	config.InstallFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		filename := args[0]
		fmt.Fprintln(cmd.ErrOrStderr(), "Using log file:", filename)

		collector, err := analyze.NewCollector(config)
		if err != nil {
			return err
		}
		iterator, err := analyze.OpenTailIterator(filename, config.Whole)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}

		go tui.New(collector).Run()
		return collector.RunLoop(iterator)
	}
	return cmd
}
