package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kaede/loglens/pkg/analyze"
	"github.com/kaede/loglens/pkg/server"
)

type serveConfig struct {
	Listen      string
	TopN        int
	Granularity analyze.Granularity
	SampleSize  int
	MaxRecords  int
	ConfigFile  string
}

func defaultServeConfig() serveConfig {
	return serveConfig{
		Listen:      "127.0.0.1:8000",
		TopN:        20,
		Granularity: analyze.Hourly,
	}
}

func (c *serveConfig) InstallFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Listen, "listen", "l", c.Listen, "Address to listen on")
	flags.IntVarP(&c.TopN, "top", "n", c.TopN, "Default number of top clients to show (0 for all)")
	flags.VarP(&c.Granularity, "granularity", "g", "Default bucket width for traffic counts (hourly|daily)")
	flags.IntVar(&c.SampleSize, "sample", c.SampleSize, "Lines inspected for format detection (0 for default)")
	flags.IntVar(&c.MaxRecords, "max-records", c.MaxRecords, "Cap on records kept across all files (0 for no cap)")
	flags.StringVarP(&c.ConfigFile, "config", "c", c.ConfigFile, "Configuration file")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [filename...]",
		Short: "Serve summaries over HTTP with a small dashboard",
	}
	c := defaultServeConfig()
	c.InstallFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fileCfg, err := loadConfigFile(c.ConfigFile)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("listen") && fileCfg.Listen != "" {
			c.Listen = fileCfg.Listen
		}
		if !flags.Changed("top") {
			c.TopN = fileCfg.TopN
		}
		if !flags.Changed("granularity") && fileCfg.Granularity != "" {
			if err := c.Granularity.Set(fileCfg.Granularity); err != nil {
				return err
			}
		}
		if !flags.Changed("sample") {
			c.SampleSize = fileCfg.SampleSize
		}
		if !flags.Changed("max-records") {
			c.MaxRecords = fileCfg.MaxRecords
		}

		files, err := resolveFiles(args, fileCfg)
		if err != nil {
			return err
		}

		s := server.New(server.Config{
			Listen:      c.Listen,
			TopN:        c.TopN,
			Granularity: c.Granularity,
			SampleSize:  c.SampleSize,
			MaxRecords:  c.MaxRecords,
		}, files)
		return s.ListenAndServe()
	}
	return cmd
}
