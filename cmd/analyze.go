package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kaede/loglens/pkg/analyze"
	"github.com/kaede/loglens/pkg/grep"
	"github.com/kaede/loglens/pkg/loader"
)

type analyzeConfig struct {
	TopN        int
	Granularity analyze.Granularity
	SampleSize  int
	MaxRecords  int
	JSON        bool
	ConfigFile  string

	filter *grep.Filter
}

func defaultAnalyzeConfig() analyzeConfig {
	return analyzeConfig{
		TopN:        20,
		Granularity: analyze.Hourly,
		filter:      grep.NewFilter(),
	}
}

func (c *analyzeConfig) InstallFlags(flags *pflag.FlagSet) {
	flags.IntVarP(&c.TopN, "top", "n", c.TopN, "Number of top clients to show (0 for all)")
	flags.VarP(&c.Granularity, "granularity", "g", "Bucket width for traffic counts (hourly|daily)")
	flags.IntVar(&c.SampleSize, "sample", c.SampleSize, "Lines inspected for format detection (0 for default)")
	flags.IntVar(&c.MaxRecords, "max-records", c.MaxRecords, "Cap on records kept across all files (0 for no cap)")
	flags.BoolVar(&c.JSON, "json", c.JSON, "Emit the summary as JSON instead of tables")
	flags.StringVarP(&c.ConfigFile, "config", "c", c.ConfigFile, "Configuration file")
	c.filter.InstallFlags(flags)
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyze [filename...]",
		Aliases: []string{"analyse"},
		Short:   "Summarize one or more log files",
	}
	c := defaultAnalyzeConfig()
	c.InstallFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runAnalyze(cmd, args, c)
	}
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, c analyzeConfig) error {
	fileCfg, err := loadConfigFile(c.ConfigFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
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

	l := loader.Loader{SampleSize: c.SampleSize, MaxRecords: c.MaxRecords}
	if !c.JSON && len(files) > 1 {
		bar := progressbar.Default(int64(len(files)), "parsing")
		l.Progress = func(string) { bar.Add(1) }
	}
	m := l.LoadFiles(files)

	errWriter := cmd.ErrOrStderr()
	for _, e := range m.Errors {
		fmt.Fprintln(errWriter, "load error:", e)
	}
	for _, w := range m.Warnings {
		fmt.Fprintln(errWriter, "warning:", w)
	}
	if len(m.Errors) > 0 {
		fmt.Fprintf(errWriter, "%d of %d files loaded\n", len(m.Files), len(files))
	}
	if len(m.Files) == 0 {
		return fmt.Errorf("no file could be analyzed")
	}

	records := c.filter.Apply(m.Records())
	summary := analyze.Summarize(records, c.Granularity, c.TopN)

	out := cmd.OutOrStdout()
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(out, "%d requests (%s sent, %d clients, %d malformed lines)\n",
		summary.Total, humanize.IBytes(summary.Bytes), summary.UniqueClients, m.Malformed())

	header.Fprintf(out, "\nTraffic (%s)\n", c.Granularity)
	if err := analyze.PrintTraffic(out, summary, c.Granularity); err != nil {
		return err
	}
	header.Fprintln(out, "\nTop clients")
	if err := analyze.PrintTopClients(out, summary); err != nil {
		return err
	}
	header.Fprintln(out, "\nBrowsers")
	return analyze.PrintBrowsers(out, summary)
}
