package cmd

import (
	"io"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/kaede/loglens/pkg/analyze"
	"github.com/kaede/loglens/pkg/parser"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <item>",
		Short: "List various items",
		Args:  cobra.NoArgs,
		RunE:  showHelp,
	}
	cmd.AddCommand(listFormatsCmd(), listBrowsersCmd())
	return cmd
}

func listTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(
		w,
		// Disable wrapping for both header and rows.
		tablewriter.WithHeaderAutoWrap(tw.WrapNone),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
		// Header and rows are left-aligned.
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		// Use two-space padding between columns.
		tablewriter.WithPadding(tw.Padding{
			Right:     "  ",
			Overwrite: true,
		}),
		// No borders or header/row separator lines.
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
	)
}

func listFormatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported log formats",
		Args:  cobra.NoArgs,
	}
	var all bool
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show hidden format aliases too")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		table := listTable(cmd.OutOrStdout())
		table.Header("Name", "Description")

		formats := parser.All()
		slices.SortFunc(formats, func(a, b parser.ParserMeta) int {
			return strings.Compare(a.Name, b.Name)
		})
		for _, f := range formats {
			if all || !f.Hidden {
				if err := table.Append([]string{f.Name, f.Description}); err != nil {
					return err
				}
			}
		}
		return table.Render()
	}
	return cmd
}

func listBrowsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browsers",
		Short: "List browser families recognized in User-Agent strings",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		table := listTable(cmd.OutOrStdout())
		table.Header("Name")
		for _, name := range analyze.Browsers() {
			if err := table.Append([]string{name}); err != nil {
				return err
			}
		}
		return table.Render()
	}
	return cmd
}
