package analyze

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const timeFormatHourly = "2006-01-02 15:04"
const timeFormatDaily = "2006-01-02"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(
		w,
		tablewriter.WithHeaderAutoWrap(tw.WrapNone),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithPadding(tw.Padding{
			Right:     "  ",
			Overwrite: true,
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
	)
}

// PrintTraffic renders the time-bucketed request counts.
func PrintTraffic(w io.Writer, s Summary, granularity Granularity) error {
	layout := timeFormatHourly
	if granularity == Daily {
		layout = timeFormatDaily
	}
	table := newTable(w)
	table.Header("Bucket", "Reqs")
	for _, b := range s.Buckets {
		if err := table.Append([]string{b.Start.Format(layout), strconv.Itoa(b.Count)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintTopClients renders the client ranking.
func PrintTopClients(w io.Writer, s Summary) error {
	table := newTable(w)
	table.Header("#", "Client", "Reqs", "Bytes")
	for i, c := range s.TopClients {
		row := []string{
			strconv.Itoa(i + 1), c.Client,
			strconv.Itoa(c.Requests), humanize.IBytes(c.Bytes),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintBrowsers renders the browser distribution with share percentages.
func PrintBrowsers(w io.Writer, s Summary) error {
	table := newTable(w)
	table.Header("Browser", "Reqs", "Share")
	for _, b := range s.Browsers {
		share := ""
		if s.Total > 0 {
			share = fmt.Sprintf("%.1f%%", float64(b.Requests)*100/float64(s.Total))
		}
		if err := table.Append([]string{b.Browser, strconv.Itoa(b.Requests), share}); err != nil {
			return err
		}
	}
	return table.Render()
}
