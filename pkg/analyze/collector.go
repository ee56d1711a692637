package analyze

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/kaede/loglens/pkg/fileiter"
	"github.com/kaede/loglens/pkg/parser"
)

// Collector accumulates records from a live log stream so follow mode
// can re-render summaries while the file grows. Batch loads do not need
// it; they go through the loader instead.
type Collector struct {
	Config CollectorConfig

	mu        sync.Mutex
	records   []parser.LogRecord
	malformed int

	logParser parser.Parser
}

type CollectorConfig struct {
	Format      string
	Granularity Granularity
	TopN        int
	RefreshSec  int
	Whole       bool
}

func (c *CollectorConfig) InstallFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Format, "format", "f", c.Format, "Log format (see \"list formats\")")
	flags.VarP(&c.Granularity, "granularity", "g", "Bucket width for traffic counts (hourly|daily)")
	flags.IntVarP(&c.TopN, "top", "n", c.TopN, "Number of top clients to show")
	flags.IntVarP(&c.RefreshSec, "refresh", "r", c.RefreshSec, "Refresh interval in seconds")
	flags.BoolVarP(&c.Whole, "whole", "w", c.Whole, "Read the whole log file before tailing")
}

func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Format:      "combined",
		Granularity: Hourly,
		TopN:        10,
		RefreshSec:  5,
	}
}

func NewCollector(c CollectorConfig) (*Collector, error) {
	logParser, err := parser.GetParser(c.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	return &Collector{
		Config:    c,
		logParser: logParser,
	}, nil
}

// RunLoop consumes the iterator until it is exhausted. Malformed lines
// are counted, not logged one by one; a tailed file full of noise would
// otherwise drown the display.
func (c *Collector) RunLoop(iter fileiter.Iterator) error {
	for {
		line, err := iter.Next()
		if err != nil {
			return err
		}
		if line == nil {
			break
		}
		c.handleLine(line)
	}
	return nil
}

func (c *Collector) handleLine(line []byte) {
	if len(line) == 0 {
		return
	}
	record, err := c.logParser.Parse(line)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.malformed++
		return
	}
	c.records = append(c.records, record)
}

// Snapshot copies the current record set so summaries never race the
// tail goroutine.
func (c *Collector) Snapshot() ([]parser.LogRecord, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]parser.LogRecord, len(c.records))
	copy(records, c.records)
	return records, c.malformed
}

// Panel selects which summary section follow mode renders.
type Panel int

const (
	PanelAll Panel = iota
	PanelTraffic
	PanelClients
	PanelBrowsers
)

func (p Panel) String() string {
	switch p {
	case PanelTraffic:
		return "traffic"
	case PanelClients:
		return "clients"
	case PanelBrowsers:
		return "browsers"
	default:
		return "all"
	}
}

var headerColor = color.New(color.FgCyan, color.Bold)

// PrintSummary renders the selected panel from a fresh snapshot.
func (c *Collector) PrintSummary(w io.Writer, panel Panel) error {
	records, malformed := c.Snapshot()
	c.mu.Lock()
	granularity, topN := c.Config.Granularity, c.Config.TopN
	c.mu.Unlock()
	summary := Summarize(records, granularity, topN)

	headerColor.Fprintf(w, "%d requests, %d malformed lines\n", summary.Total, malformed)
	if panel == PanelAll || panel == PanelTraffic {
		headerColor.Fprintf(w, "-- Traffic (%s)\n", granularity)
		if err := PrintTraffic(w, summary, granularity); err != nil {
			return err
		}
	}
	if panel == PanelAll || panel == PanelClients {
		headerColor.Fprintln(w, "-- Top clients")
		if err := PrintTopClients(w, summary); err != nil {
			return err
		}
	}
	if panel == PanelAll || panel == PanelBrowsers {
		headerColor.Fprintln(w, "-- Browsers")
		if err := PrintBrowsers(w, summary); err != nil {
			return err
		}
	}
	return nil
}

// ToggleGranularity flips hourly/daily and returns the new value.
func (c *Collector) ToggleGranularity() Granularity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Config.Granularity == Hourly {
		c.Config.Granularity = Daily
	} else {
		c.Config.Granularity = Hourly
	}
	return c.Config.Granularity
}
