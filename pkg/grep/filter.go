package grep

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kaede/loglens/pkg/analyze"
	"github.com/kaede/loglens/pkg/parser"
	"github.com/kaede/loglens/pkg/util"
)

// Filter narrows a record set before aggregation or output. The zero
// value matches everything.
type Filter struct {
	Prefixes     []netip.Prefix
	PathContains []string
	Methods      []string
	Statuses     []int
	Browser      string
	Hour         int
	TimeFrom     time.Time
	TimeTo       time.Time
	MinSize      util.SizeFlag
}

var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102150405",
}

func NewFilter() *Filter {
	return &Filter{Hour: -1}
}

func (f *Filter) InstallFlags(flags *pflag.FlagSet) {
	flags.Func("ip", "Client IP or CIDR range (can be specified multiple times)",
		func(value string) error {
			if !strings.Contains(value, "/") {
				addr, err := netip.ParseAddr(value)
				if err != nil {
					return err
				}
				f.Prefixes = append(f.Prefixes, netip.PrefixFrom(addr, addr.BitLen()))
				return nil
			}
			p, err := netip.ParsePrefix(value)
			if err != nil {
				return err
			}
			f.Prefixes = append(f.Prefixes, p)
			return nil
		})
	flags.StringArrayVar(&f.PathContains, "path-contains", f.PathContains, "Path substring to filter (can be specified multiple times)")
	flags.StringSliceVarP(&f.Methods, "method", "m", f.Methods, "HTTP methods to keep")
	flags.IntSliceVar(&f.Statuses, "status", f.Statuses, "Status codes to keep")
	flags.StringVar(&f.Browser, "browser", f.Browser, "Browser category to keep (see \"list browsers\")")
	flags.IntVar(&f.Hour, "hour", f.Hour, "Hour of day (0-23) to keep, -1 for any")
	flags.TimeVar(&f.TimeFrom, "time-from", f.TimeFrom, timeFormats, "Start time to filter (inclusive)")
	flags.TimeVar(&f.TimeTo, "time-to", f.TimeTo, timeFormats, "End time to filter (inclusive)")
	flags.VarP(&f.MinSize, "min-size", "t", "Only keep requests with at least this response size")
}

func (f *Filter) IsEmpty() bool {
	return len(f.Prefixes) == 0 && len(f.PathContains) == 0 &&
		len(f.Methods) == 0 && len(f.Statuses) == 0 &&
		f.Browser == "" && f.Hour < 0 &&
		f.TimeFrom.IsZero() && f.TimeTo.IsZero() && f.MinSize == 0
}

var (
	ErrInvalidIP      = errors.New("invalid client IP")
	ErrNoPrefixMatch  = errors.New("no matching prefix")
	ErrPathNoMatch    = errors.New("path does not match")
	ErrMethodNoMatch  = errors.New("method does not match")
	ErrStatusNoMatch  = errors.New("status does not match")
	ErrBrowserNoMatch = errors.New("browser does not match")
	ErrTimeNoMatch    = errors.New("time does not match")
	ErrTooSmall       = errors.New("response below size threshold")
)

// Match reports nil when the record passes every installed condition.
func (f *Filter) Match(record parser.LogRecord) error {
	if len(f.Prefixes) > 0 {
		ip, err := netip.ParseAddr(record.Client)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIP, err)
		}
		prefixMatch := false
		for _, prefix := range f.Prefixes {
			if prefix.Contains(ip) {
				prefixMatch = true
				break
			}
		}
		if !prefixMatch {
			return ErrNoPrefixMatch
		}
	}
	if len(f.PathContains) > 0 {
		pathMatch := false
		for _, substr := range f.PathContains {
			if strings.Contains(record.Path, substr) {
				pathMatch = true
				break
			}
		}
		if !pathMatch {
			return ErrPathNoMatch
		}
	}
	if len(f.Methods) > 0 {
		methodMatch := false
		for _, m := range f.Methods {
			if strings.EqualFold(m, record.Method) {
				methodMatch = true
				break
			}
		}
		if !methodMatch {
			return ErrMethodNoMatch
		}
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, record.Status) {
		return ErrStatusNoMatch
	}
	if f.Browser != "" && !strings.EqualFold(analyze.BrowserName(record.UserAgent), f.Browser) {
		return ErrBrowserNoMatch
	}
	if f.Hour >= 0 && record.Time.Hour() != f.Hour {
		return ErrTimeNoMatch
	}
	if !f.TimeFrom.IsZero() && record.Time.Before(f.TimeFrom) {
		return ErrTimeNoMatch
	}
	if !f.TimeTo.IsZero() && record.Time.After(f.TimeTo) {
		return ErrTimeNoMatch
	}
	if record.Size < uint64(f.MinSize) {
		return ErrTooSmall
	}
	return nil
}

// Apply returns the records that pass the filter, in order. The input is
// not modified.
func (f *Filter) Apply(records []parser.LogRecord) []parser.LogRecord {
	if f.IsEmpty() {
		return records
	}
	var out []parser.LogRecord
	for _, r := range records {
		if f.Match(r) == nil {
			out = append(out, r)
		}
	}
	return out
}
