// Package analyze turns parsed log records into display-ready summaries:
// time-bucketed request counts, top clients, and browser distribution.
package analyze

import (
	"fmt"
	"slices"
	"time"

	"github.com/kaede/loglens/pkg/parser"
)

// Granularity selects the time bucket width. It implements pflag.Value
// so commands can take it directly as a flag.
type Granularity int

const (
	Hourly Granularity = iota
	Daily
)

func (g Granularity) String() string {
	if g == Daily {
		return "daily"
	}
	return "hourly"
}

func (g *Granularity) Set(value string) error {
	switch value {
	case "hourly", "hour":
		*g = Hourly
	case "daily", "day":
		*g = Daily
	default:
		return fmt.Errorf("invalid granularity %q (hourly|daily)", value)
	}
	return nil
}

func (g Granularity) Type() string {
	return "granularity"
}

// Truncate cuts t down to its bucket start in t's own zone, so bucket
// boundaries match the log's local time as written.
func (g Granularity) Truncate(t time.Time) time.Time {
	year, month, day := t.Date()
	if g == Daily {
		return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	}
	return time.Date(year, month, day, t.Hour(), 0, 0, 0, t.Location())
}

func (g Granularity) step() time.Duration {
	if g == Daily {
		return 24 * time.Hour
	}
	return time.Hour
}

type Bucket struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

type ClientStat struct {
	Client   string `json:"client"`
	Requests int    `json:"requests"`
	Bytes    uint64 `json:"bytes"`
}

type BrowserStat struct {
	Browser  string `json:"browser"`
	Requests int    `json:"requests"`
}

// Summary is a pure function of the records it was computed from; it
// carries no references back into them.
type Summary struct {
	Total         int           `json:"total"`
	Bytes         uint64        `json:"bytes"`
	UniqueClients int           `json:"unique_clients"`
	First         time.Time     `json:"first"`
	Last          time.Time     `json:"last"`
	Buckets       []Bucket      `json:"buckets"`
	TopClients    []ClientStat  `json:"top_clients"`
	Browsers      []BrowserStat `json:"browsers"`
}

// Summarize aggregates records into a Summary. topN caps the client list;
// zero or negative means no cap. Empty input yields an empty summary, not
// an error.
func Summarize(records []parser.LogRecord, granularity Granularity, topN int) Summary {
	s := Summary{}
	if len(records) == 0 {
		return s
	}
	s.Total = len(records)
	for _, r := range records {
		s.Bytes += r.Size
	}
	first, last := records[0].Time, records[0].Time
	for _, r := range records[1:] {
		if r.Time.Before(first) {
			first = r.Time
		}
		if r.Time.After(last) {
			last = r.Time
		}
	}
	s.First, s.Last = first, last
	s.Buckets = bucketize(records, granularity)
	s.TopClients, s.UniqueClients = topClients(records, topN)
	s.Browsers = browserDistribution(records)
	return s
}

// bucketize counts records per bucket and synthesizes zero-count buckets
// between occupied ones, so consumers can chart the output directly.
// Buckets are keyed on the record's own UTC offset; synthesis re-anchors
// at every occupied bucket so no count is lost when offsets differ
// within one file.
func bucketize(records []parser.LogRecord, granularity Granularity) []Bucket {
	counts := make(map[int64]int)
	reps := make(map[int64]time.Time)
	var keys []int64
	for _, r := range records {
		b := granularity.Truncate(r.Time)
		k := b.Unix()
		if _, ok := counts[k]; !ok {
			reps[k] = b
			keys = append(keys, k)
		}
		counts[k]++
	}
	slices.Sort(keys)

	step := granularity.step()
	buckets := make([]Bucket, 0, len(keys))
	for i, k := range keys {
		buckets = append(buckets, Bucket{Start: reps[k], Count: counts[k]})
		if i == len(keys)-1 {
			break
		}
		next := keys[i+1]
		for t := reps[k].Add(step); t.Unix() < next; t = t.Add(step) {
			buckets = append(buckets, Bucket{Start: t})
		}
	}
	return buckets
}

// topClients ranks by request count descending, ties broken by first
// appearance in the record order.
func topClients(records []parser.LogRecord, topN int) ([]ClientStat, int) {
	type entry struct {
		stat  ClientStat
		first int
	}
	index := make(map[string]int)
	var entries []entry
	for i, r := range records {
		at, ok := index[r.Client]
		if !ok {
			at = len(entries)
			index[r.Client] = at
			entries = append(entries, entry{stat: ClientStat{Client: r.Client}, first: i})
		}
		entries[at].stat.Requests++
		entries[at].stat.Bytes += r.Size
	}
	unique := len(entries)

	slices.SortFunc(entries, func(a, b entry) int {
		if a.stat.Requests != b.stat.Requests {
			return b.stat.Requests - a.stat.Requests
		}
		return a.first - b.first
	})
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	stats := make([]ClientStat, 0, len(entries))
	for _, e := range entries {
		stats = append(stats, e.stat)
	}
	return stats, unique
}

// browserDistribution counts per browser category, iterating in
// first-seen insertion order for deterministic output.
func browserDistribution(records []parser.LogRecord) []BrowserStat {
	index := make(map[string]int)
	var stats []BrowserStat
	for _, r := range records {
		name := BrowserName(r.UserAgent)
		at, ok := index[name]
		if !ok {
			at = len(stats)
			index[name] = at
			stats = append(stats, BrowserStat{Browser: name})
		}
		stats[at].Requests++
	}
	return stats
}
