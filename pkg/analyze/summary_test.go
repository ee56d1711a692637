package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaede/loglens/pkg/parser"
)

var tz = time.FixedZone("", -7*60*60)

func rec(client string, t time.Time, size uint64, ua string) parser.LogRecord {
	return parser.LogRecord{
		Client:    client,
		Time:      t,
		Method:    "GET",
		Path:      "/",
		Protocol:  "HTTP/1.1",
		Status:    200,
		Size:      size,
		UserAgent: ua,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2023, 10, 10, hour, minute, 0, 0, tz)
}

func TestSummarizeHourlyGapFill(t *testing.T) {
	records := []parser.LogRecord{
		rec("1.1.1.1", at(9, 10), 10, ""),
		rec("1.1.1.1", at(9, 40), 10, ""),
		rec("2.2.2.2", at(11, 5), 10, ""),
	}
	s := Summarize(records, Hourly, 10)
	require.Len(t, s.Buckets, 3)
	assert.Equal(t, Bucket{Start: at(9, 0), Count: 2}, s.Buckets[0])
	assert.Equal(t, Bucket{Start: at(10, 0), Count: 0}, s.Buckets[1])
	assert.Equal(t, Bucket{Start: at(11, 0), Count: 1}, s.Buckets[2])
}

func TestSummarizeDaily(t *testing.T) {
	records := []parser.LogRecord{
		rec("1.1.1.1", time.Date(2023, 10, 10, 23, 0, 0, 0, tz), 1, ""),
		rec("1.1.1.1", time.Date(2023, 10, 13, 1, 0, 0, 0, tz), 1, ""),
	}
	s := Summarize(records, Daily, 10)
	require.Len(t, s.Buckets, 4)
	assert.Equal(t, time.Date(2023, 10, 10, 0, 0, 0, 0, tz), s.Buckets[0].Start)
	assert.Equal(t, 1, s.Buckets[0].Count)
	assert.Equal(t, 0, s.Buckets[1].Count)
	assert.Equal(t, 0, s.Buckets[2].Count)
	assert.Equal(t, time.Date(2023, 10, 13, 0, 0, 0, 0, tz), s.Buckets[3].Start)
}

func TestSummarizeBucketsKeepLocalOffset(t *testing.T) {
	east := time.FixedZone("", 8*60*60)
	records := []parser.LogRecord{
		rec("1.1.1.1", time.Date(2023, 10, 10, 0, 30, 0, 0, east), 1, ""),
	}
	s := Summarize(records, Hourly, 10)
	require.Len(t, s.Buckets, 1)
	// Bucket boundary matches the log's local time as written.
	assert.Equal(t, 0, s.Buckets[0].Start.Hour())
	_, offset := s.Buckets[0].Start.Zone()
	assert.Equal(t, 8*60*60, offset)
}

func TestSummarizeCountsAddUp(t *testing.T) {
	var records []parser.LogRecord
	for i := 0; i < 50; i++ {
		records = append(records, rec("1.1.1.1", at(9+(i%7), i%60), 1, ""))
	}
	s := Summarize(records, Hourly, 0)
	sum := 0
	for _, b := range s.Buckets {
		sum += b.Count
	}
	assert.Equal(t, len(records), sum)

	clientSum := 0
	for _, c := range s.TopClients {
		clientSum += c.Requests
	}
	assert.Equal(t, len(records), clientSum)
}

func TestSummarizeTopClients(t *testing.T) {
	records := []parser.LogRecord{
		rec("1.1.1.1", at(9, 0), 100, ""),
		rec("2.2.2.2", at(9, 1), 10, ""),
		rec("2.2.2.2", at(9, 2), 10, ""),
		rec("3.3.3.3", at(9, 3), 1, ""),
	}
	s := Summarize(records, Hourly, 2)
	require.Len(t, s.TopClients, 2)
	assert.Equal(t, ClientStat{Client: "2.2.2.2", Requests: 2, Bytes: 20}, s.TopClients[0])
	// Tie between 1.1.1.1 and 3.3.3.3 broken by first-seen order.
	assert.Equal(t, ClientStat{Client: "1.1.1.1", Requests: 1, Bytes: 100}, s.TopClients[1])
	assert.Equal(t, 3, s.UniqueClients)
}

func TestSummarizeTopNLargerThanDistinct(t *testing.T) {
	records := []parser.LogRecord{
		rec("1.1.1.1", at(9, 0), 1, ""),
		rec("2.2.2.2", at(9, 1), 1, ""),
	}
	s := Summarize(records, Hourly, 10)
	assert.Len(t, s.TopClients, 2)
}

func TestSummarizeBrowserOrder(t *testing.T) {
	records := []parser.LogRecord{
		rec("1.1.1.1", at(9, 0), 1, "Mozilla/5.0 Gecko/20100101 Firefox/124.0"),
		rec("1.1.1.1", at(9, 1), 1, "Mozilla/5.0 AppleWebKit/537.36 Chrome/120.0 Safari/537.36"),
		rec("1.1.1.1", at(9, 2), 1, "Mozilla/5.0 Gecko/20100101 Firefox/124.0"),
		rec("1.1.1.1", at(9, 3), 1, ""),
	}
	s := Summarize(records, Hourly, 10)
	require.Len(t, s.Browsers, 3)
	// Insertion order is first-seen order.
	assert.Equal(t, BrowserStat{Browser: "Firefox", Requests: 2}, s.Browsers[0])
	assert.Equal(t, BrowserStat{Browser: "Chrome", Requests: 1}, s.Browsers[1])
	assert.Equal(t, BrowserStat{Browser: BrowserUnknown, Requests: 1}, s.Browsers[2])
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, Hourly, 10)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Buckets)
	assert.Empty(t, s.TopClients)
	assert.Empty(t, s.Browsers)
}

func TestSummarizeIdempotent(t *testing.T) {
	records := []parser.LogRecord{
		rec("1.1.1.1", at(9, 10), 10, "curl/8.0"),
		rec("2.2.2.2", at(11, 5), 20, ""),
	}
	first := Summarize(records, Hourly, 5)
	second := Summarize(records, Hourly, 5)
	assert.Equal(t, first, second)
}

func TestGranularityFlag(t *testing.T) {
	var g Granularity
	require.NoError(t, g.Set("daily"))
	assert.Equal(t, Daily, g)
	require.NoError(t, g.Set("hourly"))
	assert.Equal(t, Hourly, g)
	assert.Error(t, g.Set("weekly"))
	assert.Equal(t, "granularity", g.Type())
}
