package grep

import (
	"bytes"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaede/loglens/pkg/fileiter"
	"github.com/kaede/loglens/pkg/parser"
)

func record() parser.LogRecord {
	return parser.LogRecord{
		Client:    "192.0.2.7",
		Time:      time.Date(2023, 10, 10, 13, 55, 36, 0, time.FixedZone("", -7*3600)),
		Method:    "GET",
		Path:      "/index.html",
		Protocol:  "HTTP/1.1",
		Status:    200,
		Size:      2326,
		UserAgent: "Mozilla/5.0 Gecko/20100101 Firefox/124.0",
	}
}

func TestFilterEmptyMatchesAll(t *testing.T) {
	f := NewFilter()
	assert.True(t, f.IsEmpty())
	assert.NoError(t, f.Match(record()))
}

func TestFilterPrefix(t *testing.T) {
	f := NewFilter()
	f.Prefixes = []netip.Prefix{netip.MustParsePrefix("192.0.2.0/24")}
	assert.NoError(t, f.Match(record()))

	f.Prefixes = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	assert.ErrorIs(t, f.Match(record()), ErrNoPrefixMatch)
}

func TestFilterPath(t *testing.T) {
	f := NewFilter()
	f.PathContains = []string{"index"}
	assert.NoError(t, f.Match(record()))
	f.PathContains = []string{"admin"}
	assert.ErrorIs(t, f.Match(record()), ErrPathNoMatch)
}

func TestFilterMethodStatus(t *testing.T) {
	f := NewFilter()
	f.Methods = []string{"get"}
	f.Statuses = []int{200, 304}
	assert.NoError(t, f.Match(record()))

	f.Methods = []string{"POST"}
	assert.ErrorIs(t, f.Match(record()), ErrMethodNoMatch)

	f.Methods = nil
	f.Statuses = []int{404}
	assert.ErrorIs(t, f.Match(record()), ErrStatusNoMatch)
}

func TestFilterBrowser(t *testing.T) {
	f := NewFilter()
	f.Browser = "firefox"
	assert.NoError(t, f.Match(record()))
	f.Browser = "Chrome"
	assert.ErrorIs(t, f.Match(record()), ErrBrowserNoMatch)
}

func TestFilterHourAndRange(t *testing.T) {
	f := NewFilter()
	f.Hour = 13
	assert.NoError(t, f.Match(record()))
	f.Hour = 14
	assert.ErrorIs(t, f.Match(record()), ErrTimeNoMatch)

	f = NewFilter()
	f.TimeFrom = time.Date(2023, 10, 11, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, f.Match(record()), ErrTimeNoMatch)
}

func TestFilterMinSize(t *testing.T) {
	f := NewFilter()
	f.MinSize = 10000
	assert.ErrorIs(t, f.Match(record()), ErrTooSmall)
	f.MinSize = 100
	assert.NoError(t, f.Match(record()))
}

func TestFilterApplyKeepsOrder(t *testing.T) {
	a, b, c := record(), record(), record()
	b.Status = 404
	c.Path = "/other"
	f := NewFilter()
	f.Statuses = []int{200}
	out := f.Apply([]parser.LogRecord{a, b, c})
	require.Len(t, out, 2)
	assert.Equal(t, "/index.html", out[0].Path)
	assert.Equal(t, "/other", out[1].Path)
}

func TestGrepperPrintsMatchingLinesOnly(t *testing.T) {
	input := `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET /keep HTTP/1.1" 200 1 "-" "curl/8.0"
127.0.0.1 - - [10/Oct/2023:13:55:37 -0700] "GET /drop HTTP/1.1" 404 1 "-" "curl/8.0"
`
	config := DefaultConfig()
	config.f.Statuses = []int{200}

	var out bytes.Buffer
	g, err := New(config, &out)
	require.NoError(t, err)
	require.NoError(t, g.RunLoop(fileiter.NewWithScanner(strings.NewReader(input))))

	assert.Contains(t, out.String(), "/keep")
	assert.NotContains(t, out.String(), "/drop")
}
