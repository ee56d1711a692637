package parser

import (
	"errors"
	"testing"
	"time"
)

func TestParseCommon(t *testing.T) {
	line := `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 2326`
	rec, err := ParseCommon([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Client != "127.0.0.1" {
		t.Errorf("expected client 127.0.0.1, got %q", rec.Client)
	}
	if rec.Method != "GET" {
		t.Errorf("expected method GET, got %q", rec.Method)
	}
	if rec.Path != "/index.html" {
		t.Errorf("expected path /index.html, got %q", rec.Path)
	}
	if rec.Protocol != "HTTP/1.1" {
		t.Errorf("expected protocol HTTP/1.1, got %q", rec.Protocol)
	}
	if rec.Status != 200 {
		t.Errorf("expected status 200, got %d", rec.Status)
	}
	if rec.Size != 2326 {
		t.Errorf("expected size 2326, got %d", rec.Size)
	}
	expectedTime := time.Date(2023, 10, 10, 13, 55, 36, 0, time.FixedZone("", -7*60*60))
	if expectedTime.Sub(rec.Time).Abs() > time.Microsecond {
		t.Errorf("expected time %v, got %v", expectedTime, rec.Time)
	}
	if rec.UserAgent != "" || rec.Referer != "" {
		t.Errorf("common format must not carry referer/user-agent, got %q %q", rec.Referer, rec.UserAgent)
	}
}

func TestParseCombined(t *testing.T) {
	line := `203.0.113.9 - frank [12/Mar/2023:00:15:32 +0800] "POST /api/upload HTTP/2.0" 201 3009 "https://example.com/form" "Mozilla/5.0 (X11; Linux x86_64) Firefox/124.0"`
	rec, err := ParseCombined([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Client != "203.0.113.9" {
		t.Errorf("expected client 203.0.113.9, got %q", rec.Client)
	}
	if rec.Referer != "https://example.com/form" {
		t.Errorf("expected referer, got %q", rec.Referer)
	}
	if rec.UserAgent != "Mozilla/5.0 (X11; Linux x86_64) Firefox/124.0" {
		t.Errorf("expected user agent, got %q", rec.UserAgent)
	}
	expectedTime := time.Date(2023, 3, 12, 0, 15, 32, 0, time.FixedZone("", 8*60*60))
	if expectedTime.Sub(rec.Time).Abs() > time.Microsecond {
		t.Errorf("expected time %v, got %v", expectedTime, rec.Time)
	}
}

func TestParseCombinedIPv6(t *testing.T) {
	line := `2001:db8::1 - - [10/Oct/2023:13:55:36 +0000] "GET / HTTP/1.1" 304 - "-" "-"`
	rec, err := ParseCombined([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Client != "2001:db8::1" {
		t.Errorf("expected client 2001:db8::1, got %q", rec.Client)
	}
	if rec.Size != 0 {
		t.Errorf("expected dash size to parse as 0, got %d", rec.Size)
	}
	if rec.Referer != "" || rec.UserAgent != "" {
		t.Errorf("dash referer/user-agent must map to empty, got %q %q", rec.Referer, rec.UserAgent)
	}
}

func TestParseEscapedQuotes(t *testing.T) {
	line := `198.51.100.7 - - [01/May/2024:01:02:03 +0800] "GET /search?q=\"quoted\" HTTP/1.1" 200 512 "-" "agent \"X\""`
	rec, err := ParseCombined([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Path != `/search?q=\"quoted\"` {
		t.Errorf("expected escaped path kept verbatim, got %q", rec.Path)
	}
	if rec.UserAgent != `agent \"X\"` {
		t.Errorf("expected escaped user agent kept verbatim, got %q", rec.UserAgent)
	}
}

func TestParseUnknownMethodAccepted(t *testing.T) {
	line := `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "PURGE /cache HTTP/1.1" 200 0`
	rec, err := ParseCommon([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Method != "PURGE" {
		t.Errorf("expected method PURGE, got %q", rec.Method)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		combined bool
	}{
		{"empty", "", false},
		{"not an ip", `localhost - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 1`, false},
		{"no timestamp", `127.0.0.1 - - "GET / HTTP/1.1" 200 1`, false},
		{"bogus month", `127.0.0.1 - - [10/Foo/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 1`, false},
		{"day out of range", `127.0.0.1 - - [32/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 1`, false},
		{"request too short", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET /" 200 1`, false},
		{"status not numeric", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" abc 2326`, false},
		{"status out of range", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 999 1`, false},
		{"status too long", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 2000 1`, false},
		{"negative size", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 -5`, false},
		{"missing combined tail", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 1`, true},
		{"only referer", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 1 "ref"`, true},
		{"unbalanced quotes", `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 1 "ref" "ua`, true},
	}
	for _, c := range cases {
		p := ParseCommon
		if c.combined {
			p = ParseCombined
		}
		_, err := p([]byte(c.line))
		if err == nil {
			t.Errorf("%s: expected parse error, got none", c.name)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", c.name, err)
		}
	}
}

func TestCombinedLineUnderCommonFormat(t *testing.T) {
	// A combined-format line is still a valid common-format line; the
	// quoted tail is simply not extracted.
	line := `127.0.0.1 - - [10/Oct/2023:13:55:36 -0700] "GET / HTTP/1.1" 200 1 "ref" "ua"`
	rec, err := ParseCommon([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if rec.UserAgent != "" {
		t.Errorf("common parse must not fill user agent, got %q", rec.UserAgent)
	}
}

func TestGetParser(t *testing.T) {
	for _, name := range []string{"common", "combined", "clf"} {
		if _, err := GetParser(name); err != nil {
			t.Errorf("expected registered parser %q: %v", name, err)
		}
	}
	if _, err := GetParser("nosuch"); err == nil {
		t.Error("expected error for unknown parser name")
	}
}

func BenchmarkParseCombined(b *testing.B) {
	line := []byte(`192.0.2.7 - frank [10/Oct/2023:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326 "http://www.example.com/start.html" "Mozilla/5.0 (X11; Linux x86_64) Firefox/119.0"`)
	b.SetBytes(int64(len(line)))
	for i := 0; i < b.N; i++ {
		if _, err := ParseCombined(line); err != nil {
			b.Fatal(err)
		}
	}
}
