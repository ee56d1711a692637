package parser

import (
	"bytes"
	"net/netip"
	"strconv"
	"time"
)

// CommonLogTime is the timestamp layout inside the bracketed field,
// for example "10/Oct/2000:13:55:36 -0700".
const CommonLogTime = "02/Jan/2006:15:04:05 -0700"

func init() {
	RegisterParser(ParserMeta{
		Name:        "common",
		Description: "Apache/Nginx common log format",
		F:           func() Parser { return ParserFunc(ParseCommon) },
	})
	RegisterParser(ParserMeta{
		Name:        "combined",
		Description: "Common log format plus quoted referer and user-agent",
		F:           func() Parser { return ParserFunc(ParseCombined) },
	})
	RegisterParser(ParserMeta{
		Name:        "clf",
		Description: "An alias for `common`",
		Hidden:      true,
		F:           func() Parser { return ParserFunc(ParseCommon) },
	})
}

// Nginx escapes `"`, `\` to `\xXX`
// Apache escapes `"`, `\` to `\"` `\\`
func findEndingDoubleQuote(data []byte) int {
	inEscape := false
	for i := 0; i < len(data); i++ {
		if inEscape {
			inEscape = false
		} else {
			if data[i] == '\\' {
				inEscape = true
			} else if data[i] == '"' {
				return i
			}
		}
	}
	return -1
}

// quotedField returns the content of the first quoted field in data and
// the remainder after its closing quote, or ok=false if none exists.
func quotedField(data []byte) (field, rest []byte, ok bool) {
	start := bytes.IndexByte(data, '"')
	if start == -1 {
		return nil, nil, false
	}
	end := findEndingDoubleQuote(data[start+1:])
	if end == -1 {
		return nil, nil, false
	}
	return data[start+1 : start+1+end], data[start+end+2:], true
}

func ParseCommon(line []byte) (LogRecord, error) {
	return parseLine(line, false)
}

func ParseCombined(line []byte) (LogRecord, error) {
	return parseLine(line, true)
}

// parseLine validates one line step by step. Each step fails on its own
// so that rejects carry the field that broke.
func parseLine(line []byte, combined bool) (LogRecord, error) {
	// Client address: leading token up to the first space,
	// must be a valid IPv4/IPv6 literal.
	spaceIdx := bytes.IndexByte(line, ' ')
	if spaceIdx == -1 {
		return LogRecord{}, malformedf("no fields")
	}
	addr, err := netip.ParseAddr(string(line[:spaceIdx]))
	if err != nil {
		return LogRecord{}, malformedf("invalid client address %q", line[:spaceIdx])
	}
	rest := line[spaceIdx+1:]

	// Timestamp within [$time_local]. time.Parse rejects impossible
	// calendar values that a positional fast path would let through.
	leftBracketIdx := bytes.IndexByte(rest, '[')
	if leftBracketIdx == -1 {
		return LogRecord{}, malformedf("no timestamp")
	}
	rightBracketIdx := bytes.IndexByte(rest[leftBracketIdx+1:], ']')
	if rightBracketIdx == -1 {
		return LogRecord{}, malformedf("unterminated timestamp")
	}
	localTime, err := time.Parse(CommonLogTime, string(rest[leftBracketIdx+1:leftBracketIdx+1+rightBracketIdx]))
	if err != nil {
		return LogRecord{}, malformedf("invalid timestamp: %v", err)
	}
	rest = rest[leftBracketIdx+rightBracketIdx+2:]

	// Request line within first "$request". Unknown methods are accepted
	// as-is; fewer than three tokens is not a request line.
	request, rest, ok := quotedField(rest)
	if !ok {
		return LogRecord{}, malformedf("no request field")
	}
	reqFields := bytes.Fields(request)
	if len(reqFields) < 3 {
		return LogRecord{}, malformedf("request %q has fewer than 3 tokens", request)
	}
	method := string(reqFields[0])
	path := string(reqFields[1])
	protocol := string(reqFields[len(reqFields)-1])

	// Status code: exactly three digits in [100,599].
	fields := bytes.Fields(rest)
	if len(fields) < 2 {
		return LogRecord{}, malformedf("missing status or size")
	}
	statusBytes := fields[0]
	if len(statusBytes) != 3 {
		return LogRecord{}, malformedf("status %q is not a 3-digit code", statusBytes)
	}
	status, err := strconv.Atoi(string(statusBytes))
	if err != nil || status < 100 || status > 599 {
		return LogRecord{}, malformedf("status %q out of range", statusBytes)
	}

	// Response size ($body_bytes_sent): "-" encodes zero.
	var size uint64
	if !bytes.Equal(fields[1], []byte{'-'}) {
		size, err = strconv.ParseUint(string(fields[1]), 10, 64)
		if err != nil {
			return LogRecord{}, malformedf("invalid size %q", fields[1])
		}
	}

	record := LogRecord{
		Client:   addr.String(),
		Time:     localTime,
		Method:   method,
		Path:     path,
		Protocol: protocol,
		Status:   status,
		Size:     size,
	}
	if !combined {
		return record, nil
	}

	// Combined tail: "$http_referer" "$http_user_agent", both required.
	referer, rest, ok := quotedField(rest)
	if !ok {
		return LogRecord{}, malformedf("no referer field")
	}
	userAgent, _, ok := quotedField(rest)
	if !ok {
		return LogRecord{}, malformedf("no user-agent field")
	}
	record.Referer = dashEmpty(string(referer))
	record.UserAgent = dashEmpty(string(userAgent))
	return record, nil
}

// dashEmpty maps the CLF "no value" dash to an empty string.
func dashEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
