package parser

import (
	"bytes"
	"errors"
	"strconv"
)

// DefaultSampleSize is how many non-blank lines DetectFormat inspects
// when the caller does not say otherwise.
const DefaultSampleSize = 10

// ErrUnknownFormat is returned when no sampled line matches a supported
// grammar, or the sample is empty. Callers must treat it as "cannot
// analyze this file", not as zero traffic.
var ErrUnknownFormat = errors.New("unable to detect log format")

// DetectFormat inspects up to sample non-blank lines and picks a grammar.
// A single line carrying the quoted referer/user-agent tail decides
// Combined immediately; otherwise common-shaped lines decide Common.
//
// Detection is structural, not a full parse: a file whose every line has
// an unparseable address or timestamp still detects, and then shows up as
// all-malformed instead of "undetectable".
func DetectFormat(lines [][]byte, sample int) (Format, error) {
	if sample <= 0 {
		sample = DefaultSampleSize
	}
	seen := 0
	sawCommon := false
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		switch detectLine(line) {
		case FormatCombined:
			return FormatCombined, nil
		case FormatCommon:
			sawCommon = true
		}
		seen++
		if seen >= sample {
			break
		}
	}
	if sawCommon {
		return FormatCommon, nil
	}
	return FormatUnknown, ErrUnknownFormat
}

// detectLine checks the shape of one line: a leading token, a bracketed
// timestamp, a quoted request, and a status-like 3-digit token. Two more
// quoted fields after status/size mean the combined tail.
func detectLine(line []byte) Format {
	spaceIdx := bytes.IndexByte(line, ' ')
	if spaceIdx <= 0 {
		return FormatUnknown
	}
	rest := line[spaceIdx+1:]

	leftBracketIdx := bytes.IndexByte(rest, '[')
	if leftBracketIdx == -1 {
		return FormatUnknown
	}
	rightBracketIdx := bytes.IndexByte(rest[leftBracketIdx+1:], ']')
	if rightBracketIdx == -1 {
		return FormatUnknown
	}
	rest = rest[leftBracketIdx+rightBracketIdx+2:]

	_, rest, ok := quotedField(rest)
	if !ok {
		return FormatUnknown
	}

	fields := bytes.Fields(rest)
	if len(fields) < 2 {
		return FormatUnknown
	}
	if len(fields[0]) != 3 {
		return FormatUnknown
	}
	if _, err := strconv.Atoi(string(fields[0])); err != nil {
		return FormatUnknown
	}

	_, rest, ok = quotedField(rest)
	if !ok {
		// Nothing quoted after status/size: the common grammar.
		return FormatCommon
	}
	if _, _, ok = quotedField(rest); ok {
		return FormatCombined
	}
	return FormatUnknown
}
